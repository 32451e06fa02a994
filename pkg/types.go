package pkg

import "time"

// CallType classifies a scheduled outreach call and selects which topic
// areas apply to it.
type CallType string

const (
	CallTypeInitialAssessment CallType = "initial_clinical_assessment"
	CallTypePreparation       CallType = "preparation"
)

// CallStatus is the lifecycle state of a call session.
type CallStatus string

const (
	StatusInProgress              CallStatus = "in_progress"
	StatusCompleted               CallStatus = "completed"
	StatusRescheduleRequired      CallStatus = "reschedule_required"
	StatusProviderContactRequired CallStatus = "provider_contact_required"
)

// TurnRole describes who produced a conversation turn.
type TurnRole string

const (
	RolePatient TurnRole = "patient"
	RoleAgent   TurnRole = "agent"
)

// ConversationTurn is one utterance in a call. Turns are immutable once
// appended; stage resolution depends on their exact order.
type ConversationTurn struct {
	Role       TurnRole  `json:"role"`
	Content    string    `json:"content"`
	Confidence *float64  `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CallSession represents one phone interaction instance. It is owned by the
// orchestration layer for its lifetime and persisted between turns.
type CallSession struct {
	ID              string             `json:"id"`
	PatientID       string             `json:"patient_id"`
	CallType        CallType           `json:"call_type"`
	Status          CallStatus         `json:"status"`
	DaysPostSurgery int                `json:"days_post_surgery"`
	History         []ConversationTurn `json:"history"`
	Report          Report             `json:"report"`
	StartedAt       time.Time          `json:"started_at"`
	DurationSeconds int                `json:"duration_seconds"`
}

// Report is the accumulated structured data harvested from a patient's
// conversations, scoped per call type so the same patient can carry both
// without collision. Fields are merge-only: once written they are never
// cleared by a later turn.
type Report struct {
	InitialAssessment InitialAssessmentReport `json:"initial_assessment_call"`
	Preparation       PreparationReport       `json:"preparation_call"`
}

// InitialAssessmentReport holds the fields collected by the
// initial_clinical_assessment call type.
type InitialAssessmentReport struct {
	ReadyConfirmed       *bool    `json:"ready_confirmed,omitempty"`
	SurgeryDateConfirmed *bool    `json:"surgery_date_confirmed,omitempty"`
	PainLevel            *int     `json:"pain_level,omitempty"`
	HighPainAlert        bool     `json:"high_pain_alert,omitempty"`
	DifficultActivities  []string `json:"difficult_activities,omitempty"`
	Helper               string   `json:"helper,omitempty"`
}

// EquipmentStatus values for the preparation call's equipment area.
const (
	EquipmentObtained = "obtained"
	EquipmentNeeded   = "needed"
	EquipmentNone     = "none"
)

// ListNone is the sentinel recorded when a patient explicitly reports having
// none of something; a list holding it counts as a complete answer.
const ListNone = "none"

// PreparationReport holds the fields collected by the preparation call type.
// The three medication fields are populated strictly in declaration order.
type PreparationReport struct {
	ReadyConfirmed           *bool    `json:"ready_confirmed,omitempty"`
	HazardsAddressed         *bool    `json:"hazards_addressed,omitempty"`
	EquipmentStatus          string   `json:"equipment_status,omitempty"`
	BloodThinningMedications []string `json:"blood_thinning_medications,omitempty"`
	AllergiesList            []string `json:"allergies_list,omitempty"`
	MedicalConditionsList    []string `json:"medical_conditions_list,omitempty"`
}

// Intent is the closed vocabulary of things a patient utterance can mean.
type Intent string

const (
	IntentConfirmYes          Intent = "confirm_yes"
	IntentConfirmNo           Intent = "confirm_no"
	IntentReportPain          Intent = "report_pain"
	IntentDifficultActivities Intent = "difficult_activities"
	IntentIdentifyHelper      Intent = "identify_helper"
	IntentHomeSafety          Intent = "home_safety_response"
	IntentEquipment           Intent = "equipment_response"
	IntentMedication          Intent = "medication_response"
	IntentUnknown             Intent = "unknown"
)

// KnownIntent reports whether s is part of the closed intent vocabulary.
func KnownIntent(s string) bool {
	switch Intent(s) {
	case IntentConfirmYes, IntentConfirmNo, IntentReportPain,
		IntentDifficultActivities, IntentIdentifyHelper, IntentHomeSafety,
		IntentEquipment, IntentMedication, IntentUnknown:
		return true
	}
	return false
}

// Entities carries the typed values extracted from one utterance. Only the
// fields relevant to the intent are set.
type Entities struct {
	PainLevel        *int     `json:"pain_level,omitempty"`
	Activities       []string `json:"activities,omitempty"`
	Helper           string   `json:"helper,omitempty"`
	HazardsAddressed *bool    `json:"hazards_addressed,omitempty"`
	EquipmentStatus  string   `json:"equipment_status,omitempty"`
	Medications      []string `json:"medications,omitempty"`
	Allergies        []string `json:"allergies,omitempty"`
	Conditions       []string `json:"conditions,omitempty"`
}

// NLUResult is the outcome of extracting one utterance. It is produced and
// consumed within a single turn.
type NLUResult struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

// RiskCategory names one scored clinical risk dimension.
type RiskCategory string

const (
	RiskPain          RiskCategory = "pain"
	RiskInfection     RiskCategory = "infection"
	RiskMobility      RiskCategory = "mobility"
	RiskMedication    RiskCategory = "medication"
	RiskPsychological RiskCategory = "psychological"
)

// RiskLevel is an ordered severity scale.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Score maps a level onto the 1..4 scale used for averaging.
func (l RiskLevel) Score() int {
	switch l {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskModerate:
		return 2
	default:
		return 1
	}
}

// RiskAlert is one escalation record for a single firing category.
type RiskAlert struct {
	Category        RiskCategory `json:"category"`
	Level           RiskLevel    `json:"level"`
	Reason          string       `json:"reason"`
	ImmediateAction bool         `json:"immediate_action"`
}

// RiskAssessment is the combined outcome of scoring all categories. It is
// forwarded to the notification collaborator, not persisted in the report.
type RiskAssessment struct {
	PerCategory map[RiskCategory]RiskLevel `json:"per_category"`
	Overall     RiskLevel                  `json:"overall"`
	Alerts      []RiskAlert                `json:"alerts"`
	Escalate    bool                       `json:"escalate"`
}
