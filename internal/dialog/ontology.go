package dialog

import "preop-callbot/pkg"

// Stage is the orchestrator's position in the ordered gate list for a call
// type.
type Stage string

const (
	StageGreeting                   Stage = "Greeting"
	StageInitialConfirmation        Stage = "InitialConfirmation"
	StageSurgeryDateConfirmation    Stage = "SurgeryDateConfirmation"
	StagePainAssessment             Stage = "PainAssessment"
	StageMobilityAssessment         Stage = "MobilityAssessment"
	StageSupportSystemAssessment    Stage = "SupportSystemAssessment"
	StageHomeSafetyAssessment       Stage = "HomeSafetyAssessment"
	StageMedicalEquipmentAssessment Stage = "MedicalEquipmentAssessment"
	StageMedicationReview           Stage = "MedicationReview"
	StageClosing                    Stage = "Closing"
)

// AreaDefinition names a topic area and the report fields it must collect.
// Ordered marks areas whose fields must be filled strictly in listed order.
type AreaDefinition struct {
	Name           Stage
	RequiredFields []string
	Ordered        bool
}

// gateOrder is the fixed walk order per call type. Greeting is satisfied by
// history alone and Closing is terminal; every gate in between maps to an
// area definition below.
var gateOrder = map[pkg.CallType][]Stage{
	pkg.CallTypeInitialAssessment: {
		StageGreeting,
		StageInitialConfirmation,
		StageSurgeryDateConfirmation,
		StagePainAssessment,
		StageMobilityAssessment,
		StageSupportSystemAssessment,
		StageClosing,
	},
	pkg.CallTypePreparation: {
		StageGreeting,
		StageInitialConfirmation,
		StageHomeSafetyAssessment,
		StageMedicalEquipmentAssessment,
		StageMedicationReview,
		StageClosing,
	},
}

// Medication sub-fields in their mandated fill order.
const (
	FieldBloodThinners     = "blood_thinning_medications"
	FieldAllergies         = "allergies_list"
	FieldMedicalConditions = "medical_conditions_list"
)

var areaDefinitions = map[pkg.CallType]map[Stage]AreaDefinition{
	pkg.CallTypeInitialAssessment: {
		StageInitialConfirmation:     {Name: StageInitialConfirmation, RequiredFields: []string{"ready_confirmed"}},
		StageSurgeryDateConfirmation: {Name: StageSurgeryDateConfirmation, RequiredFields: []string{"surgery_date_confirmed"}},
		StagePainAssessment:          {Name: StagePainAssessment, RequiredFields: []string{"pain_level"}},
		StageMobilityAssessment:      {Name: StageMobilityAssessment, RequiredFields: []string{"difficult_activities"}},
		StageSupportSystemAssessment: {Name: StageSupportSystemAssessment, RequiredFields: []string{"helper"}},
	},
	pkg.CallTypePreparation: {
		StageInitialConfirmation:        {Name: StageInitialConfirmation, RequiredFields: []string{"ready_confirmed"}},
		StageHomeSafetyAssessment:       {Name: StageHomeSafetyAssessment, RequiredFields: []string{"hazards_addressed"}},
		StageMedicalEquipmentAssessment: {Name: StageMedicalEquipmentAssessment, RequiredFields: []string{"equipment_status"}},
		StageMedicationReview: {
			Name:           StageMedicationReview,
			RequiredFields: []string{FieldBloodThinners, FieldAllergies, FieldMedicalConditions},
			Ordered:        true,
		},
	},
}

// Gates returns the ordered gate list for a call type, or nil when the call
// type is unknown.
func Gates(ct pkg.CallType) []Stage {
	return gateOrder[ct]
}

// Area returns the definition backing a gate, if it has one.
func Area(ct pkg.CallType, stage Stage) (AreaDefinition, bool) {
	def, ok := areaDefinitions[ct][stage]
	return def, ok
}

// NextGate returns the gate following the given one in the call type's walk
// order. Closing is its own successor.
func NextGate(ct pkg.CallType, stage Stage) Stage {
	gates := gateOrder[ct]
	for i, g := range gates {
		if g == stage && i+1 < len(gates) {
			return gates[i+1]
		}
	}
	return StageClosing
}

// PrevGate returns the gate preceding the given one. Greeting is its own
// predecessor.
func PrevGate(ct pkg.CallType, stage Stage) Stage {
	gates := gateOrder[ct]
	for i, g := range gates {
		if g == stage && i > 0 {
			return gates[i-1]
		}
	}
	return StageGreeting
}
