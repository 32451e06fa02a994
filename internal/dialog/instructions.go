package dialog

// instructions.go holds the per-stage instructions handed to the language
// generator, the deterministic lines spoken when generation fails, and the
// fixed terminal scripts. Keeping them in one file makes them easy to tweak
// without touching the orchestration logic.

import "preop-callbot/pkg"

const (
	// ClosingScript is the fixed, reproducible wrap-up. It is spoken
	// verbatim rather than handed to the generator so every call ends on a
	// deterministic note.
	ClosingScript = "Thank you for answering all of my questions today. Your care team will review your answers before your surgery. If anything changes, please call your surgeon's office. Take care and goodbye."

	// RescheduleScript ends a call after the patient declines to proceed.
	RescheduleScript = "No problem at all. We will have someone from the scheduling team call you back at a better time. Thank you, and goodbye."

	// ProviderContactScript ends a call after the patient disputes the
	// surgery date.
	ProviderContactScript = "Thank you for letting me know. I will flag this for your provider's office so they can confirm the correct date with you directly. Goodbye."
)

type stageScript struct {
	Instruction string
	Fallback    string
}

var initialAssessmentScripts = map[Stage]stageScript{
	StageGreeting: {
		Instruction: "Greet the patient warmly, introduce yourself as the pre-surgery care assistant, and ask whether now is a good time to go over a few questions before their surgery.",
		Fallback:    "Hello! This is your pre-surgery care assistant calling. Is now a good time to go over a few quick questions before your surgery?",
	},
	StageInitialConfirmation: {
		Instruction: "Confirm the patient is ready to answer a few questions about how they are doing before surgery. Ask for a simple yes or no.",
		Fallback:    "Are you ready to answer a few questions about how you're doing before your surgery?",
	},
	StageSurgeryDateConfirmation: {
		Instruction: "Confirm the patient's scheduled surgery date is still correct. Ask for a simple yes or no.",
		Fallback:    "I have your surgery scheduled as planned. Is that date still correct?",
	},
	StagePainAssessment: {
		Instruction: "Ask the patient to rate their current pain on a scale from 0 to 10, where 0 is no pain and 10 is the worst pain imaginable.",
		Fallback:    "On a scale from 0 to 10, where 0 is no pain and 10 is the worst pain imaginable, how would you rate your pain right now?",
	},
	StageMobilityAssessment: {
		Instruction: "Ask which everyday activities are currently difficult for the patient, such as walking, standing, or climbing stairs.",
		Fallback:    "Are there everyday activities that are difficult for you right now, like walking, standing, or climbing stairs?",
	},
	StageSupportSystemAssessment: {
		Instruction: "Ask who will be helping the patient at home after the surgery, for example a spouse, family member, or friend.",
		Fallback:    "Who will be helping you at home after your surgery, for example a spouse, family member, or friend?",
	},
}

var preparationScripts = map[Stage]stageScript{
	StageGreeting: {
		Instruction: "Greet the patient warmly, introduce yourself as the pre-surgery preparation assistant, and ask whether now is a good time to go over their preparation checklist.",
		Fallback:    "Hello! This is your pre-surgery preparation assistant calling. Is now a good time to go over your preparation checklist?",
	},
	StageInitialConfirmation: {
		Instruction: "Confirm the patient is ready to go through their pre-surgery preparation checklist. Ask for a simple yes or no.",
		Fallback:    "Are you ready to go through your pre-surgery preparation checklist?",
	},
	StageHomeSafetyAssessment: {
		Instruction: "Ask whether the patient has cleared trip hazards at home, such as loose rugs, cords, or clutter in walkways.",
		Fallback:    "Have you been able to clear trip hazards at home, like loose rugs, cords, or clutter in the walkways?",
	},
	StageMedicalEquipmentAssessment: {
		Instruction: "Ask whether the patient has obtained the recommended recovery equipment, such as a raised toilet seat, a grabber, or a walker.",
		Fallback:    "Have you been able to get the recommended recovery equipment, like a raised toilet seat, a grabber, or a walker?",
	},
}

// medicationQuestions asks exactly one unaddressed medication sub-field at a
// time, in the mandated order.
var medicationQuestions = map[string]stageScript{
	FieldBloodThinners: {
		Instruction: "Ask whether the patient takes any blood-thinning medications, such as aspirin, warfarin, or Eliquis, and which ones.",
		Fallback:    "Do you take any blood-thinning medications, such as aspirin, warfarin, or Eliquis?",
	},
	FieldAllergies: {
		Instruction: "Ask whether the patient has any medication allergies, and which ones.",
		Fallback:    "Do you have any medication allergies?",
	},
	FieldMedicalConditions: {
		Instruction: "Ask whether the patient has any ongoing medical conditions, such as diabetes, heart problems, or high blood pressure.",
		Fallback:    "Do you have any ongoing medical conditions, such as diabetes, heart problems, or high blood pressure?",
	},
}

// StageInstruction returns the generation instruction and deterministic
// fallback line for a stage. For MedicationReview the next unfilled
// sub-field picks the question.
func StageInstruction(stage Stage, ct pkg.CallType, report pkg.Report) (instruction, fallback string) {
	if stage == StageMedicationReview {
		field := NextMedicationField(report.Preparation)
		if field == "" {
			field = FieldMedicalConditions
		}
		q := medicationQuestions[field]
		return q.Instruction, q.Fallback
	}
	var scripts map[Stage]stageScript
	switch ct {
	case pkg.CallTypePreparation:
		scripts = preparationScripts
	default:
		scripts = initialAssessmentScripts
	}
	if s, ok := scripts[stage]; ok {
		return s.Instruction, s.Fallback
	}
	// Unknown stage for this call type: fall back to the greeting.
	s := scripts[StageGreeting]
	return s.Instruction, s.Fallback
}
