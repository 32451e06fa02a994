package dialog

import (
	"strings"

	"preop-callbot/pkg"
)

// highPainThreshold flags pain reports that staff should see even before the
// risk assessor runs.
const highPainThreshold = 7

// ApplyUpdate merges an extracted result into the report slot selected by
// the stage that was active before the turn. It is total and deterministic:
// unknown intents are a no-op, writes land only under the session's call
// type, and a field once written is never cleared.
func ApplyUpdate(report pkg.Report, stageBefore Stage, ct pkg.CallType, res pkg.NLUResult) pkg.Report {
	switch res.Intent {
	case pkg.IntentConfirmYes:
		return applyConfirmation(report, stageBefore, ct, true)
	case pkg.IntentConfirmNo:
		return applyConfirmation(report, stageBefore, ct, false)
	case pkg.IntentReportPain:
		if ct == pkg.CallTypeInitialAssessment && res.Entities.PainLevel != nil {
			level := *res.Entities.PainLevel
			report.InitialAssessment.PainLevel = &level
			if level >= highPainThreshold {
				report.InitialAssessment.HighPainAlert = true
			}
		}
	case pkg.IntentDifficultActivities:
		if ct == pkg.CallTypeInitialAssessment && len(res.Entities.Activities) > 0 {
			report.InitialAssessment.DifficultActivities = mergeList(
				report.InitialAssessment.DifficultActivities, res.Entities.Activities)
		}
	case pkg.IntentIdentifyHelper:
		if ct == pkg.CallTypeInitialAssessment && res.Entities.Helper != "" {
			report.InitialAssessment.Helper = res.Entities.Helper
		}
	case pkg.IntentHomeSafety:
		if ct == pkg.CallTypePreparation && res.Entities.HazardsAddressed != nil {
			v := *res.Entities.HazardsAddressed
			report.Preparation.HazardsAddressed = &v
		}
	case pkg.IntentEquipment:
		if ct == pkg.CallTypePreparation && res.Entities.EquipmentStatus != "" {
			report.Preparation.EquipmentStatus = res.Entities.EquipmentStatus
		}
	case pkg.IntentMedication:
		if ct == pkg.CallTypePreparation {
			report.Preparation = applyMedication(report.Preparation, res.Entities)
		}
	}
	return report
}

// applyConfirmation routes a bare yes/no to the field gated by the pre-turn
// stage. At MedicationReview a "no" answers whichever sub-field is still
// empty, in the mandated order.
func applyConfirmation(report pkg.Report, stageBefore Stage, ct pkg.CallType, confirmed bool) pkg.Report {
	v := confirmed
	switch stageBefore {
	case StageInitialConfirmation:
		switch ct {
		case pkg.CallTypeInitialAssessment:
			report.InitialAssessment.ReadyConfirmed = &v
		case pkg.CallTypePreparation:
			report.Preparation.ReadyConfirmed = &v
		}
	case StageSurgeryDateConfirmation:
		if ct == pkg.CallTypeInitialAssessment {
			report.InitialAssessment.SurgeryDateConfirmed = &v
		}
	case StageHomeSafetyAssessment:
		if ct == pkg.CallTypePreparation {
			report.Preparation.HazardsAddressed = &v
		}
	case StageMedicalEquipmentAssessment:
		if ct == pkg.CallTypePreparation {
			if confirmed {
				report.Preparation.EquipmentStatus = pkg.EquipmentObtained
			} else {
				report.Preparation.EquipmentStatus = pkg.EquipmentNeeded
			}
		}
	case StageMedicationReview:
		if ct == pkg.CallTypePreparation && !confirmed {
			none := pkg.Entities{}
			switch NextMedicationField(report.Preparation) {
			case FieldBloodThinners:
				none.Medications = []string{pkg.ListNone}
			case FieldAllergies:
				none.Allergies = []string{pkg.ListNone}
			case FieldMedicalConditions:
				none.Conditions = []string{pkg.ListNone}
			}
			report.Preparation = applyMedication(report.Preparation, none)
		}
	}
	return report
}

// applyMedication fills the three medication sub-fields while preserving the
// mandated order: a later field is never written while an earlier one is
// still empty, so the ordering invariant holds across any answer sequence.
// A value dropped here is re-asked by the stage instruction.
func applyMedication(prep pkg.PreparationReport, e pkg.Entities) pkg.PreparationReport {
	if len(e.Medications) > 0 {
		prep.BloodThinningMedications = mergeList(prep.BloodThinningMedications, e.Medications)
	}
	if len(e.Allergies) > 0 && len(prep.BloodThinningMedications) > 0 {
		prep.AllergiesList = mergeList(prep.AllergiesList, e.Allergies)
	}
	if len(e.Conditions) > 0 && len(prep.BloodThinningMedications) > 0 && len(prep.AllergiesList) > 0 {
		prep.MedicalConditionsList = mergeList(prep.MedicalConditionsList, e.Conditions)
	}
	return prep
}

// mergeList appends new values, deduplicating case-insensitively. The "none"
// sentinel is dropped once a concrete value exists and never displaces one.
func mergeList(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	hasConcrete := false
	for _, lst := range [][]string{existing, incoming} {
		for _, v := range lst {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if seen[key] {
				continue
			}
			seen[key] = true
			if key != pkg.ListNone {
				hasConcrete = true
			}
			out = append(out, v)
		}
	}
	if hasConcrete && seen[pkg.ListNone] {
		filtered := out[:0]
		for _, v := range out {
			if strings.ToLower(v) != pkg.ListNone {
				filtered = append(filtered, v)
			}
		}
		out = filtered
	}
	return out
}
