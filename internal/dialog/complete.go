package dialog

import "preop-callbot/pkg"

// IsAreaComplete reports whether the named area has collected everything it
// requires. A field counts as present when it is non-nil and non-empty; an
// empty list is incomplete, while a list holding only the "none" sentinel is
// a complete answer.
func IsAreaComplete(report pkg.Report, stage Stage, ct pkg.CallType) bool {
	def, ok := Area(ct, stage)
	if !ok {
		// Greeting and Closing carry no required data.
		return stage == StageGreeting || stage == StageClosing
	}
	for _, field := range def.RequiredFields {
		if !fieldFilled(report, ct, field) {
			return false
		}
	}
	return true
}

// IsFieldComplete reports whether a single required field is populated. For
// the ordered medication-review fields it additionally requires that every
// earlier field is populated too, so a value recorded out of order never
// makes a later field count as answered.
func IsFieldComplete(report pkg.Report, ct pkg.CallType, stage Stage, field string) bool {
	def, ok := Area(ct, stage)
	if !ok {
		return false
	}
	for _, f := range def.RequiredFields {
		if !fieldFilled(report, ct, f) {
			return false
		}
		if f == field {
			return true
		}
		if !def.Ordered {
			// Unordered areas only gate on the field itself.
			return fieldFilled(report, ct, field)
		}
	}
	return false
}

// NextMedicationField returns the first unfilled medication sub-field in the
// mandated order, or "" when the review is complete.
func NextMedicationField(prep pkg.PreparationReport) string {
	switch {
	case len(prep.BloodThinningMedications) == 0:
		return FieldBloodThinners
	case len(prep.AllergiesList) == 0:
		return FieldAllergies
	case len(prep.MedicalConditionsList) == 0:
		return FieldMedicalConditions
	}
	return ""
}

func fieldFilled(report pkg.Report, ct pkg.CallType, field string) bool {
	switch ct {
	case pkg.CallTypeInitialAssessment:
		r := report.InitialAssessment
		switch field {
		case "ready_confirmed":
			return r.ReadyConfirmed != nil
		case "surgery_date_confirmed":
			return r.SurgeryDateConfirmed != nil
		case "pain_level":
			return r.PainLevel != nil
		case "difficult_activities":
			return len(r.DifficultActivities) > 0
		case "helper":
			return r.Helper != ""
		}
	case pkg.CallTypePreparation:
		r := report.Preparation
		switch field {
		case "ready_confirmed":
			return r.ReadyConfirmed != nil
		case "hazards_addressed":
			return r.HazardsAddressed != nil
		case "equipment_status":
			return r.EquipmentStatus != ""
		case FieldBloodThinners:
			return len(r.BloodThinningMedications) > 0
		case FieldAllergies:
			return len(r.AllergiesList) > 0
		case FieldMedicalConditions:
			return len(r.MedicalConditionsList) > 0
		}
	}
	return false
}
