package dialog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"preop-callbot/pkg"
)

func TestApplyUpdateConfirmationRoutedByPreTurnStage(t *testing.T) {
	yes := pkg.NLUResult{Intent: pkg.IntentConfirmYes}

	report := ApplyUpdate(pkg.Report{}, StageInitialConfirmation, pkg.CallTypeInitialAssessment, yes)
	assert.NotNil(t, report.InitialAssessment.ReadyConfirmed)
	assert.True(t, *report.InitialAssessment.ReadyConfirmed)
	assert.Nil(t, report.InitialAssessment.SurgeryDateConfirmed,
		"a yes at InitialConfirmation must not touch the surgery date field")

	report = ApplyUpdate(report, StageSurgeryDateConfirmation, pkg.CallTypeInitialAssessment, yes)
	assert.NotNil(t, report.InitialAssessment.SurgeryDateConfirmed)
	assert.True(t, *report.InitialAssessment.SurgeryDateConfirmed)
}

func TestApplyUpdateConfirmationScopedByCallType(t *testing.T) {
	yes := pkg.NLUResult{Intent: pkg.IntentConfirmYes}
	report := ApplyUpdate(pkg.Report{}, StageInitialConfirmation, pkg.CallTypePreparation, yes)
	assert.NotNil(t, report.Preparation.ReadyConfirmed)
	assert.Nil(t, report.InitialAssessment.ReadyConfirmed,
		"preparation writes must not leak into the initial assessment scope")
}

func TestApplyUpdatePainReport(t *testing.T) {
	res := pkg.NLUResult{Intent: pkg.IntentReportPain, Entities: pkg.Entities{PainLevel: intPtr(9)}}
	report := ApplyUpdate(pkg.Report{}, StagePainAssessment, pkg.CallTypeInitialAssessment, res)
	assert.Equal(t, 9, *report.InitialAssessment.PainLevel)
	assert.True(t, report.InitialAssessment.HighPainAlert)

	mild := pkg.NLUResult{Intent: pkg.IntentReportPain, Entities: pkg.Entities{PainLevel: intPtr(4)}}
	report2 := ApplyUpdate(pkg.Report{}, StagePainAssessment, pkg.CallTypeInitialAssessment, mild)
	assert.False(t, report2.InitialAssessment.HighPainAlert)

	// Pain belongs to the initial assessment scope only.
	report3 := ApplyUpdate(pkg.Report{}, StagePainAssessment, pkg.CallTypePreparation, res)
	assert.Empty(t, cmp.Diff(pkg.Report{}, report3))
}

func TestApplyUpdateUnknownIntentIsNoOp(t *testing.T) {
	before := pkg.Report{InitialAssessment: pkg.InitialAssessmentReport{Helper: "wife"}}
	after := ApplyUpdate(before, StageSupportSystemAssessment, pkg.CallTypeInitialAssessment, pkg.NLUResult{Intent: pkg.IntentUnknown})
	assert.Empty(t, cmp.Diff(before, after))
}

func TestApplyUpdateActivitiesMergeMonotonic(t *testing.T) {
	report := ApplyUpdate(pkg.Report{}, StageMobilityAssessment, pkg.CallTypeInitialAssessment,
		pkg.NLUResult{Intent: pkg.IntentDifficultActivities, Entities: pkg.Entities{Activities: []string{"walking"}}})
	report = ApplyUpdate(report, StageMobilityAssessment, pkg.CallTypeInitialAssessment,
		pkg.NLUResult{Intent: pkg.IntentDifficultActivities, Entities: pkg.Entities{Activities: []string{"stairs", "Walking"}}})
	assert.Equal(t, []string{"walking", "stairs"}, report.InitialAssessment.DifficultActivities)
}

func TestApplyUpdateMedicationSequence(t *testing.T) {
	report := pkg.Report{}
	ct := pkg.CallTypePreparation

	report = ApplyUpdate(report, StageMedicationReview, ct,
		pkg.NLUResult{Intent: pkg.IntentMedication, Entities: pkg.Entities{Medications: []string{"aspirin"}}})
	assert.Equal(t, []string{"aspirin"}, report.Preparation.BloodThinningMedications)
	assert.False(t, IsAreaComplete(report, StageMedicationReview, ct))

	report = ApplyUpdate(report, StageMedicationReview, ct,
		pkg.NLUResult{Intent: pkg.IntentMedication, Entities: pkg.Entities{Allergies: []string{pkg.ListNone}}})
	assert.Equal(t, []string{pkg.ListNone}, report.Preparation.AllergiesList)
	assert.False(t, IsAreaComplete(report, StageMedicationReview, ct))

	report = ApplyUpdate(report, StageMedicationReview, ct,
		pkg.NLUResult{Intent: pkg.IntentMedication, Entities: pkg.Entities{Conditions: []string{"diabetes"}}})
	assert.Equal(t, []string{"diabetes"}, report.Preparation.MedicalConditionsList)
	assert.True(t, IsAreaComplete(report, StageMedicationReview, ct))
}

func TestApplyUpdateMedicationOrderEnforced(t *testing.T) {
	// A condition reported before the earlier fields are answered is dropped
	// so the ordering invariant holds; the stage re-asks in order.
	report := ApplyUpdate(pkg.Report{}, StageMedicationReview, pkg.CallTypePreparation,
		pkg.NLUResult{Intent: pkg.IntentMedication, Entities: pkg.Entities{Conditions: []string{"diabetes"}}})
	assert.Empty(t, report.Preparation.MedicalConditionsList)
	assert.Empty(t, report.Preparation.BloodThinningMedications)
}

func TestApplyUpdateBareNoAtMedicationReview(t *testing.T) {
	no := pkg.NLUResult{Intent: pkg.IntentConfirmNo}
	ct := pkg.CallTypePreparation

	report := ApplyUpdate(pkg.Report{}, StageMedicationReview, ct, no)
	assert.Equal(t, []string{pkg.ListNone}, report.Preparation.BloodThinningMedications)

	report = ApplyUpdate(report, StageMedicationReview, ct, no)
	assert.Equal(t, []string{pkg.ListNone}, report.Preparation.AllergiesList)

	report = ApplyUpdate(report, StageMedicationReview, ct, no)
	assert.Equal(t, []string{pkg.ListNone}, report.Preparation.MedicalConditionsList)
	assert.True(t, IsAreaComplete(report, StageMedicationReview, ct))
}

func TestApplyUpdateEquipmentConfirmation(t *testing.T) {
	ct := pkg.CallTypePreparation
	report := ApplyUpdate(pkg.Report{}, StageMedicalEquipmentAssessment, ct, pkg.NLUResult{Intent: pkg.IntentConfirmYes})
	assert.Equal(t, pkg.EquipmentObtained, report.Preparation.EquipmentStatus)

	report = ApplyUpdate(pkg.Report{}, StageMedicalEquipmentAssessment, ct, pkg.NLUResult{Intent: pkg.IntentConfirmNo})
	assert.Equal(t, pkg.EquipmentNeeded, report.Preparation.EquipmentStatus)
}

func TestApplyUpdateHomeSafety(t *testing.T) {
	ct := pkg.CallTypePreparation
	addressed := true
	report := ApplyUpdate(pkg.Report{}, StageHomeSafetyAssessment, ct,
		pkg.NLUResult{Intent: pkg.IntentHomeSafety, Entities: pkg.Entities{HazardsAddressed: &addressed}})
	assert.NotNil(t, report.Preparation.HazardsAddressed)
	assert.True(t, *report.Preparation.HazardsAddressed)

	// A plain yes at the same gate works too.
	report2 := ApplyUpdate(pkg.Report{}, StageHomeSafetyAssessment, ct, pkg.NLUResult{Intent: pkg.IntentConfirmYes})
	assert.NotNil(t, report2.Preparation.HazardsAddressed)
	assert.True(t, *report2.Preparation.HazardsAddressed)
}

func TestMergeListDropsNoneForConcreteValues(t *testing.T) {
	out := mergeList([]string{pkg.ListNone}, []string{"aspirin"})
	assert.Equal(t, []string{"aspirin"}, out)
	assert.NotEmpty(t, out, "a field once non-empty never becomes empty")
}
