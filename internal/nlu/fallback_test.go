package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preop-callbot/pkg"
)

func TestFallbackPainScore(t *testing.T) {
	res := FallbackExtract("my pain is a 9", pkg.Report{})
	assert.Equal(t, pkg.IntentReportPain, res.Intent)
	require.NotNil(t, res.Entities.PainLevel)
	assert.Equal(t, 9, *res.Entities.PainLevel)

	res = FallbackExtract("I'd say a 10 honestly", pkg.Report{})
	require.NotNil(t, res.Entities.PainLevel)
	assert.Equal(t, 10, *res.Entities.PainLevel)

	// Numbers outside the scale and decimals do not read as pain scores.
	assert.Equal(t, pkg.IntentUnknown, FallbackExtract("I slept 11 hours", pkg.Report{}).Intent)
	assert.Equal(t, pkg.IntentUnknown, FallbackExtract("around 8.5 I guess", pkg.Report{}).Intent)
}

func TestFallbackConfirmations(t *testing.T) {
	assert.Equal(t, pkg.IntentConfirmYes, FallbackExtract("Yes, that works", pkg.Report{}).Intent)
	assert.Equal(t, pkg.IntentConfirmNo, FallbackExtract("no, that's wrong", pkg.Report{}).Intent)

	// "no" only matches on word boundaries.
	assert.Equal(t, pkg.IntentUnknown, FallbackExtract("I know how it goes", pkg.Report{}).Intent)
	assert.Equal(t, pkg.IntentUnknown, FallbackExtract("feeling normal today", pkg.Report{}).Intent)
}

func TestFallbackYesWithClearingIsHomeSafety(t *testing.T) {
	res := FallbackExtract("yes, everything has been cleared", pkg.Report{})
	assert.Equal(t, pkg.IntentHomeSafety, res.Intent)
	require.NotNil(t, res.Entities.HazardsAddressed)
	assert.True(t, *res.Entities.HazardsAddressed)
}

func TestFallbackHomeSafety(t *testing.T) {
	res := FallbackExtract("I removed the rugs and taped down the cords", pkg.Report{})
	assert.Equal(t, pkg.IntentHomeSafety, res.Intent)
	require.NotNil(t, res.Entities.HazardsAddressed)
	assert.True(t, *res.Entities.HazardsAddressed)

	res = FallbackExtract("I haven't moved the rugs yet", pkg.Report{})
	assert.Equal(t, pkg.IntentHomeSafety, res.Intent)
	require.NotNil(t, res.Entities.HazardsAddressed)
	assert.False(t, *res.Entities.HazardsAddressed)
}

func TestFallbackEquipment(t *testing.T) {
	res := FallbackExtract("I already have the walker at home", pkg.Report{})
	assert.Equal(t, pkg.IntentEquipment, res.Intent)
	assert.Equal(t, pkg.EquipmentObtained, res.Entities.EquipmentStatus)

	res = FallbackExtract("I still need the shower chair", pkg.Report{})
	assert.Equal(t, pkg.EquipmentNeeded, res.Entities.EquipmentStatus)

	res = FallbackExtract("we don't need any equipment", pkg.Report{})
	assert.Equal(t, pkg.EquipmentNone, res.Entities.EquipmentStatus)
}

func TestFallbackActivities(t *testing.T) {
	res := FallbackExtract("stairs and bending are hard for me", pkg.Report{})
	assert.Equal(t, pkg.IntentDifficultActivities, res.Intent)
	assert.Equal(t, []string{"stairs", "bending"}, res.Entities.Activities)
}

func TestFallbackHelper(t *testing.T) {
	res := FallbackExtract("my wife will be home with me", pkg.Report{})
	assert.Equal(t, pkg.IntentIdentifyHelper, res.Intent)
	assert.Equal(t, "wife", res.Entities.Helper)
}

func TestFallbackMedicationFamilies(t *testing.T) {
	res := FallbackExtract("I take aspirin every morning", pkg.Report{})
	assert.Equal(t, pkg.IntentMedication, res.Intent)
	assert.Equal(t, []string{"aspirin"}, res.Entities.Medications)

	res = FallbackExtract("no allergies that I know of", pkg.Report{})
	assert.Equal(t, pkg.IntentMedication, res.Intent)
	assert.Equal(t, []string{pkg.ListNone}, res.Entities.Allergies)

	res = FallbackExtract("I'm allergic to penicillin", pkg.Report{})
	assert.Equal(t, []string{"penicillin"}, res.Entities.Allergies)

	res = FallbackExtract("I have diabetes and high blood pressure", pkg.Report{})
	assert.Equal(t, []string{"diabetes", "blood pressure"}, res.Entities.Conditions)
}

func TestFallbackMedicationRuleBeatsBareYes(t *testing.T) {
	res := FallbackExtract("yes, I take warfarin", pkg.Report{})
	assert.Equal(t, pkg.IntentMedication, res.Intent)
	assert.Equal(t, []string{"warfarin"}, res.Entities.Medications)
}

func TestFallbackGenericNegativeResolvedAgainstReport(t *testing.T) {
	// "no medications" with nothing answered yet fills the first sub-field.
	res := FallbackExtract("I'm not taking any medications", pkg.Report{})
	assert.Equal(t, pkg.IntentMedication, res.Intent)
	assert.Equal(t, []string{pkg.ListNone}, res.Entities.Medications)

	// With blood thinners already answered the same words fill allergies.
	report := pkg.Report{}
	report.Preparation.BloodThinningMedications = []string{"aspirin"}
	res = FallbackExtract("no, no medication issues", report)
	assert.Equal(t, []string{pkg.ListNone}, res.Entities.Allergies)
	assert.Empty(t, res.Entities.Medications)

	report.Preparation.AllergiesList = []string{pkg.ListNone}
	res = FallbackExtract("no, nothing with my medications", report)
	assert.Equal(t, []string{pkg.ListNone}, res.Entities.Conditions)
}

func TestFallbackUnknown(t *testing.T) {
	res := FallbackExtract("the weather has been lovely", pkg.Report{})
	assert.Equal(t, pkg.IntentUnknown, res.Intent)
	assert.Equal(t, pkg.Entities{}, res.Entities)
}
