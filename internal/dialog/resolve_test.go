package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"preop-callbot/pkg"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func turns(contents ...string) []pkg.ConversationTurn {
	out := make([]pkg.ConversationTurn, 0, len(contents))
	role := pkg.RoleAgent
	for _, c := range contents {
		out = append(out, pkg.ConversationTurn{Role: role, Content: c})
		if role == pkg.RoleAgent {
			role = pkg.RolePatient
		} else {
			role = pkg.RoleAgent
		}
	}
	return out
}

func completeInitialReport() pkg.Report {
	return pkg.Report{
		InitialAssessment: pkg.InitialAssessmentReport{
			ReadyConfirmed:       boolPtr(true),
			SurgeryDateConfirmed: boolPtr(true),
			PainLevel:            intPtr(3),
			DifficultActivities:  []string{"walking"},
			Helper:               "wife",
		},
	}
}

func TestResolveStageEmptyHistory(t *testing.T) {
	for _, ct := range []pkg.CallType{pkg.CallTypeInitialAssessment, pkg.CallTypePreparation} {
		assert.Equal(t, StageGreeting, ResolveStage(nil, pkg.Report{}, ct), "call type %s", ct)
		// Report contents must not matter when nothing has been said.
		assert.Equal(t, StageGreeting, ResolveStage(nil, completeInitialReport(), ct))
	}
}

func TestResolveStageUnknownCallType(t *testing.T) {
	assert.Equal(t, StageGreeting, ResolveStage(turns("hello", "hi"), pkg.Report{}, pkg.CallType("unheard_of")))
}

func TestResolveStageWalksGatesInOrder(t *testing.T) {
	history := turns("hello", "hi")
	report := pkg.Report{}

	assert.Equal(t, StageInitialConfirmation, ResolveStage(history, report, pkg.CallTypeInitialAssessment))

	report.InitialAssessment.ReadyConfirmed = boolPtr(true)
	assert.Equal(t, StageSurgeryDateConfirmation, ResolveStage(history, report, pkg.CallTypeInitialAssessment))

	report.InitialAssessment.SurgeryDateConfirmed = boolPtr(true)
	assert.Equal(t, StagePainAssessment, ResolveStage(history, report, pkg.CallTypeInitialAssessment))

	report.InitialAssessment.PainLevel = intPtr(4)
	assert.Equal(t, StageMobilityAssessment, ResolveStage(history, report, pkg.CallTypeInitialAssessment))

	report.InitialAssessment.DifficultActivities = []string{"stairs"}
	assert.Equal(t, StageSupportSystemAssessment, ResolveStage(history, report, pkg.CallTypeInitialAssessment))

	report.InitialAssessment.Helper = "daughter"
	assert.Equal(t, StageClosing, ResolveStage(history, report, pkg.CallTypeInitialAssessment))
}

func TestResolveStagePreparationWalk(t *testing.T) {
	history := turns("hello", "hi")
	report := pkg.Report{}

	assert.Equal(t, StageInitialConfirmation, ResolveStage(history, report, pkg.CallTypePreparation))

	report.Preparation.ReadyConfirmed = boolPtr(true)
	assert.Equal(t, StageHomeSafetyAssessment, ResolveStage(history, report, pkg.CallTypePreparation))

	report.Preparation.HazardsAddressed = boolPtr(true)
	assert.Equal(t, StageMedicalEquipmentAssessment, ResolveStage(history, report, pkg.CallTypePreparation))

	report.Preparation.EquipmentStatus = pkg.EquipmentObtained
	assert.Equal(t, StageMedicationReview, ResolveStage(history, report, pkg.CallTypePreparation))

	report.Preparation.BloodThinningMedications = []string{"aspirin"}
	report.Preparation.AllergiesList = []string{pkg.ListNone}
	report.Preparation.MedicalConditionsList = []string{"diabetes"}
	assert.Equal(t, StageClosing, ResolveStage(history, report, pkg.CallTypePreparation))
}

func TestResolveStageIdempotent(t *testing.T) {
	history := turns("hello", "hi", "are you ready?", "yes")
	report := pkg.Report{InitialAssessment: pkg.InitialAssessmentReport{ReadyConfirmed: boolPtr(true)}}
	first := ResolveStage(history, report, pkg.CallTypeInitialAssessment)
	second := ResolveStage(history, report, pkg.CallTypeInitialAssessment)
	assert.Equal(t, first, second)
}

func TestStageBeforeTurn(t *testing.T) {
	// History ends with the patient's "yes"; the stage that asked the
	// question is resolved from everything before it.
	history := turns("hello, is now a good time?", "yes")
	report := pkg.Report{}
	assert.Equal(t, StageInitialConfirmation, StageBeforeTurn(history, report, pkg.CallTypeInitialAssessment))

	// After the merge the post-turn stage moves on, but the pre-turn stage
	// stays put for the same inputs.
	merged := pkg.Report{InitialAssessment: pkg.InitialAssessmentReport{ReadyConfirmed: boolPtr(true)}}
	assert.Equal(t, StageSurgeryDateConfirmation, ResolveStage(history, merged, pkg.CallTypeInitialAssessment))
	assert.Equal(t, StageInitialConfirmation, StageBeforeTurn(history, report, pkg.CallTypeInitialAssessment))
}

func TestStageBeforeTurnEmptyHistory(t *testing.T) {
	assert.Equal(t, StageGreeting, StageBeforeTurn(nil, pkg.Report{}, pkg.CallTypeInitialAssessment))
}

func TestGateNeighbors(t *testing.T) {
	assert.Equal(t, StageSurgeryDateConfirmation, NextGate(pkg.CallTypeInitialAssessment, StageInitialConfirmation))
	assert.Equal(t, StageInitialConfirmation, PrevGate(pkg.CallTypeInitialAssessment, StageSurgeryDateConfirmation))
	assert.Equal(t, StageClosing, NextGate(pkg.CallTypePreparation, StageMedicationReview))
	assert.Equal(t, StageGreeting, PrevGate(pkg.CallTypePreparation, StageGreeting))
}
