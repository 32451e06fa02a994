package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"preop-callbot/internal/risk"
	"preop-callbot/pkg"
)

// Extractor turns one utterance (plus short history and the accumulated
// report) into an intent and entities. Implementations never fail; the worst
// case is the unknown intent.
type Extractor interface {
	Extract(ctx context.Context, utterance string, history []pkg.ConversationTurn, report pkg.Report) pkg.NLUResult
}

// Generator produces the spoken line for a stage instruction. The core
// treats the returned text as opaque.
type Generator interface {
	Speak(ctx context.Context, instruction string, history []pkg.ConversationTurn) (string, error)
}

// SessionStore loads and durably saves call sessions between turns.
type SessionStore interface {
	Load(ctx context.Context, id string) (*pkg.CallSession, error)
	Save(ctx context.Context, sess *pkg.CallSession) error
}

// SessionLocker serializes updates to a single session. Locks on different
// keys are fully independent.
type SessionLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// AlertPublisher forwards escalation alerts to the notification
// collaborator. Delivery retries are the publisher's concern; the
// orchestrator fires and forgets.
type AlertPublisher interface {
	Publish(ctx context.Context, sessionID string, category, severity, message string) error
}

// TurnInput is what the telephony layer hands over for one turn. An empty
// utterance signals "begin the call". Confidence is passed through to the
// recorded turn and otherwise ignored.
type TurnInput struct {
	Utterance  string
	Confidence *float64
}

// TurnResult is the orchestration outcome of one processed turn.
type TurnResult struct {
	ResponseText string              `json:"response_text"`
	Stage        Stage               `json:"stage"`
	Report       pkg.Report          `json:"report"`
	Status       pkg.CallStatus      `json:"status"`
	Escalation   *pkg.RiskAssessment `json:"escalation,omitempty"`
}

// Orchestrator drives one strictly sequential conversation per session:
// extract, merge, resolve, assess, speak, save.
type Orchestrator struct {
	store     SessionStore
	locker    SessionLocker
	extractor Extractor
	generator Generator
	publisher AlertPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewOrchestrator wires the orchestration entry point.
func NewOrchestrator(store SessionStore, locker SessionLocker, extractor Extractor, generator Generator, publisher AlertPublisher, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		locker:    locker,
		extractor: extractor,
		generator: generator,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// ProcessTurn applies one inbound turn to a session and returns what to
// speak next. Concurrent calls for the same session are serialized; a
// persistence failure fails the whole turn so no ordering is ever lost.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID string, in TurnInput) (*TurnResult, error) {
	release, err := o.locker.Acquire(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	defer release()

	sess, err := o.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if Gates(sess.CallType) == nil {
		o.log.Warn().Str("session_id", sessionID).Str("call_type", string(sess.CallType)).
			Msg("unknown call type, defaulting to greeting")
	}
	if sess.Status != pkg.StatusInProgress {
		// The call already ended; repeat the terminal note without mutating.
		return &TurnResult{
			ResponseText: terminalScript(sess.Status),
			Stage:        StageClosing,
			Report:       sess.Report,
			Status:       sess.Status,
		}, nil
	}

	utterance := strings.TrimSpace(in.Utterance)
	if utterance == "" {
		return o.beginCall(ctx, sess)
	}

	res := o.extractor.Extract(ctx, utterance, sess.History, sess.Report)
	sess.History = append(sess.History, pkg.ConversationTurn{
		Role:       pkg.RolePatient,
		Content:    utterance,
		Confidence: in.Confidence,
		CreatedAt:  o.now(),
	})

	// Confirmations mean different things at different gates, so they are
	// interpreted against the stage that asked the question, resolved from
	// history excluding the turn that answers it.
	stageBefore := StageBeforeTurn(sess.History, sess.Report, sess.CallType)
	sess.Report = ApplyUpdate(sess.Report, stageBefore, sess.CallType, res)

	if handled, result, err := o.checkTerminal(ctx, sess, stageBefore, res); handled {
		return result, err
	}

	assessment := risk.Assess(risk.CollectSignals(utterance, sess.Report), sess.DaysPostSurgery)
	var escalation *pkg.RiskAssessment
	if assessment.Escalate {
		escalation = &assessment
		o.publishAlerts(sess.ID, assessment)
	}

	stage := ResolveStage(sess.History, sess.Report, sess.CallType)
	var response string
	if stage == StageClosing {
		response = ClosingScript
		sess.Status = pkg.StatusCompleted
		sess.DurationSeconds = int(o.now().Sub(sess.StartedAt).Seconds())
		if sess.DurationSeconds < 0 {
			sess.DurationSeconds = 0
		}
	} else {
		response = o.speak(ctx, stage, sess)
	}
	sess.History = append(sess.History, pkg.ConversationTurn{
		Role:      pkg.RoleAgent,
		Content:   response,
		CreatedAt: o.now(),
	})

	if err := o.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &TurnResult{
		ResponseText: response,
		Stage:        stage,
		Report:       sess.Report,
		Status:       sess.Status,
		Escalation:   escalation,
	}, nil
}

// beginCall handles the empty-utterance signal that opens a call.
func (o *Orchestrator) beginCall(ctx context.Context, sess *pkg.CallSession) (*TurnResult, error) {
	stage := ResolveStage(sess.History, sess.Report, sess.CallType)
	response := o.speak(ctx, stage, sess)
	sess.History = append(sess.History, pkg.ConversationTurn{
		Role:      pkg.RoleAgent,
		Content:   response,
		CreatedAt: o.now(),
	})
	if err := o.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &TurnResult{
		ResponseText: response,
		Stage:        stage,
		Report:       sess.Report,
		Status:       sess.Status,
	}, nil
}

// checkTerminal short-circuits the session when the patient declines at one
// of the confirmation gates.
func (o *Orchestrator) checkTerminal(ctx context.Context, sess *pkg.CallSession, stageBefore Stage, res pkg.NLUResult) (bool, *TurnResult, error) {
	if res.Intent != pkg.IntentConfirmNo {
		return false, nil, nil
	}
	var status pkg.CallStatus
	switch stageBefore {
	case StageInitialConfirmation:
		status = pkg.StatusRescheduleRequired
	case StageSurgeryDateConfirmation:
		status = pkg.StatusProviderContactRequired
	default:
		return false, nil, nil
	}
	sess.Status = status
	sess.DurationSeconds = int(o.now().Sub(sess.StartedAt).Seconds())
	if sess.DurationSeconds < 0 {
		sess.DurationSeconds = 0
	}
	response := terminalScript(status)
	sess.History = append(sess.History, pkg.ConversationTurn{
		Role:      pkg.RoleAgent,
		Content:   response,
		CreatedAt: o.now(),
	})
	if err := o.store.Save(ctx, sess); err != nil {
		return true, nil, fmt.Errorf("save session: %w", err)
	}
	return true, &TurnResult{
		ResponseText: response,
		Stage:        StageClosing,
		Report:       sess.Report,
		Status:       status,
	}, nil
}

// speak asks the generator for the stage's line and falls back to the
// deterministic script when generation fails.
func (o *Orchestrator) speak(ctx context.Context, stage Stage, sess *pkg.CallSession) string {
	instruction, fallback := StageInstruction(stage, sess.CallType, sess.Report)
	if o.generator == nil {
		return fallback
	}
	text, err := o.generator.Speak(ctx, instruction, sess.History)
	if err != nil || strings.TrimSpace(text) == "" {
		o.log.Warn().Err(err).Str("session_id", sess.ID).Str("stage", string(stage)).
			Msg("speech generation failed, using fallback line")
		return fallback
	}
	return text
}

// publishAlerts forwards each firing category to the notification
// collaborator without blocking the conversational response.
func (o *Orchestrator) publishAlerts(sessionID string, assessment pkg.RiskAssessment) {
	if o.publisher == nil {
		return
	}
	alerts := assessment.Alerts
	go func() {
		for _, a := range alerts {
			if err := o.publisher.Publish(context.Background(), sessionID, string(a.Category), string(a.Level), a.Reason); err != nil {
				o.log.Error().Err(err).Str("session_id", sessionID).Str("category", string(a.Category)).
					Msg("failed to publish escalation alert")
			}
		}
	}()
}

func terminalScript(status pkg.CallStatus) string {
	switch status {
	case pkg.StatusRescheduleRequired:
		return RescheduleScript
	case pkg.StatusProviderContactRequired:
		return ProviderContactScript
	default:
		return ClosingScript
	}
}
