// Package nlu turns one patient utterance into an intent and entity set.
// The primary path asks a language model with a constrained instruction; the
// fallback path is a deterministic keyword extractor that never fails.
package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"preop-callbot/internal/llm"
	"preop-callbot/pkg"
)

const extractSystemPrompt = `You extract structured facts from what a surgical patient says on the phone.
Reply with a single JSON object and nothing else, shaped as:
{"intent": "<intent>", "entities": {...}}
intent must be one of: confirm_yes, confirm_no, report_pain, difficult_activities, identify_helper, home_safety_response, equipment_response, medication_response, unknown.
entities may contain: pain_level (0-10 integer), activities (list of strings), helper (string), hazards_addressed (boolean), equipment_status ("obtained"|"needed"|"none"), medications, allergies, conditions (lists of strings; use ["none"] for an explicit negative).
Examples:
Patient: "yes that's fine" -> {"intent":"confirm_yes","entities":{}}
Patient: "my pain is about a 6" -> {"intent":"report_pain","entities":{"pain_level":6}}
Patient: "stairs and bending are hard" -> {"intent":"difficult_activities","entities":{"activities":["stairs","bending"]}}
Patient: "my wife will be home with me" -> {"intent":"identify_helper","entities":{"helper":"wife"}}
Patient: "I take warfarin" -> {"intent":"medication_response","entities":{"medications":["warfarin"]}}
Patient: "no allergies that I know of" -> {"intent":"medication_response","entities":{"allergies":["none"]}}`

// historyWindow limits how many recent turns are included in the prompt.
const historyWindow = 4

// Extractor runs the primary language-model path with the deterministic
// fallback behind it. A nil client means fallback-only operation.
type Extractor struct {
	client  llm.Client
	timeout time.Duration
	log     zerolog.Logger
}

// NewExtractor constructs an extractor. timeout bounds the model call so a
// slow reply never stalls a turn.
func NewExtractor(client llm.Client, timeout time.Duration, log zerolog.Logger) *Extractor {
	return &Extractor{client: client, timeout: timeout, log: log}
}

// Extract never fails: on any primary-path error it falls through to the
// keyword extractor and at worst returns the unknown intent.
func (e *Extractor) Extract(ctx context.Context, utterance string, history []pkg.ConversationTurn, report pkg.Report) pkg.NLUResult {
	if e.client != nil {
		res, err := e.extractLLM(ctx, utterance, history, report)
		if err == nil {
			return res
		}
		e.log.Warn().Err(err).Msg("language-model extraction failed, using keyword fallback")
	}
	return FallbackExtract(utterance, report)
}

func (e *Extractor) extractLLM(ctx context.Context, utterance string, history []pkg.ConversationTurn, report pkg.Report) (pkg.NLUResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	snapshot, err := json.Marshal(report)
	if err != nil {
		return pkg.NLUResult{}, fmt.Errorf("marshal report snapshot: %w", err)
	}
	var b strings.Builder
	b.WriteString("Current report:\n")
	b.Write(snapshot)
	b.WriteString("\nRecent conversation:\n")
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, t := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	fmt.Fprintf(&b, "Patient: %q", utterance)

	reply, err := e.client.Chat(ctx, []llm.Message{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: b.String()},
	})
	if err != nil {
		return pkg.NLUResult{}, err
	}
	return ParseReply(reply)
}

// ParseReply parses a model reply tolerantly: surrounding code fences are
// stripped, and if the whole reply does not parse, the first balanced
// bracket block inside it is tried instead.
func ParseReply(reply string) (pkg.NLUResult, error) {
	cleaned := stripFences(reply)

	var wire struct {
		Intent   string       `json:"intent"`
		Entities pkg.Entities `json:"entities"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		block, ok := firstBalancedBlock(cleaned)
		if !ok {
			return pkg.NLUResult{}, fmt.Errorf("no JSON object in reply: %w", err)
		}
		if err := json.Unmarshal([]byte(block), &wire); err != nil {
			return pkg.NLUResult{}, fmt.Errorf("unparseable JSON block: %w", err)
		}
	}
	if !pkg.KnownIntent(wire.Intent) {
		return pkg.NLUResult{}, errors.New("intent outside closed vocabulary: " + wire.Intent)
	}
	return pkg.NLUResult{Intent: pkg.Intent(wire.Intent), Entities: wire.Entities}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop a language tag like "json" on the fence line
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstBalancedBlock returns the first {...} block with balanced braces,
// respecting strings and escapes.
func firstBalancedBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
