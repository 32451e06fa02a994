package llm

import (
	"context"

	"preop-callbot/pkg"
)

const speechSystemPrompt = "You are a warm, concise telephone assistant calling a surgical patient. " +
	"Speak plainly, one short question or statement at a time, no medical jargon. " +
	"Follow the instruction exactly; do not add new questions."

// historyWindow limits how many recent turns are sent to the generator.
const historyWindow = 6

// SpeechGenerator turns a stage instruction plus a short history window into
// the sentence the telephony layer should speak. The returned text is opaque
// to the caller.
type SpeechGenerator struct {
	client Client
}

// NewSpeechGenerator wraps a language client as a speech generator.
func NewSpeechGenerator(client Client) *SpeechGenerator {
	return &SpeechGenerator{client: client}
}

// Speak produces the next spoken line for the given instruction.
func (g *SpeechGenerator) Speak(ctx context.Context, instruction string, history []pkg.ConversationTurn) (string, error) {
	msgs := []Message{{Role: "system", Content: speechSystemPrompt}}
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, t := range history[start:] {
		role := "user"
		if t.Role == pkg.RoleAgent {
			role = "assistant"
		}
		msgs = append(msgs, Message{Role: role, Content: t.Content})
	}
	msgs = append(msgs, Message{Role: "user", Content: "Instruction: " + instruction})
	return g.client.Chat(ctx, msgs)
}
