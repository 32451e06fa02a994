package dialog

import "preop-callbot/pkg"

// ResolveStage returns the current stage for a session: the first gate in
// the call type's walk order whose area is not yet complete, or Closing once
// every gate is satisfied. It is pure and idempotent; identical inputs
// always yield the identical stage.
//
// An empty history resolves to Greeting regardless of report contents, and
// so does an unknown call type (the caller is expected to log that case).
func ResolveStage(history []pkg.ConversationTurn, report pkg.Report, ct pkg.CallType) Stage {
	if len(history) == 0 {
		return StageGreeting
	}
	gates := Gates(ct)
	if gates == nil {
		return StageGreeting
	}
	for _, g := range gates {
		switch g {
		case StageGreeting:
			// Satisfied by the history check above.
		case StageClosing:
			return StageClosing
		default:
			if !IsAreaComplete(report, g, ct) {
				return g
			}
		}
	}
	return StageClosing
}

// StageBeforeTurn resolves the stage that was active before the final turn
// in history was produced. Update logic must use this, never the post-turn
// stage, to interpret generic confirmations: the same "yes" answers a
// different question at each gate.
func StageBeforeTurn(history []pkg.ConversationTurn, report pkg.Report, ct pkg.CallType) Stage {
	if len(history) == 0 {
		return StageGreeting
	}
	return ResolveStage(history[:len(history)-1], report, ct)
}
