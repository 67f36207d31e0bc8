// Package respond implements the direct-message response hot path: the
// component §2's data-flow line calls "Session Worker consumes stored
// turns and calls LLM", named concretely as its own package because the
// distilled spec never gave it a heading of its own. Grounded on the
// teacher's top-level inbound handler (pkg/connector/handlematrix.go's
// HandleMatrixMessage) generalized from "bridge one Matrix event" to
// "answer one chat turn and fire the post-reply hooks."
package respond

// Persona is the subset of a character definition the hot path consumes.
// Character definition loading itself is an out-of-scope external
// collaborator (§1); this is only the slice of it the response path
// needs: a system prompt, and the scripted lines used when the hot path
// can't or won't call the LLM.
type Persona struct {
	BotName      string
	SystemPrompt string

	// ColdResponses are returned verbatim, round-robin by turn count,
	// when the user is in a moderation timeout (§7 kind 7). Never
	// empty in a valid configuration; coldResponse falls back to "..."
	// if it is.
	ColdResponses []string

	// ErrorMessages are returned when every error class in §7 is
	// caught and mapped to a default response instead of escaping the
	// response-path coroutine.
	ErrorMessages []string
}

func (p Persona) coldResponse(turn int) string {
	if len(p.ColdResponses) == 0 {
		return "..."
	}
	return p.ColdResponses[turn%len(p.ColdResponses)]
}

func (p Persona) errorResponse(turn int) string {
	if len(p.ErrorMessages) == 0 {
		return "Something went wrong on my end, try again in a moment."
	}
	return p.ErrorMessages[turn%len(p.ErrorMessages)]
}
