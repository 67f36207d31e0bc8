package respond

import "strings"

// vulnerabilityPhrases trigger the vulnerability_moment trust delta
// (§4.4's default deltas) — a user sharing something emotionally
// significant with the bot. Rule-based, same ContainsAnyPattern-style
// matching the universe detector uses, so the hot path never needs a
// second LLM round trip just to classify the turn.
var vulnerabilityPhrases = []string{
	"i've never told anyone", "i'm scared to admit", "i trust you with this",
	"this is hard for me to say", "i feel really vulnerable", "i'm struggling with",
}

// boundaryViolationPhrases trigger the boundary_violation trust delta: a
// user pushing past a boundary the character has already set.
var boundaryViolationPhrases = []string{
	"i don't care what you said", "ignore your rules", "i said stop",
	"you're supposed to obey me", "shut up and do what i say",
}

func containsAny(haystack string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

// trustSignal classifies one user turn for the hot-path trust deltas
// described in §4.4, falling back to the baseline positive_turn credit
// every completed reply earns.
type trustSignal int

const (
	signalPositiveTurn trustSignal = iota
	signalVulnerability
	signalBoundaryViolation
)

func classifyTrustSignal(turn string) trustSignal {
	lower := strings.ToLower(turn)
	if containsAny(lower, boundaryViolationPhrases) {
		return signalBoundaryViolation
	}
	if containsAny(lower, vulnerabilityPhrases) {
		return signalVulnerability
	}
	return signalPositiveTurn
}
