package universe

import "strings"

// emotionalSpikePatterns are explicit affect phrases the detector scans
// for, positive and negative alike (§4.6: "explicit positive/negative
// affect phrases"). The rule-based match mirrors the teacher's
// ContainsAnyPattern-style error classifiers, generalized from HTTP error
// bodies to chat turns.
var emotionalSpikePatterns = []string{
	"i'm so happy", "i am so happy", "best day ever", "i'm thrilled",
	"i'm devastated", "i'm heartbroken", "worst day", "i'm furious",
}

// lifeUpdatePatterns catch job/move/education/relationship/family/home/
// health milestones (§4.6). health catches diagnoses and losses, the
// same negative-affect territory the sensitive-topic gate blocks.
var lifeUpdatePatterns = map[string][]string{
	"job":          {"got the job", "got promoted", "i was fired", "starting a new job", "i got hired", "got laid off", "laid off"},
	"move":         {"i'm moving", "just moved to", "moving to a new"},
	"education":    {"i graduated", "got accepted into", "starting school", "finished my degree"},
	"relationship": {"we got engaged", "we broke up", "i got married", "we're dating"},
	"family":       {"i'm pregnant", "had a baby", "my parent passed", "became a parent"},
	"home":         {"bought a house", "signed a lease", "closing on a house"},
	"health":       {"diagnosed", "diagnosis", "lost my mom", "lost my dad", "lost my job", "lost someone"},
}

func containsAny(haystack string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

// Detect scans a user turn for the two publishable signal families and
// returns the event it warrants, or ok=false if neither fires. No LLM
// call is made here — the detector runs on the hot path (§4.6).
func Detect(userID, sourceBot, turn string) (Event, bool) {
	lower := strings.ToLower(turn)

	if containsAny(lower, emotionalSpikePatterns) {
		return Event{
			EventType: EventEmotionalSpike,
			UserID:    userID,
			SourceBot: sourceBot,
			Summary:   "user expressed a strong emotional reaction",
			Topic:     "mood",
		}, true
	}

	for topic, patterns := range lifeUpdatePatterns {
		if containsAny(lower, patterns) {
			return Event{
				EventType: EventUserUpdate,
				UserID:    userID,
				SourceBot: sourceBot,
				Summary:   "user shared a " + topic + " life update",
				Topic:     topic,
			}, true
		}
	}

	return Event{}, false
}
