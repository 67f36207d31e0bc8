// Package universe implements the cross-bot gossip event bus (§4.6): a
// rule-based detector on the hot path publishes privacy-safe summaries,
// and a worker-side dispatcher fans each event out to other bots whose
// relationship with the user has earned enough trust to receive it.
package universe

import (
	"strings"
	"time"
)

// EventType is the kind of thing the detector noticed in a user turn.
type EventType string

const (
	EventUserUpdate      EventType = "user_update"
	EventEmotionalSpike  EventType = "emotional_spike"
	EventTopicDiscovery  EventType = "topic_discovery"
	EventGoalAchieved    EventType = "goal_achieved"
)

// maxPropagationDepth is the highest propagation_depth a publishable
// event may carry; anything above this is dropped (§3).
const maxPropagationDepth = 1

// gossipPropagationDepth is stamped onto every gossip memory so a bot
// that reads its own gossip can never re-publish it (§4.6: "Propagation
// depth on the gossip memory is marked so it cannot re-fire").
const gossipPropagationDepth = 2

// Event is one cross-bot gossip candidate (§3's Universe Event shape).
type Event struct {
	EventType        EventType
	UserID           string
	SourceBot        string
	Summary          string
	Topic            string
	PropagationDepth int
	Timestamp        time.Time
	Metadata         map[string]string
}

// sensitiveKeywords blocks publication outright regardless of other
// checks (§3: "health, finance, relationships, legal, secrecy"), matched
// as a substring scan against both topic and summary so a specific term
// (e.g. "diagnosed") trips the same gate as its broad category.
var sensitiveKeywords = []string{
	"health", "medical", "doctor", "therapy", "medication", "diagnosis", "diagnosed",
	"finance", "money", "debt", "salary", "income", "bankrupt",
	"relationship", "dating", "partner", "divorce", "breakup",
	"legal", "lawsuit", "arrest", "crime", "court",
	"secret", "secrecy", "private", "confidential", "don't tell",
}

// IsSensitive reports whether topic or summary mentions any sensitive
// keyword. It scans both fields because a generic topic label (e.g.
// "negative_emotion") can carry a sensitive detail only in the summary.
func IsSensitive(topic, summary string) bool {
	haystack := strings.ToLower(topic) + " " + strings.ToLower(summary)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// minTrustToReceive is the relationship threshold a (user, target bot)
// pair must clear for the user's gossip to reach that bot (§3).
const minTrustToReceive = 20
