// Package dailylife implements the two cooperating halves of the
// autonomous daily-life loop (§4.5): a scheduler near the messaging
// adapter that builds sensory snapshots and debounces immediate triggers,
// and a perceive→plan→execute worker-side pipeline that turns a snapshot
// into zero or more action commands.
package dailylife

import (
	"time"

	"github.com/whisperengine/core/pkg/adapters"
)

// MessageSnapshot is one channel message captured for a sensory snapshot,
// trimmed to the fields perceive/plan need.
type MessageSnapshot struct {
	ID          string
	AuthorID    string
	AuthorIsBot bool
	AuthorName  string
	Content     string
	ChannelID   string
	Mentions    []string
	ReferenceID string
	At          time.Time
}

func fromInbound(msg adapters.InboundMessage, at time.Time) MessageSnapshot {
	ref := ""
	if msg.Reference != nil {
		ref = msg.Reference.MessageID
	}
	return MessageSnapshot{
		ID:          msg.ID,
		AuthorID:    msg.AuthorID,
		AuthorIsBot: msg.AuthorIsBot,
		AuthorName:  msg.AuthorName,
		Content:     msg.Content,
		ChannelID:   msg.ChannelID,
		Mentions:    msg.Mentions,
		ReferenceID: ref,
		At:          at,
	}
}

// SensorySnapshot is the scheduler's per-tick world view, handed to the
// perceive stage on the cognition queue.
type SensorySnapshot struct {
	BotName       string
	TakenAt       time.Time
	FocusChannel  string
	Channels      []string
	Messages      map[string][]MessageSnapshot
}

// messagesPerChannel is how many trailing messages the scheduler fetches
// per selected channel (§4.5: "fetch last ~20 messages").
const messagesPerChannel = 20

// explorationChannelCount is the cap on randomly-sampled channels beyond
// the watchlist and the active-channel set.
const explorationChannelCount = 3

// activeChannelWindow bounds how recently a channel must have seen
// traffic to count as "active" for snapshot selection.
const activeChannelWindow = 15 * time.Minute

// activeChannelCount is the top-N most active channels folded into the
// snapshot alongside the watchlist.
const activeChannelCount = 5
