package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/trust"
)

// Recipient is one other bot process this deployment knows about, capable
// of receiving gossip for the same user.
type Recipient struct {
	BotName string
	Trust   *trust.Manager
	Memory  memory.Store
}

// Directory resolves every other bot a gossip event could potentially
// reach. A single process hosting multiple bot identities implements
// this directly; a multi-process deployment would back it with a shared
// registry instead — out of scope here (§4.6 only specifies the
// eligibility rule, not bot discovery).
type Directory interface {
	OtherBots(ctx context.Context, sourceBot string) ([]Recipient, error)
}

// Dispatch computes eligible recipients for evt and writes a gossip
// memory into each one's collection (§4.6's worker-side dispatch).
func Dispatch(ctx context.Context, evt Event, dir Directory) error {
	recipients, err := dir.OtherBots(ctx, evt.SourceBot)
	if err != nil {
		return fmt.Errorf("universe: resolve recipients: %w", err)
	}

	for _, r := range recipients {
		rel, err := r.Trust.GetRelationship(ctx, evt.UserID, r.BotName)
		if err != nil {
			return fmt.Errorf("universe: get relationship for %s: %w", r.BotName, err)
		}
		if rel.Score < minTrustToReceive {
			continue
		}

		meta := map[string]string{
			"memory_type":       string(memory.EntryGossip),
			"source_bot":        evt.SourceBot,
			"event_type":        string(evt.EventType),
			"topic":             evt.Topic,
			"propagation_depth": fmt.Sprintf("%d", gossipPropagationDepth),
			"timestamp":         timestampOrNow(evt).UTC().Format(time.RFC3339),
		}
		if err := r.Memory.StoreConversation(ctx, evt.UserID, evt.Summary, "", "", nil, meta); err != nil {
			return fmt.Errorf("universe: store gossip for %s: %w", r.BotName, err)
		}
	}
	return nil
}

// timestampOrNow returns evt's timestamp, defaulting to now if it was
// never set (e.g. a hand-built event in tests).
func timestampOrNow(evt Event) time.Time {
	if evt.Timestamp.IsZero() {
		return time.Now()
	}
	return evt.Timestamp
}
