// Package dispatch is the single inbound-message fan-out point a
// concrete gateway adapter calls for every message it receives: it
// decides which of the hot-path reply, the ambient emoji reactor and the
// daily-life immediate trigger apply to one InboundMessage, then calls
// whichever of pkg/respond, pkg/dailylife and pkg/trust own that
// behavior. None of those packages call each other directly — §4.9's
// hot path and §4.5's autonomous loop are independent subsystems wired
// together only here, at the composition root, the way the teacher's
// connector.go ties the bridge's event handlers to its own AI pipeline.
package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/dailylife"
	"github.com/whisperengine/core/pkg/respond"
	"github.com/whisperengine/core/pkg/trust"
)

// trustedArrivalLevel is the relationship stage (§3's Trust Stage Table)
// at or above which a message from a previously-quiet user counts as a
// "trusted user arrives" immediate trigger (§4.5).
const trustedArrivalLevel = trust.LevelFriend

// quietArrivalWindow is how long a channel must have had no traffic
// before a trusted user's message counts as an arrival rather than an
// ongoing conversation already covered by the regular snapshot tick.
const quietArrivalWindow = 10 * time.Minute

// Dispatcher is the one inbound entry point a gateway adapter calls per
// message. Direct messages go through Engine's hot path; every message
// feeds the activity monitor, and only human messages reach the ambient
// reactor; channel messages
// that mention the bot, reply to it, or come from a trusted user after a
// quiet spell additionally fire a debounced daily-life trigger.
type Dispatcher struct {
	BotName   string
	Engine    *respond.Engine
	Reactor   *dailylife.Reactor
	Scheduler *dailylife.Scheduler
	Activity  *dailylife.ActivityMonitor
	Trust     *trust.Manager

	Log zerolog.Logger
}

// HandleInbound runs every independent subsystem that reacts to one
// message. Each step is best-effort against the others: a reactor
// failure must never block the hot-path reply, and vice versa.
func (d *Dispatcher) HandleInbound(ctx context.Context, msg adapters.InboundMessage) error {
	now := time.Now()

	wasQuiet := d.Activity != nil && d.Activity.QuietFor(msg.ChannelID, now, quietArrivalWindow)

	if d.Scheduler != nil {
		d.Scheduler.NoteActivity(msg.ChannelID, now)
	}

	if msg.AuthorIsBot {
		return nil
	}

	if d.Reactor != nil {
		d.Reactor.MaybeReact(ctx, msg)
	}

	if msg.GuildID == "" {
		if d.Engine == nil {
			return nil
		}
		return d.Engine.HandleMessage(ctx, msg)
	}

	d.maybeTriggerImmediate(ctx, msg, wasQuiet)
	return nil
}

// maybeTriggerImmediate implements §4.5's "mention or reply-to-bot or a
// trusted user arrives" immediate-trigger condition for channel traffic;
// direct mentions and replies bypass the scheduler's debounce, a trusted
// arrival after a quiet spell does not.
func (d *Dispatcher) maybeTriggerImmediate(ctx context.Context, msg adapters.InboundMessage, wasQuiet bool) {
	if d.Scheduler == nil {
		return
	}

	if mentioned := d.mentionsBot(msg); mentioned {
		d.Scheduler.TriggerImmediate(msg, "mention", true)
		return
	}
	if d.repliesToBot(msg) {
		d.Scheduler.TriggerImmediate(msg, "reply_to_bot", true)
		return
	}

	if !wasQuiet || d.Trust == nil {
		return
	}
	rel, err := d.Trust.GetRelationship(ctx, msg.AuthorID, d.BotName)
	if err != nil {
		d.Log.Warn().Err(err).Msg("trust lookup for immediate trigger failed")
		return
	}
	if rel.Level >= trustedArrivalLevel {
		d.Scheduler.TriggerImmediate(msg, "trusted_user_arrival", false)
	}
}

func (d *Dispatcher) mentionsBot(msg adapters.InboundMessage) bool {
	for _, m := range msg.Mentions {
		if m == d.BotName {
			return true
		}
	}
	return false
}

func (d *Dispatcher) repliesToBot(msg adapters.InboundMessage) bool {
	return msg.Reference != nil && msg.Reference.AuthorID == d.BotName
}
