package dailylife

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/taskqueue"
	"github.com/whisperengine/core/pkg/trust"
)

// pollInterval is the action poller's fixed cadence: one command executed
// per second (§4.5's "Action Poller").
const pollInterval = 1 * time.Second

// Poller continuously drains pending_actions:<bot> and carries out one
// ActionCommand per tick, updating memory and trust for reply actions.
type Poller struct {
	botName   string
	rdb       *redis.Client
	keyPrefix string

	messaging adapters.Messaging
	memory    memory.Store
	trustMgr  *trust.Manager
	queue     *taskqueue.Queue
	log       zerolog.Logger
}

// NewPoller wires a Poller for one bot.
func NewPoller(botName string, rdb *redis.Client, keyPrefix string, messaging adapters.Messaging, store memory.Store, trustMgr *trust.Manager, queue *taskqueue.Queue, log zerolog.Logger) *Poller {
	return &Poller{
		botName:   botName,
		rdb:       rdb,
		keyPrefix: keyPrefix,
		messaging: messaging,
		memory:    store,
		trustMgr:  trustMgr,
		queue:     queue,
		log:       log.With().Str("component", "dailylife.poller").Logger(),
	}
}

func (p *Poller) listKey() string {
	return fmt.Sprintf("%spending_actions:%s", p.keyPrefix, p.botName)
}

// PushActions appends plan-derived commands to pending_actions:<bot>, the
// broker list the plan/execute stage writes into and this poller drains.
func (p *Poller) PushActions(ctx context.Context, cmds []adapters.ActionCommand) error {
	for _, cmd := range cmds {
		encoded, err := json.Marshal(cmd)
		if err != nil {
			return fmt.Errorf("dailylife: marshal action: %w", err)
		}
		if err := p.rdb.RPush(ctx, p.listKey(), encoded).Err(); err != nil {
			return fmt.Errorf("dailylife: rpush action: %w", err)
		}
	}
	return nil
}

// Run drains one action per tick until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.drainOne(ctx); err != nil {
				p.log.Warn().Err(err).Msg("action poll failed")
			}
		}
	}
}

func (p *Poller) drainOne(ctx context.Context) error {
	raw, err := p.rdb.LPop(ctx, p.listKey()).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dailylife: lpop: %w", err)
	}

	var cmd adapters.ActionCommand
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return fmt.Errorf("dailylife: unmarshal action: %w", err)
	}

	if err := p.messaging.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("dailylife: execute action: %w", err)
	}

	if cmd.ActionType == adapters.ActionReply {
		return p.afterReply(ctx, cmd)
	}
	return nil
}

// afterReply persists both halves of a reply exchange, bumps trust for
// the target author as a channel-interaction event, and enqueues
// extraction attributed to that author's user_id, never the bot's.
func (p *Poller) afterReply(ctx context.Context, cmd adapters.ActionCommand) error {
	authorID := cmd.ReplyToID
	if authorID == "" {
		authorID = cmd.TargetMessageID
	}
	if authorID == "" {
		return nil
	}

	if err := p.memory.StoreConversation(ctx, authorID, "", cmd.Content, cmd.ChannelID, nil, map[string]string{
		"memory_type": "autonomous_reply",
	}); err != nil {
		return fmt.Errorf("dailylife: store conversation: %w", err)
	}

	if _, _, err := p.trustMgr.UpdateTrust(ctx, authorID, p.botName, trust.EventChannelInteraction); err != nil {
		return fmt.Errorf("dailylife: update trust: %w", err)
	}

	jobID := fmt.Sprintf("extract_batch_%s_%s_%d", p.botName, authorID, time.Now().UnixMilli())
	if _, err := p.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskExtractBatchKnowledge), taskqueue.TaskExtractBatchKnowledge, taskqueue.EnqueueOptions{
		JobID:   jobID,
		BotName: p.botName,
		Payload: map[string]string{"user_id": authorID, "channel_id": cmd.ChannelID},
	}); err != nil {
		return fmt.Errorf("dailylife: enqueue extraction: %w", err)
	}
	return nil
}
