package workers

import (
	"context"
	"time"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/dailylife"
	"github.com/whisperengine/core/pkg/taskqueue"
	"github.com/whisperengine/core/pkg/trust"
)

// handleProcessDailyLife implements the worker-side half of the daily-life
// loop: perceive → plan → execute over a scheduler-built snapshot (§4.5).
func (wk *Workers) handleProcessDailyLife(ctx context.Context, job *taskqueue.Job) error {
	var snapshot dailylife.SensorySnapshot
	if err := decode(job.Payload, &snapshot); err != nil {
		return err
	}
	return wk.runBrain(ctx, snapshot)
}

// handleTriggerImmediate implements trigger_immediate: the same brain run
// as process_daily_life, scoped to the one channel the debounced mention
// or trusted-user arrival fired in (§4.5).
func (wk *Workers) handleTriggerImmediate(ctx context.Context, job *taskqueue.Job) error {
	var p immediateTriggerPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.ChannelID == "" {
		return nil
	}

	history, err := wk.Messaging.RecentMessages(ctx, p.ChannelID, messagesPerChannelFallback)
	if err != nil {
		return err
	}
	now := time.Now()
	msgs := make([]dailylife.MessageSnapshot, len(history))
	for i, m := range history {
		msgs[i] = fromInboundSnapshot(m, now)
	}

	snapshot := dailylife.SensorySnapshot{
		BotName:      wk.BotName,
		TakenAt:      now,
		FocusChannel: p.ChannelID,
		Channels:     []string{p.ChannelID},
		Messages:     map[string][]dailylife.MessageSnapshot{p.ChannelID: msgs},
	}
	return wk.runBrain(ctx, snapshot)
}

// messagesPerChannelFallback mirrors the scheduler's own per-channel fetch
// depth (dailylife.messagesPerChannel is unexported, so trigger_immediate
// carries its own copy of the same constant).
const messagesPerChannelFallback = 20

func fromInboundSnapshot(msg adapters.InboundMessage, at time.Time) dailylife.MessageSnapshot {
	ref := ""
	if msg.Reference != nil {
		ref = msg.Reference.MessageID
	}
	return dailylife.MessageSnapshot{
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

// runBrain scores the snapshot, plans a bounded action list, executes it
// against the response graph and creative LLM, and pushes the resulting
// commands to the action poller's queue (§4.5).
func (wk *Workers) runBrain(ctx context.Context, snapshot dailylife.SensorySnapshot) error {
	ownBots := map[string]bool{wk.BotName: true}
	scored, err := dailylife.Perceive(ctx, snapshot, wk.Character, wk.Embedder, ownBots)
	if err != nil {
		return err
	}
	if len(scored) == 0 && !wk.Flags.EnablePosting {
		return nil
	}

	planCtx := wk.buildPlanContext(ctx, scored)
	plans, err := dailylife.Plan(ctx, wk.LLM, scored, planCtx, wk.Flags, wk.Activity, snapshot.Channels, snapshot.TakenAt)
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		return nil
	}

	commands, err := dailylife.Execute(ctx, plans, wk.Messaging, wk.Graph, wk.Creative, wk.Character)
	if err != nil {
		return err
	}
	if len(commands) == 0 {
		return nil
	}
	return wk.Poller.PushActions(ctx, commands)
}

// buildPlanContext resolves each scored message's author to a relationship
// level and known-facts list, reusing the trust manager's insights list as
// "known facts about each candidate author" (§4.5): the planner LLM prompt
// references both per author.
func (wk *Workers) buildPlanContext(ctx context.Context, scored []dailylife.ScoredMessage) dailylife.PlanContext {
	planCtx := dailylife.PlanContext{
		Relationships: map[string]trust.Relationship{},
		KnownFacts:    map[string][]string{},
	}
	seen := map[string]bool{}
	for _, s := range scored {
		authorID := s.Message.AuthorID
		if authorID == "" || seen[authorID] {
			continue
		}
		seen[authorID] = true

		rel, err := wk.Trust.GetRelationship(ctx, authorID, wk.BotName)
		if err != nil {
			continue
		}
		planCtx.Relationships[authorID] = rel
		planCtx.KnownFacts[authorID] = rel.Insights
	}
	return planCtx
}

// handleRunReverieCycle implements run_reverie_cycle: the creative-idle
// job the scheduler enqueues after dream_threshold of silence (§4.5).
func (wk *Workers) handleRunReverieCycle(ctx context.Context, job *taskqueue.Job) error {
	return dailylife.RunReverieCycle(ctx, wk.LLM, wk.Self, wk.Character)
}
