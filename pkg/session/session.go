// Package session implements session-boundary detection and the
// post-conversation job dispatch described in §4.3: session state is
// tracked per (user_id, bot) in-process, the same mutex-guarded map
// pattern the teacher uses for its per-agent heartbeat/session state
// (pkg/connector/memory_sessions.go's sessionState bookkeeping), and
// once a session crosses the dispatch threshold its capability jobs are
// enqueued exactly once via pkg/taskqueue.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/whisperengine/core/pkg/taskqueue"
)

// dispatchThreshold is the minimum number of stored turns in a session
// before the post-conversation pipeline is eligible to run (§4.3).
const dispatchThreshold = 2

// graphEnrichmentThreshold is the "only when session has ≥ N messages"
// gate on run_graph_enrichment (§4.3) — set higher than dispatchThreshold
// since enrichment is optional and meant for sessions with real depth.
const graphEnrichmentThreshold = 6

// state tracks one (user_id, bot) session's progress.
type state struct {
	sessionID    string
	startedAt    time.Time
	messageCount int
	dispatched   bool
	enriched     bool
	channelID    string
	serverID     string
}

// Tracker detects session boundaries and dispatches the post-conversation
// job pipeline once per session, idempotently.
type Tracker struct {
	botName string
	queue   *taskqueue.Queue

	mu       sync.Mutex
	sessions map[string]*state
}

// New builds a Tracker for one bot's sessions.
func New(botName string, queue *taskqueue.Queue) *Tracker {
	return &Tracker{
		botName:  botName,
		queue:    queue,
		sessions: make(map[string]*state),
	}
}

// sessionIDFor derives a stable session id from the user and the
// session's start time, so repeated calls for the same open session
// always compute the same id without a round trip to storage.
func sessionIDFor(userID string, startedAt time.Time) string {
	sum := sha256.Sum256([]byte(userID + "|" + startedAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])[:24]
}

// RecordTurn registers one stored turn for userID, opening a new session
// if none is open, and dispatches the post-conversation pipeline exactly
// once the session reaches dispatchThreshold stored turns. channelID and
// serverID are carried only for run_graph_enrichment's payload; serverID
// may be empty for DM channels, matching adapters.InboundMessage.GuildID.
func (t *Tracker) RecordTurn(ctx context.Context, userID, channelID, serverID string, at time.Time) error {
	t.mu.Lock()
	s, ok := t.sessions[userID]
	if !ok {
		s = &state{sessionID: sessionIDFor(userID, at), startedAt: at}
		t.sessions[userID] = s
	}
	s.messageCount++
	s.channelID = channelID
	s.serverID = serverID
	shouldDispatch := !s.dispatched && s.messageCount >= dispatchThreshold
	if shouldDispatch {
		s.dispatched = true
	}
	shouldEnrich := !s.enriched && s.messageCount >= graphEnrichmentThreshold
	if shouldEnrich {
		s.enriched = true
	}
	sessionID := s.sessionID
	t.mu.Unlock()

	if shouldDispatch {
		if err := t.dispatchPipeline(ctx, userID, sessionID); err != nil {
			return err
		}
	}
	if shouldEnrich {
		return t.dispatchGraphEnrichment(ctx, userID, channelID, serverID, sessionID)
	}
	return nil
}

// CloseSession clears tracked state for userID, so the next RecordTurn
// opens a fresh session (e.g. after an explicit idle-timeout check run
// by the caller).
func (t *Tracker) CloseSession(userID string) {
	t.mu.Lock()
	delete(t.sessions, userID)
	t.mu.Unlock()
}

// pipelineTasks is the fixed set of per-session post-conversation
// capabilities dispatched once per session, per §4.3. run_reflection is
// handled separately below since it dedupes by (user_id, bot) rather
// than session_id.
var pipelineTasks = []taskqueue.TaskName{
	taskqueue.TaskExtractBatchKnowledge,
	taskqueue.TaskExtractPreferences,
	taskqueue.TaskUpdateGoals,
	taskqueue.TaskSummarizeSession,
}

// dispatchPipeline enqueues every session-scoped post-conversation
// capability plus run_reflection and run_insight_analysis for one
// session. The session-scoped jobs dedupe by (capability, session_id);
// reflection and insight analysis dedupe by (user_id, bot) since they
// look across the user's whole recent history, not just this session.
func (t *Tracker) dispatchPipeline(ctx context.Context, userID, sessionID string) error {
	for _, task := range pipelineTasks {
		jobID := dedupeJobID(task, sessionID)
		payload := map[string]string{"user_id": userID, "session_id": sessionID}
		if _, err := t.queue.Enqueue(ctx, taskqueue.QueueFor(task), task, taskqueue.EnqueueOptions{
			JobID:   jobID,
			BotName: t.botName,
			Payload: payload,
		}); err != nil {
			return err
		}
	}

	reflectPayload := map[string]string{"user_id": userID}
	if _, err := t.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskReflect), taskqueue.TaskReflect, taskqueue.EnqueueOptions{
		JobID:   NewReflectionJobID(userID, t.botName),
		BotName: t.botName,
		Payload: reflectPayload,
	}); err != nil {
		return err
	}

	insightPayload := map[string]string{"user_id": userID, "trigger": "session_complete", "priority": "normal"}
	_, err := t.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskRunInsightAnalysis), taskqueue.TaskRunInsightAnalysis, taskqueue.EnqueueOptions{
		JobID:   insightJobID(userID, t.botName, "session_complete"),
		BotName: t.botName,
		Payload: insightPayload,
	})
	return err
}

// dispatchGraphEnrichment enqueues the optional run_graph_enrichment
// capability once a session crosses graphEnrichmentThreshold messages,
// deduped by session_id since it's a one-shot per-session enrichment.
func (t *Tracker) dispatchGraphEnrichment(ctx context.Context, userID, channelID, serverID, sessionID string) error {
	payload := map[string]string{
		"session_id": sessionID,
		"user_id":    userID,
		"channel_id": channelID,
		"server_id":  serverID,
	}
	_, err := t.queue.Enqueue(ctx, taskqueue.QueueFor(taskqueue.TaskRunGraphEnrichment), taskqueue.TaskRunGraphEnrichment, taskqueue.EnqueueOptions{
		JobID:   dedupeJobID(taskqueue.TaskRunGraphEnrichment, sessionID),
		BotName: t.botName,
		Payload: payload,
	})
	return err
}

func dedupeJobID(task taskqueue.TaskName, sessionID string) string {
	sum := sha256.Sum256([]byte(string(task) + "|" + sessionID))
	return hex.EncodeToString(sum[:16])
}

// NewReflectionJobID builds the idempotency key for run_reflection, which
// dedupes by (user_id, bot) rather than session_id per §4.3.
func NewReflectionJobID(userID, botName string) string {
	sum := sha256.Sum256([]byte("reflect|" + userID + "|" + botName))
	return hex.EncodeToString(sum[:16])
}

// insightJobID builds the idempotency key for run_insight_analysis,
// throttled per (user_id, bot, trigger) per §4.3.
func insightJobID(userID, botName, trigger string) string {
	sum := sha256.Sum256([]byte("insight|" + userID + "|" + botName + "|" + trigger))
	return hex.EncodeToString(sum[:16])
}
