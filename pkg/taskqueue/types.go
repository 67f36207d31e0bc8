// Package taskqueue implements the Redis-backed named job queue described
// in section 4.7: bounded, named queues with idempotent enqueue by job id
// and a bounded retry policy per queue.
package taskqueue

import "encoding/json"

// QueueName is one of the four named queues the daily-life and session
// pipelines route jobs into.
type QueueName string

const (
	QueueCognition QueueName = "cognition"
	QueueSensory   QueueName = "sensory"
	QueueAction    QueueName = "action"
	QueueSocial    QueueName = "social"
)

// Valid reports whether q is one of the four known queues.
func (q QueueName) Valid() bool {
	switch q {
	case QueueCognition, QueueSensory, QueueAction, QueueSocial:
		return true
	default:
		return false
	}
}

// TaskName identifies the capability a job invokes. Capabilities are
// enqueued by name, never by function value, so jobs survive a process
// restart sitting in the broker.
type TaskName string

const (
	TaskSummarizeSession       TaskName = "summarize_session"
	TaskReflect                TaskName = "reflect"
	TaskExtractFacts           TaskName = "extract_facts"
	TaskExtractPreferences     TaskName = "extract_preferences"
	TaskUpdateGoals            TaskName = "update_goals"
	TaskProcessDailyLife       TaskName = "process_daily_life"
	TaskRunReverieCycle        TaskName = "run_reverie_cycle"
	TaskTriggerImmediate       TaskName = "trigger_immediate"
	TaskRunGossipDispatch      TaskName = "run_gossip_dispatch"
	TaskExtractBatchKnowledge  TaskName = "extract_batch_knowledge"
	TaskRunInsightAnalysis     TaskName = "run_insight_analysis"
	TaskRunGraphEnrichment     TaskName = "run_graph_enrichment"
)

// Schedule describes when a deferred job becomes eligible to run. Kind is
// one of "at" (absolute), "every" (fixed interval from an anchor) or "cron"
// (robfig/cron expression), mirroring the three schedule kinds the teacher's
// cron package supported for agent heartbeats, generalized here to any
// deferred task-queue job.
type Schedule struct {
	Kind     string `json:"kind"`
	AtMs     int64  `json:"atMs,omitempty"`
	EveryMs  int64  `json:"everyMs,omitempty"`
	AnchorMs int64  `json:"anchorMs,omitempty"`
	Expr     string `json:"expr,omitempty"`
	TZ       string `json:"tz,omitempty"`
}

// JobState tracks the last known outcome of a job's execution, logged by
// the worker and consulted by the retry/backoff policy.
type JobState struct {
	Attempts       int    `json:"attempts"`
	LastRunAtMs    int64  `json:"lastRunAtMs,omitempty"`
	LastStatus     string `json:"lastStatus,omitempty"`
	LastError      string `json:"lastError,omitempty"`
	LastDurationMs int64  `json:"lastDurationMs,omitempty"`
}

// Job is a single unit of queued work. Payload is kept as raw JSON so that
// each task handler owns its own payload shape; the queue layer never
// inspects it.
type Job struct {
	ID          string          `json:"id"`
	Queue       QueueName       `json:"queue"`
	Task        TaskName        `json:"task"`
	BotName     string          `json:"botName,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAtMs int64           `json:"createdAtMs"`
	Schedule    *Schedule       `json:"schedule,omitempty"`
	State       JobState        `json:"state"`
}
