// Package workers registers the handler table for every named background
// capability §4.3, §4.5 and §4.6 enqueue onto pkg/taskqueue: the seven
// post-conversation capabilities, the daily-life perceive→plan→execute
// job, the reverie creative-idle job, and gossip dispatch. This is the
// worker-side counterpart to pkg/respond's hot path — nothing here ever
// runs on a goroutine a reply is waiting on.
package workers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/dailylife"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/embedding"
	"github.com/whisperengine/core/pkg/memory/selfmemory"
	"github.com/whisperengine/core/pkg/taskqueue"
	"github.com/whisperengine/core/pkg/trust"
	"github.com/whisperengine/core/pkg/universe"
)

// ActionSink is the narrow seam runBrain pushes finished action commands
// through; *dailylife.Poller implements it, a test double can stand in
// without a real Redis client.
type ActionSink interface {
	PushActions(ctx context.Context, cmds []adapters.ActionCommand) error
}

// Workers holds every dependency the registered handlers close over. One
// value is built per bot process, mirroring the one-Engine-per-bot shape
// pkg/respond uses.
type Workers struct {
	BotName string

	Queue     *taskqueue.Queue
	Memory    memory.Store
	Trust     *trust.Manager
	Self      *selfmemory.Namespace
	LLM       adapters.LLM
	Embedder  *embedding.Provider
	Messaging adapters.Messaging

	Character dailylife.Character
	Flags     dailylife.Flags
	Activity  *dailylife.ActivityMonitor
	Poller    ActionSink
	Graph     dailylife.ResponseGraph
	Creative  dailylife.CreativeThought
	Directory universe.Directory

	Log zerolog.Logger
}

// Register binds every capability this package implements to w, by task
// name. A capability named in SPEC_FULL.md with no handler registered
// here is a defect; Worker.dispatch logs and drops any job whose task
// has no handler, so an omission fails silently at runtime instead of at
// compile time — keep this list in lockstep with pkg/taskqueue's TaskName
// constants.
func (wk *Workers) Register(w *taskqueue.Worker) {
	w.Register(taskqueue.TaskExtractBatchKnowledge, wk.handleExtractBatchKnowledge)
	w.Register(taskqueue.TaskExtractFacts, wk.handleExtractBatchKnowledge)
	w.Register(taskqueue.TaskExtractPreferences, wk.handleExtractPreferences)
	w.Register(taskqueue.TaskUpdateGoals, wk.handleUpdateGoals)
	w.Register(taskqueue.TaskSummarizeSession, wk.handleSummarizeSession)
	w.Register(taskqueue.TaskReflect, wk.handleReflect)
	w.Register(taskqueue.TaskRunInsightAnalysis, wk.handleRunInsightAnalysis)
	w.Register(taskqueue.TaskRunGraphEnrichment, wk.handleRunGraphEnrichment)

	w.Register(taskqueue.TaskProcessDailyLife, wk.handleProcessDailyLife)
	w.Register(taskqueue.TaskTriggerImmediate, wk.handleTriggerImmediate)
	w.Register(taskqueue.TaskRunReverieCycle, wk.handleRunReverieCycle)

	w.Register(taskqueue.TaskRunGossipDispatch, wk.handleRunGossipDispatch)
}
