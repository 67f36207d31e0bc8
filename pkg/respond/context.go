package respond

import (
	"context"
	"sync"
	"time"

	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/retrieval"
	"github.com/whisperengine/core/pkg/memory/selfmemory"
	"github.com/whisperengine/core/pkg/trust"
)

// fanOutTimeout bounds each of the six scatter-gathered retrievals (§5:
// "every I/O is awaitable and treated as a suspension point... every
// external call has a timeout; on timeout the caller substitutes an
// empty/default result and continues").
const fanOutTimeout = 3 * time.Second

// historyLimit and summaryHistoryLimit size the two history-shaped
// retrievals independently of the fidelity-first memory limit.
const (
	historyLimit        = 10
	summaryHistoryLimit = 20
	knowledgeFactLimit  = 5
	gossipContextLimit  = 5
)

// replyContext is the scatter-gathered input to the single LLM call,
// assembled from the six independent retrievals named in §5. Any
// retrieval that failed or timed out is left at its zero value rather
// than failing the turn.
type replyContext struct {
	Memories  []memory.Result
	History   []memory.Entry
	Facts     []memory.Result
	Summary   memory.ConversationSummary
	Gossip    []memory.Result
	Nickname  string
}

// gatherContext runs the six retrievals concurrently and waits for all
// of them to settle (or individually fail closed) before the response
// is generated, per §5.
func gatherContext(ctx context.Context, pipeline *retrieval.Pipeline, store memory.Store, self *selfmemory.Namespace, trustMgr *trust.Manager, userID, botName, query string, hint *memory.Emotion) replyContext {
	var (
		wg  sync.WaitGroup
		out replyContext
	)

	run := func(f func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, fanOutTimeout)
			defer cancel()
			f(cctx)
		}()
	}

	run(func(cctx context.Context) {
		hits, err := pipeline.Run(cctx, userID, query, hint, memory.SearchOptions{
			Limit:                   10,
			IntelligentRanking:      true,
			GraduatedFiltering:      true,
			PreserveCharacterNuance: true,
			ContextBudgetChars:      4000,
		})
		if err == nil {
			out.Memories = hits
		}
	})

	run(func(cctx context.Context) {
		hist, err := store.GetConversationHistory(cctx, userID, historyLimit)
		if err == nil {
			out.History = hist
		}
	})

	run(func(cctx context.Context) {
		if self == nil {
			return
		}
		facts, err := self.QuerySelfKnowledge(cctx, query, knowledgeFactLimit)
		if err == nil {
			out.Facts = facts
		}
	})

	run(func(cctx context.Context) {
		hist, err := store.GetConversationHistory(cctx, userID, summaryHistoryLimit)
		if err != nil {
			return
		}
		summary, err := store.GetConversationSummaryWithRecommendations(cctx, userID, hist, summaryHistoryLimit)
		if err == nil {
			out.Summary = summary
		}
	})

	run(func(cctx context.Context) {
		hits, err := store.SearchMemoriesWithIntelligence(cctx, userID, query, []memory.EntryType{memory.EntryGossip}, gossipContextLimit)
		if err == nil {
			out.Gossip = hits
		}
	})

	run(func(cctx context.Context) {
		if trustMgr == nil {
			return
		}
		rel, err := trustMgr.GetRelationship(cctx, userID, botName)
		if err == nil {
			out.Nickname = rel.Preferences["nickname"]
		}
	})

	wg.Wait()
	return out
}
