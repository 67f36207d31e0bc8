package retrieval

import (
	"context"
	"time"

	"github.com/whisperengine/core/pkg/memory"
)

// overFetchFactor is the "over-fetch by factor 2-3x of the requested
// limit" step from §4.2. 3x leaves the most headroom for graduated
// filtering to drop low-tier entries without running out of candidates.
const overFetchFactor = 3

// RecencyHorizon bounds the age normalization window for the recency
// signal; entries older than this carry a recency score of 0.
const RecencyHorizon = 30 * 24 * time.Hour

// Recaller performs the primary over-fetch recall against one named
// vector, scoped to a single user within a single bot's collection. It is
// implemented by pkg/memory/vectorstore and injected here so this package
// never depends on a concrete backend.
type Recaller interface {
	Recall(ctx context.Context, userID, query string, vectorName memory.VectorName, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error)
}

// DefiningLookup finds one defining-tier memory for a user, used by the
// nuance-preservation step when the ranked set doesn't already contain
// one. Also implemented by pkg/memory/vectorstore.
type DefiningLookup interface {
	AnyDefining(ctx context.Context, userID string) (*memory.Result, error)
}

// Pipeline runs the fidelity-first retrieval algorithm described in §4.2.
type Pipeline struct {
	Recaller Recaller
	Defining DefiningLookup
}

// routeVector implements step 1: vector routing. It records the routing
// decision's emotion_source alongside the chosen vector.
func routeVector(query string, hint *memory.Emotion) (memory.VectorName, memory.EmotionSource) {
	if hint != nil && hint.Valid() {
		return memory.VectorEmotion, memory.RobertaSource(*hint)
	}
	if _, ok := memory.DetectEmotionKeyword(query); ok {
		return memory.VectorEmotion, memory.EmotionSourceKeyword
	}
	key := memory.DeriveSemanticKey(query)
	if memory.IsKnownSemanticKey(key) {
		return memory.VectorSemantic, memory.EmotionSourceSemantic
	}
	return memory.VectorContent, memory.EmotionSourceContent
}

// Run executes the full pipeline: route, over-fetch, rank, graduated
// filter, nuance preserve.
func (p *Pipeline) Run(ctx context.Context, userID, query string, hint *memory.Emotion, opts memory.SearchOptions) ([]memory.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	vectorName, emotionSource := routeVector(query, hint)
	if opts.VectorName != "" {
		vectorName = opts.VectorName
	}

	fetchLimit := limit * overFetchFactor
	hits, err := p.Recaller.Recall(ctx, userID, query, vectorName, opts.MemoryTypes, fetchLimit)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		hits[i].SearchType = memory.SearchTypeFidelityFirst
		hits[i].EmotionSource = emotionSource
	}

	if opts.IntelligentRanking {
		now := time.Now()
		ageNorms := make(map[string]float64, len(hits))
		for _, h := range hits {
			age := now.Sub(h.Entry.Timestamp)
			ageNorms[h.Entry.ID] = float64(age) / float64(RecencyHorizon)
		}
		hits = Rank(hits, ageNorms, defaultRankWeights)
	}

	if len(hits) > limit {
		hits = hits[:limit]
	}

	if opts.GraduatedFiltering && opts.ContextBudgetChars > 0 {
		hits = graduatedFilter(hits, opts.ContextBudgetChars)
	}

	if opts.PreserveCharacterNuance && p.Defining != nil {
		hits, err = preserveDefining(ctx, p.Defining, userID, hits)
		if err != nil {
			return nil, err
		}
	}

	for i := range hits {
		hits[i].FidelityPreserved = !opts.GraduatedFiltering
	}
	return hits, nil
}

// graduatedFilter drops ambient-tier entries first, then routine, never
// defining; if still over budget it truncates per-entry content rather
// than dropping fields, per §4.2 step 4.
func graduatedFilter(hits []memory.Result, budgetChars int) []memory.Result {
	totalChars := func(rs []memory.Result) int {
		total := 0
		for _, r := range rs {
			total += len(r.Entry.Content)
		}
		return total
	}

	dropTier := func(rs []memory.Result, tier memory.SignificanceTier) []memory.Result {
		kept := rs[:0:0]
		for _, r := range rs {
			if r.Entry.SignificanceTier == tier {
				continue
			}
			kept = append(kept, r)
		}
		return kept
	}

	for totalChars(hits) > budgetChars {
		if containsTier(hits, memory.TierAmbient) {
			hits = dropTier(hits, memory.TierAmbient)
			continue
		}
		if containsTier(hits, memory.TierRoutine) {
			hits = dropTier(hits, memory.TierRoutine)
			continue
		}
		break
	}

	if totalChars(hits) <= budgetChars || len(hits) == 0 {
		return hits
	}

	perEntryBudget := budgetChars / len(hits)
	if perEntryBudget < 1 {
		perEntryBudget = 1
	}
	for i := range hits {
		if len(hits[i].Entry.Content) > perEntryBudget {
			hits[i].Entry.Content = hits[i].Entry.Content[:perEntryBudget]
		}
	}
	return hits
}

func containsTier(hits []memory.Result, tier memory.SignificanceTier) bool {
	for _, r := range hits {
		if r.Entry.SignificanceTier == tier {
			return true
		}
	}
	return false
}

// preserveDefining guarantees at least one defining-tier memory survives
// the pipeline even if its primary score fell below the cutoff, per §4.2
// step 5.
func preserveDefining(ctx context.Context, lookup DefiningLookup, userID string, hits []memory.Result) ([]memory.Result, error) {
	if containsTier(hits, memory.TierDefining) {
		return hits, nil
	}
	defining, err := lookup.AnyDefining(ctx, userID)
	if err != nil {
		return nil, err
	}
	if defining == nil {
		return hits, nil
	}
	return append(hits, *defining), nil
}
