// Package retrieval implements the fidelity-first retrieval pipeline:
// vector routing, over-fetch, intelligent ranking, graduated filtering and
// character-nuance preservation.
package retrieval

import (
	"sort"

	"github.com/whisperengine/core/pkg/memory"
)

// rankWeights is the weighted-combination scorer from the component
// design's "intelligent ranking" step: primary-vector cosine, significance
// tier boost, temporal recency, character-nuance (personality cosine) and
// emotional alignment. Weights are additive so no single signal can zero
// out another, the same shape as the teacher's vector-weight/text-weight
// merge, generalized from two signals to five.
type rankWeights struct {
	primary      float64
	significance float64
	recency      float64
	nuance       float64
	emotional    float64
}

var defaultRankWeights = rankWeights{
	primary:      0.40,
	significance: 0.20,
	recency:      0.15,
	nuance:       0.15,
	emotional:    0.10,
}

func tierBoost(tier memory.SignificanceTier) float64 {
	switch tier {
	case memory.TierDefining:
		return 1.0
	case memory.TierNotable:
		return 0.7
	case memory.TierRoutine:
		return 0.4
	default:
		return 0.15
	}
}

// recencyScore decays linearly with age, floored at 0. ageNorm is the
// entry's age divided by a caller-chosen recency horizon, so callers
// control how quickly "recent" decays.
func recencyScore(ageNorm float64) float64 {
	score := 1 - ageNorm
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Rank rescores primary hits by the weighted combination and sorts by
// final score, falling back to the tie-break order from §4.2: higher
// significance tier wins, then more recent timestamp, then lexicographically
// smaller memory id.
func Rank(hits []memory.Result, ageNorms map[string]float64, weights rankWeights) []memory.Result {
	out := make([]memory.Result, len(hits))
	copy(out, hits)
	for i := range out {
		r := &out[i]
		age := ageNorms[r.Entry.ID]
		combined := weights.primary*r.Score +
			weights.significance*tierBoost(r.Entry.SignificanceTier) +
			weights.recency*recencyScore(age) +
			weights.nuance*r.PersonalityAlignment +
			weights.emotional*r.CharacterRelevance
		r.Score = combined
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.SignificanceTier != b.Entry.SignificanceTier {
			return b.Entry.SignificanceTier.Less(a.Entry.SignificanceTier)
		}
		if !a.Entry.Timestamp.Equal(b.Entry.Timestamp) {
			return a.Entry.Timestamp.After(b.Entry.Timestamp)
		}
		return a.Entry.ID < b.Entry.ID
	})
	return out
}
