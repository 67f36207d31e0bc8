package dailylife

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/whisperengine/core/pkg/memory/embedding"
)

// perceiveWindow bounds how recent a message must be to be scored at all;
// anything older is stale chatter by the time the worker picks it up.
const perceiveWindow = 15 * time.Minute

// topScoredCount is K in "emit the top K scored messages" (§4.5).
const topScoredCount = 5

// ScoredMessage is a candidate message perceive judged worth the plan
// stage's attention, with the reason it scored.
type ScoredMessage struct {
	Message MessageSnapshot
	Score   float64
	Reason  string
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Perceive scores every non-self, non-mention, non-stale message in the
// snapshot against the character's interest set, returning the top K by
// cosine similarity with their reason.
func Perceive(ctx context.Context, snapshot SensorySnapshot, character Character, embedder *embedding.Provider, ownBotNames map[string]bool) ([]ScoredMessage, error) {
	var candidates []MessageSnapshot
	for _, msgs := range snapshot.Messages {
		for _, msg := range msgs {
			if msg.AuthorID == "" || msg.AuthorID == snapshot.BotName {
				continue
			}
			if msg.AuthorIsBot && ownBotNames[msg.AuthorID] {
				continue
			}
			if len(msg.Mentions) > 0 && containsBotMention(msg.Mentions, snapshot.BotName) {
				continue
			}
			if snapshot.TakenAt.Sub(msg.At) > perceiveWindow {
				continue
			}
			candidates = append(candidates, msg)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	interestVec, err := embedder.EmbedQuery(ctx, character.interestText())
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(candidates))
	for i, msg := range candidates {
		texts[i] = msg.Content
	}
	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredMessage, len(candidates))
	for i, msg := range candidates {
		var sim float64
		if i < len(vecs) {
			sim = cosineSimilarity(interestVec, vecs[i])
		}
		scored[i] = ScoredMessage{
			Message: msg,
			Score:   sim,
			Reason:  "interest-relevance",
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topScoredCount {
		scored = scored[:topScoredCount]
	}
	return scored, nil
}

func containsBotMention(mentions []string, botName string) bool {
	for _, m := range mentions {
		if m == botName {
			return true
		}
	}
	return false
}
