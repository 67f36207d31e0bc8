package vectorstore

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/whisperengine/core/pkg/memory"
)

var sentenceSplitRe = regexp.MustCompile(`(?:[.!?]+\s+|\n+)`)

const dedupCosineThreshold = 0.92

// GetConversationSummaryWithRecommendations produces an extractive,
// centrality-scored summary: sentences are embedded, scored by mean
// cosine similarity to every other sentence (the ones most "central" to
// the conversation), then deduplicated by pairwise cosine similarity.
// Never a generic template, per §4.1.
func (s *Store) GetConversationSummaryWithRecommendations(ctx context.Context, userID string, history []memory.Entry, limit int) (memory.ConversationSummary, error) {
	if limit <= 0 {
		limit = 3
	}

	sentences := make([]string, 0, len(history)*2)
	emotions := make([]memory.Emotion, 0, len(history))
	for _, e := range history {
		if e.PrimaryEmotion != "" && e.PrimaryEmotion != memory.EmotionNeutral {
			emotions = append(emotions, e.PrimaryEmotion)
		}
		for _, sentence := range sentenceSplitRe.Split(e.Content, -1) {
			trimmed := strings.TrimSpace(sentence)
			if trimmed != "" {
				sentences = append(sentences, trimmed)
			}
		}
	}

	if len(sentences) == 0 {
		return memory.ConversationSummary{
			TopicSummary:      "",
			Method:            "extractive_centrality",
			SentencesAnalyzed: 0,
			EmotionsDetected:  emotions,
		}, nil
	}

	vectors := make([][]float32, len(sentences))
	for i, sentence := range sentences {
		vec, err := s.embedder.EmbedQuery(ctx, sentence)
		if err != nil {
			return memory.ConversationSummary{}, err
		}
		vectors[i] = vec
	}

	type scored struct {
		idx   int
		score float64
	}
	centrality := make([]scored, len(sentences))
	for i := range sentences {
		var sum float64
		for j := range sentences {
			if i == j {
				continue
			}
			sum += cosineSimilarity(vectors[i], vectors[j])
		}
		denom := len(sentences) - 1
		if denom < 1 {
			denom = 1
		}
		centrality[i] = scored{idx: i, score: sum / float64(denom)}
	}
	sort.Slice(centrality, func(i, j int) bool { return centrality[i].score > centrality[j].score })

	selected := make([]string, 0, limit)
	selectedVecs := make([][]float32, 0, limit)
	for _, c := range centrality {
		if len(selected) >= limit {
			break
		}
		candidate := vectors[c.idx]
		duplicate := false
		for _, v := range selectedVecs {
			if cosineSimilarity(candidate, v) >= dedupCosineThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		selected = append(selected, sentences[c.idx])
		selectedVecs = append(selectedVecs, candidate)
	}

	themes := make([]string, 0, len(selected))
	seenThemes := make(map[string]bool)
	for _, sentence := range selected {
		key := memory.DeriveSemanticKey(sentence)
		if key != memory.GeneralSemanticKey && !seenThemes[key] {
			seenThemes[key] = true
			themes = append(themes, key)
		}
	}

	return memory.ConversationSummary{
		TopicSummary:       strings.Join(selected, " "),
		ConversationThemes: themes,
		Method:             "extractive_centrality",
		SentencesAnalyzed:  len(sentences),
		EmotionsDetected:   emotions,
	}, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
