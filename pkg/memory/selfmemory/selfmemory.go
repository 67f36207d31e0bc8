// Package selfmemory implements the bot self-memory namespace (§4.8): an
// isolated set of entries addressed by the synthetic user id
// "bot_self_<bot>", never surfaced in normal user-facing retrieval.
package selfmemory

import (
	"context"
	"fmt"

	"github.com/whisperengine/core/pkg/memory"
)

// selfUserID builds the synthetic user_id a bot's self-memory lives under.
func selfUserID(botName string) string {
	return "bot_self_" + botName
}

// Reflection is the structured self-reflection record stored after
// notable interactions.
type Reflection struct {
	Effectiveness        float64
	Authenticity         float64
	EmotionalResonance   float64
	LearningInsight      string
	ImprovementSuggestion string
	DominantTrait        string
}

// Namespace wraps a bot's memory.Store to confine every operation to the
// bot's own self-memory user id, so the self-knowledge import, query and
// reflection flows can never leak into or read from a real user's memory.
type Namespace struct {
	store   memory.Store
	botName string
}

// New builds a self-memory namespace bound to one bot's store.
func New(store memory.Store, botName string) *Namespace {
	return &Namespace{store: store, botName: botName}
}

// ImportFact stores one CDL-derived character fact (relationship,
// background, current project, daily routine, personality insight) as a
// self-knowledge entry, one-shot at character load time.
func (n *Namespace) ImportFact(ctx context.Context, fact string, querySynonyms []string) error {
	meta := map[string]string{"memory_type": string(memory.EntryBotSelfKnowledge)}
	if len(querySynonyms) > 0 {
		meta["query_synonyms"] = joinSynonyms(querySynonyms)
	}
	return n.store.StoreConversation(ctx, selfUserID(n.botName), "", fact, "", nil, meta)
}

func joinSynonyms(synonyms []string) string {
	out := ""
	for i, s := range synonyms {
		if i > 0 {
			out += "|"
		}
		out += s
	}
	return out
}

// QuerySelfKnowledge retrieves from the self namespace only, using the
// same retrieval path as user memories but restricted to bot_self_<bot>.
func (n *Namespace) QuerySelfKnowledge(ctx context.Context, query string, limit int) ([]memory.Result, error) {
	return n.store.RetrieveRelevantMemories(ctx, selfUserID(n.botName), query, limit)
}

// StoreReflection records a structured self-reflection after a notable
// interaction, every score clamped to [0,1].
func (n *Namespace) StoreReflection(ctx context.Context, r Reflection) error {
	content := fmt.Sprintf(
		"effectiveness=%.2f authenticity=%.2f emotional_resonance=%.2f trait=%s insight=%s suggestion=%s",
		clamp01(r.Effectiveness), clamp01(r.Authenticity), clamp01(r.EmotionalResonance),
		r.DominantTrait, r.LearningInsight, r.ImprovementSuggestion,
	)
	meta := map[string]string{"memory_type": string(memory.EntryBotSelfReflection)}
	return n.store.StoreConversation(ctx, selfUserID(n.botName), "", content, "", nil, meta)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
