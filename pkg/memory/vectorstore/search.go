package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/retrieval"
)

// Recall performs the primary over-fetch recall against one named vector
// facet, scoped to this store's bot and the given user, optionally
// restricted to a set of memory_type values. It implements
// retrieval.Recaller so pkg/memory/retrieval never depends on qdrant
// directly.
func (s *Store) Recall(ctx context.Context, userID, query string, vectorName memory.VectorName, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embed query: %w", err)
	}

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName(),
		Query:          qdrant.NewQuery(queryVec...),
		Using:          qdrant.PtrOf(string(vectorName)),
		Filter:         andFilters(userFilter(userID), memoryTypeFilter(memoryTypes)),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query: %w", err)
	}

	results := make([]memory.Result, 0, len(resp))
	for _, point := range resp {
		entry, ok := payloadToEntry(point.GetPayload())
		if !ok {
			continue
		}
		results = append(results, memory.Result{
			Entry: entry,
			Score: float64(point.GetScore()),
		})
	}
	return results, nil
}

// AnyDefining finds one defining-tier memory for a user, implementing
// retrieval.DefiningLookup for the character-nuance preservation step.
func (s *Store) AnyDefining(ctx context.Context, userID string) (*memory.Result, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collectionName(),
		Filter: andFilters(
			userFilter(userID),
			matchFilter("significance_tier", string(memory.TierDefining)),
		),
		Limit:       qdrant.PtrOf(uint32(1)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: scroll: %w", err)
	}
	if len(resp) == 0 {
		return nil, nil
	}
	entry, ok := payloadToEntry(resp[0].GetPayload())
	if !ok {
		return nil, nil
	}
	return &memory.Result{Entry: entry, Score: 1, FidelityPreserved: true}, nil
}

func userFilter(userID string) *qdrant.Filter {
	return matchFilter("user_id", userID)
}

func matchFilter(field, value string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(field, value),
		},
	}
}

func andFilters(filters ...*qdrant.Filter) *qdrant.Filter {
	out := &qdrant.Filter{}
	for _, f := range filters {
		if f == nil {
			continue
		}
		out.Must = append(out.Must, f.Must...)
		out.Should = append(out.Should, f.Should...)
	}
	return out
}

// memoryTypeFilter restricts a query to the given memory_type values, or
// returns nil (no restriction) when types is empty. Qdrant ANDs Must
// conditions and, when Should is also present in the same filter,
// requires at least one Should to match too, so a single Should group
// of per-type matches implements "any of these types" alongside the
// caller's other Must conditions.
func memoryTypeFilter(types []memory.EntryType) *qdrant.Filter {
	if len(types) == 0 {
		return nil
	}
	if len(types) == 1 {
		return matchFilter("memory_type", string(types[0]))
	}
	conditions := make([]*qdrant.Condition, len(types))
	for i, t := range types {
		conditions[i] = qdrant.NewMatch("memory_type", string(t))
	}
	return &qdrant.Filter{Should: conditions}
}

func payloadToEntry(payload map[string]*qdrant.Value) (memory.Entry, bool) {
	if payload == nil {
		return memory.Entry{}, false
	}
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	getDouble := func(key string) float64 {
		if v, ok := payload[key]; ok {
			return v.GetDoubleValue()
		}
		return 0
	}
	getBool := func(key string) bool {
		if v, ok := payload[key]; ok {
			return v.GetBoolValue()
		}
		return false
	}
	getInt := func(key string) int64 {
		if v, ok := payload[key]; ok {
			return v.GetIntegerValue()
		}
		return 0
	}

	return memory.Entry{
		UserID:              get("user_id"),
		BotName:             get("bot_name"),
		Role:                memory.Role(get("role")),
		Content:             get("content"),
		Timestamp:           time.UnixMilli(getInt("timestamp")).UTC(),
		SessionID:           get("session_id"),
		EntryType:           memory.EntryType(get("memory_type")),
		ChannelID:           get("channel_id"),
		MessageID:           get("message_id"),
		AuthorID:            get("author_id"),
		AuthorIsBot:         getBool("author_is_bot"),
		ReplyToMsgID:        get("reply_to_msg_id"),
		PrimaryEmotion:      memory.Emotion(get("primary_emotion")),
		EmotionalIntensity:  getDouble("emotional_intensity"),
		EmotionalVelocity:   getDouble("emotional_velocity"),
		EmotionalMomentum:   memory.Momentum(get("emotional_momentum")),
		EmotionalStability:  getDouble("emotional_stability"),
		EmotionalTrajectory: trajectoryFromString(get("emotional_trajectory")),
		OverallSignificance: getDouble("overall_significance"),
		SignificanceTier:    memory.SignificanceTier(get("significance_tier")),
		DecayResistance:     getDouble("decay_resistance"),
	}, true
}

// RetrieveRelevantMemories is the single-vector semantic recall over
// content, per §4.1.
func (s *Store) RetrieveRelevantMemories(ctx context.Context, userID, query string, limit int) ([]memory.Result, error) {
	if limit <= 0 {
		limit = 10
	}
	results, err := s.Recall(ctx, userID, query, memory.VectorContent, nil, limit)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].SearchType = memory.SearchTypeContent
	}
	return results, nil
}

// RetrieveRelevantMemoriesFidelityFirst runs the fidelity-first pipeline.
func (s *Store) RetrieveRelevantMemoriesFidelityFirst(ctx context.Context, userID, query string, opts memory.SearchOptions) ([]memory.Result, error) {
	pipeline := &retrieval.Pipeline{Recaller: s, Defining: s}
	return pipeline.Run(ctx, userID, query, nil, opts)
}

// RetrieveContextAwareMemories routes to an emotion- or semantic-preferred
// vector per the pipeline's routing step, reusing it with default options.
func (s *Store) RetrieveContextAwareMemories(ctx context.Context, userID, query string, maxMemories int, queryContext map[string]string) ([]memory.Result, error) {
	pipeline := &retrieval.Pipeline{Recaller: s, Defining: s}
	return pipeline.Run(ctx, userID, query, nil, memory.SearchOptions{Limit: maxMemories})
}

// GetConversationHistory returns the user's stored turns, both roles,
// oldest first, most recent last. The scroll orders by timestamp
// descending server-side so the limit cuts off the oldest turns, not an
// arbitrary id-ordered subset; the local sort then restores ascending
// order for the caller.
func (s *Store) GetConversationHistory(ctx context.Context, userID string, limit int) ([]memory.Entry, error) {
	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	resp, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collectionName(),
		Filter:         andFilters(userFilter(userID), matchFilter("memory_type", string(memory.EntryConversation))),
		Limit:          qdrant.PtrOf(uint32(limit)),
		OrderBy:        &qdrant.OrderBy{Key: "timestamp", Direction: qdrant.Direction_Desc.Enum()},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorstore: scroll: %w", err)
	}
	entries := make([]memory.Entry, 0, len(resp))
	for _, point := range resp {
		if entry, ok := payloadToEntry(point.GetPayload()); ok {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	return entries, nil
}

// GetLastInteractionInfo returns the most recent stored turn for a user,
// or nil if the user has no history yet.
func (s *Store) GetLastInteractionInfo(ctx context.Context, userID string) (*memory.LastInteraction, error) {
	history, err := s.GetConversationHistory(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	last := history[len(history)-1]
	return &memory.LastInteraction{Timestamp: last.Timestamp, ChannelID: last.ChannelID}, nil
}

// SearchMemoriesWithIntelligence is the qdrant-intelligence search
// variant: fidelity-first with intelligent ranking and memory-type
// filtering, no graduated filtering or nuance preservation.
func (s *Store) SearchMemoriesWithIntelligence(ctx context.Context, userID, query string, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error) {
	return s.RetrieveRelevantMemoriesFidelityFirst(ctx, userID, query, memory.SearchOptions{
		Limit:              limit,
		MemoryTypes:        memoryTypes,
		IntelligentRanking: true,
	})
}
