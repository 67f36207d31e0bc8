// Package vectorstore implements memory.Store against a Qdrant-compatible
// vector engine: one collection per bot, seven named vectors per point,
// cosine distance, bot isolation enforced at the collection layer.
package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/embedding"
)

// collectionPrefix matches §6's "whisperengine_memory_<bot>" key layout.
const collectionPrefix = "whisperengine_memory_"

// collectionStatus caches whether a bot's collection has been confirmed to
// exist, the same cached-probe idiom the teacher used for its vector
// extension load check: pay the existence round-trip once per process,
// not on every store/search call.
type collectionStatus struct {
	ok      bool
	errText string
}

// Store implements memory.Store against a single bot's Qdrant collection.
type Store struct {
	client   *qdrant.Client
	embedder *embedding.Provider
	botName  string
	log      zerolog.Logger

	mu       sync.Mutex
	ensured  *collectionStatus
}

// New builds a Store scoped to one bot. The collection is created lazily
// on first use via ensureCollection, never eagerly at construction time.
func New(client *qdrant.Client, embedder *embedding.Provider, botName string, log zerolog.Logger) *Store {
	return &Store{
		client:   client,
		embedder: embedder,
		botName:  botName,
		log:      log.With().Str("component", "vectorstore").Str("bot", botName).Logger(),
	}
}

func (s *Store) collectionName() string {
	return collectionPrefix + s.botName
}

// ensureCollection idempotently creates the bot's collection with all
// seven named vectors declared at cosine distance, caching the outcome
// the way the teacher cached its vector-extension-load probe.
func (s *Store) ensureCollection(ctx context.Context) error {
	s.mu.Lock()
	if s.ensured != nil {
		status := s.ensured
		s.mu.Unlock()
		if !status.ok {
			return fmt.Errorf("vectorstore: %s", status.errText)
		}
		return nil
	}
	s.mu.Unlock()

	exists, err := s.client.CollectionExists(ctx, s.collectionName())
	if err != nil {
		s.cacheEnsureResult(false, err.Error())
		return fmt.Errorf("vectorstore: collection exists check: %w", err)
	}
	if !exists {
		vectorsConfig := make(map[string]*qdrant.VectorParams, len(memory.AllVectorNames))
		for _, name := range memory.AllVectorNames {
			vectorsConfig[string(name)] = &qdrant.VectorParams{
				Size:     memory.VectorDim,
				Distance: qdrant.Distance_Cosine,
			}
		}
		_, err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collectionName(),
			VectorsConfig:  qdrant.NewVectorsConfigMap(vectorsConfig),
		})
		if err != nil {
			s.cacheEnsureResult(false, err.Error())
			return fmt.Errorf("vectorstore: create collection: %w", err)
		}
	}

	s.cacheEnsureResult(true, "")
	return nil
}

func (s *Store) cacheEnsureResult(ok bool, errText string) {
	s.mu.Lock()
	s.ensured = &collectionStatus{ok: ok, errText: errText}
	s.mu.Unlock()
}

// embedAll embeds content into every named vector facet. This project
// doesn't have per-facet embedding models; every facet reuses the content
// embedding except where a richer signal is supplied by the caller, per
// §4.1's "any absent facet is filled with the content vector" invariant.
func (s *Store) embedAll(ctx context.Context, content string) (memory.VectorSet, error) {
	vec, err := s.embedder.EmbedQuery(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embed: %w", err)
	}
	return memory.NewVectorSet(vec, nil)
}

func vectorsToQdrant(vs memory.VectorSet) *qdrant.Vectors {
	named := make(map[string]*qdrant.Vector, len(vs))
	for name, vec := range vs {
		named[string(name)] = qdrant.NewVector(vec...)
	}
	return qdrant.NewVectorsMap(named)
}

func entryToPayload(e memory.Entry) map[string]*qdrant.Value {
	payload := map[string]*qdrant.Value{
		"user_id":              qdrant.NewValueString(e.UserID),
		"bot_name":             qdrant.NewValueString(e.BotName),
		"role":                 qdrant.NewValueString(string(e.Role)),
		"content":              qdrant.NewValueString(e.Content),
		"timestamp":            qdrant.NewValueInt(e.Timestamp.UnixMilli()),
		"session_id":           qdrant.NewValueString(e.SessionID),
		"memory_type":          qdrant.NewValueString(string(e.EntryType)),
		"channel_id":           qdrant.NewValueString(e.ChannelID),
		"message_id":           qdrant.NewValueString(e.MessageID),
		"author_id":            qdrant.NewValueString(e.AuthorID),
		"author_is_bot":        qdrant.NewValueBool(e.AuthorIsBot),
		"reply_to_msg_id":      qdrant.NewValueString(e.ReplyToMsgID),
		"primary_emotion":      qdrant.NewValueString(string(e.PrimaryEmotion)),
		"emotional_intensity":  qdrant.NewValueDouble(e.EmotionalIntensity),
		"emotional_velocity":   qdrant.NewValueDouble(e.EmotionalVelocity),
		"emotional_momentum":   qdrant.NewValueString(string(e.EmotionalMomentum)),
		"emotional_stability":  qdrant.NewValueDouble(e.EmotionalStability),
		"emotional_trajectory": qdrant.NewValueString(trajectoryToString(e.EmotionalTrajectory)),
		"overall_significance": qdrant.NewValueDouble(e.OverallSignificance),
		"significance_tier":    qdrant.NewValueString(string(e.SignificanceTier)),
		"decay_resistance":     qdrant.NewValueDouble(e.DecayResistance),
	}
	return payload
}

// StoreConversation writes the user turn and bot turn as two entries with
// shared derived metadata, per §4.1. meta["memory_type"] tags both entries
// (defaulting to conversation); every other caller of StoreConversation
// (gossip dispatch, fact/summary extraction, self-reflection) relies on
// this to land in the right memory_type bucket instead of conversation.
func (s *Store) StoreConversation(ctx context.Context, userID, userMessage, botResponse, channelID string, hint *memory.Emotion, meta map[string]string) error {
	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	sessionID := meta["session_id"]

	prevIntensity, prevTrajectory, err := s.previousEmotionalState(ctx, userID)
	if err != nil {
		return err
	}

	userEntry, err := s.buildEntry(ctx, userID, userMessage, memory.RoleUser, channelID, sessionID, hint, now, meta, prevIntensity, prevTrajectory)
	if err != nil {
		return err
	}
	botEntry, err := s.buildEntry(ctx, userID, botResponse, memory.RoleBot, channelID, sessionID, nil, now, meta, userEntry.EmotionalIntensity, userEntry.EmotionalTrajectory)
	if err != nil {
		return err
	}

	points := []*qdrant.PointStruct{
		entryToPoint(userEntry),
		entryToPoint(botEntry),
	}
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName(),
		Points:         points,
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("store_conversation upsert failed")
		return fmt.Errorf("vectorstore: upsert: %w", err)
	}
	return nil
}

// previousEmotionalState returns the user's most recently stored
// conversation entry's intensity and trajectory, the baseline the new
// turn's velocity/momentum/stability derive from. A user's first ever
// turn returns the zero baseline (no prior intensity, empty trajectory).
func (s *Store) previousEmotionalState(ctx context.Context, userID string) (float64, []memory.Emotion, error) {
	history, err := s.GetConversationHistory(ctx, userID, 1)
	if err != nil {
		return 0, nil, err
	}
	if len(history) == 0 {
		return 0, nil, nil
	}
	last := history[len(history)-1]
	return last.EmotionalIntensity, last.EmotionalTrajectory, nil
}

func (s *Store) buildEntry(ctx context.Context, userID, content string, role memory.Role, channelID, sessionID string, hint *memory.Emotion, at time.Time, meta map[string]string, prevIntensity float64, prevTrajectory []memory.Emotion) (memory.Entry, error) {
	vectors, err := s.embedAll(ctx, content)
	if err != nil {
		return memory.Entry{}, err
	}

	entryType := memory.EntryConversation
	if mt := meta["memory_type"]; mt != "" {
		entryType = memory.EntryType(mt)
	}

	emotion := memory.ClassifyEmotion(content, hint)
	intensity := memory.DefaultIntensity(emotion)
	velocity := memory.Velocity(prevIntensity, intensity)
	trajectory := memory.AppendTrajectory(prevTrajectory, emotion)
	factors, overall := memory.ScoreSignificance(content, intensity, false)

	return memory.Entry{
		ID:                  uuid.NewString(),
		BotName:             s.botName,
		UserID:              userID,
		Role:                role,
		Content:             content,
		Timestamp:           at,
		SessionID:           sessionID,
		EntryType:           entryType,
		ChannelID:           channelID,
		PrimaryEmotion:      emotion,
		EmotionalIntensity:  intensity,
		EmotionalVelocity:   velocity,
		EmotionalMomentum:   memory.ResolveMomentum(velocity),
		EmotionalStability:  memory.Stability(trajectory),
		EmotionalTrajectory: trajectory,
		OverallSignificance: overall,
		SignificanceFactors: factors,
		SignificanceTier:    memory.TierForScore(overall),
		DecayResistance:     overall,
		Vectors:             vectors,
	}, nil
}

func trajectoryToString(trajectory []memory.Emotion) string {
	labels := make([]string, len(trajectory))
	for i, e := range trajectory {
		labels[i] = string(e)
	}
	return strings.Join(labels, ",")
}

func trajectoryFromString(s string) []memory.Emotion {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	trajectory := make([]memory.Emotion, len(parts))
	for i, p := range parts {
		trajectory[i] = memory.Emotion(p)
	}
	return trajectory
}

func entryToPoint(e memory.Entry) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(e.ID),
		Vectors: vectorsToQdrant(e.Vectors),
		Payload: entryToPayload(e),
	}
}

// HealthCheck reports whether the backend is reachable.
func (s *Store) HealthCheck(ctx context.Context) (memory.HealthStatus, error) {
	_, err := s.client.HealthCheck(ctx)
	if err != nil {
		return memory.HealthStatus{Status: "error", Detail: err.Error()}, nil
	}
	return memory.HealthStatus{Status: "ok"}, nil
}

// GenerateEmbedding exposes the embedding backend directly, per §4.1's
// generate_embedding operation.
func (s *Store) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.EmbedQuery(ctx, text)
}
