// Package memory defines the vector-native, bot-scoped memory domain: the
// Memory Entry type, its seven named vectors, and the Store contract that
// concrete backends (see pkg/memory/vectorstore) implement.
package memory

import (
	"context"
	"fmt"
	"time"
)

// Role is who authored a memory entry.
type Role string

const (
	RoleUser           Role = "user"
	RoleBot            Role = "bot"
	RoleSystem         Role = "system"
	RoleKnowledgeImport Role = "knowledge_import"
	RoleSelfReflection Role = "self_reflection"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBot, RoleSystem, RoleKnowledgeImport, RoleSelfReflection:
		return true
	default:
		return false
	}
}

// EntryType is the memory_type payload field.
type EntryType string

const (
	EntryConversation      EntryType = "conversation"
	EntryBotSelfKnowledge  EntryType = "bot_self_knowledge"
	EntryBotSelfReflection EntryType = "bot_self_reflection"
	EntryGossip            EntryType = "gossip"
	EntryFact              EntryType = "fact"
	EntrySummary           EntryType = "summary"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryConversation, EntryBotSelfKnowledge, EntryBotSelfReflection, EntryGossip, EntryFact, EntrySummary:
		return true
	default:
		return false
	}
}

// Emotion is the primary_emotion payload field, populated at store time
// either from a caller-supplied hint or from keyword detection.
type Emotion string

const (
	EmotionJoy          Emotion = "joy"
	EmotionSadness      Emotion = "sadness"
	EmotionAnger        Emotion = "anger"
	EmotionFear         Emotion = "fear"
	EmotionSurprise     Emotion = "surprise"
	EmotionDisgust      Emotion = "disgust"
	EmotionNeutral      Emotion = "neutral"
	EmotionAnxious      Emotion = "anxious"
	EmotionPositive     Emotion = "positive"
	EmotionNegative     Emotion = "negative"
	EmotionVeryPositive Emotion = "very_positive"
	EmotionVeryNegative Emotion = "very_negative"
)

func (e Emotion) Valid() bool {
	switch e {
	case EmotionJoy, EmotionSadness, EmotionAnger, EmotionFear, EmotionSurprise, EmotionDisgust,
		EmotionNeutral, EmotionAnxious, EmotionPositive, EmotionNegative, EmotionVeryPositive, EmotionVeryNegative:
		return true
	default:
		return false
	}
}

// Momentum describes whether emotional intensity is rising or falling
// across a user's recent trajectory.
type Momentum string

const (
	MomentumAccelerating Momentum = "accelerating"
	MomentumSteady       Momentum = "steady"
	MomentumDecelerating Momentum = "decelerating"
	MomentumReversing    Momentum = "reversing"
)

// SignificanceTier buckets overall_significance for graduated filtering.
type SignificanceTier string

const (
	TierAmbient  SignificanceTier = "ambient"
	TierRoutine  SignificanceTier = "routine"
	TierNotable  SignificanceTier = "notable"
	TierDefining SignificanceTier = "defining"
)

// TierForScore maps a significance score in [0,1] to its tier:
// ambient < 0.2 <= routine < 0.5 <= notable < 0.8 <= defining.
func TierForScore(score float64) SignificanceTier {
	switch {
	case score >= 0.8:
		return TierDefining
	case score >= 0.5:
		return TierNotable
	case score >= 0.2:
		return TierRoutine
	default:
		return TierAmbient
	}
}

func (t SignificanceTier) rank() int {
	switch t {
	case TierAmbient:
		return 0
	case TierRoutine:
		return 1
	case TierNotable:
		return 2
	case TierDefining:
		return 3
	default:
		return -1
	}
}

// Less reports whether t is strictly less significant than other.
func (t SignificanceTier) Less(other SignificanceTier) bool {
	return t.rank() < other.rank()
}

// VectorName identifies one of the seven named embedding facets every
// entry carries.
type VectorName string

const (
	VectorContent      VectorName = "content"
	VectorEmotion      VectorName = "emotion"
	VectorSemantic     VectorName = "semantic"
	VectorRelationship VectorName = "relationship"
	VectorPersonality  VectorName = "personality"
	VectorInteraction  VectorName = "interaction"
	VectorTemporal     VectorName = "temporal"
)

// AllVectorNames lists the seven facets in the fixed order entries are
// constructed in.
var AllVectorNames = [...]VectorName{
	VectorContent, VectorEmotion, VectorSemantic, VectorRelationship,
	VectorPersonality, VectorInteraction, VectorTemporal,
}

// VectorDim is the fixed embedding width every named vector uses.
const VectorDim = 384

// VectorSet holds all seven named vectors for one entry. Every entry has
// all seven; NewVectorSet fills any vector the caller didn't supply with
// the content vector as a benign fallback, so no facet is ever empty.
type VectorSet map[VectorName][]float32

// NewVectorSet builds a complete VectorSet from partial facets, filling any
// missing facet with content per the "never zero-length" invariant.
func NewVectorSet(content []float32, facets map[VectorName][]float32) (VectorSet, error) {
	if len(content) != VectorDim {
		return nil, fmt.Errorf("memory: content vector must be %d-dim, got %d", VectorDim, len(content))
	}
	vs := make(VectorSet, len(AllVectorNames))
	vs[VectorContent] = content
	for _, name := range AllVectorNames {
		if name == VectorContent {
			continue
		}
		if v, ok := facets[name]; ok && len(v) == VectorDim {
			vs[name] = v
		} else {
			vs[name] = content
		}
	}
	return vs, nil
}

// SignificanceFactors is the bag of contributing scores recorded alongside
// overall_significance, kept as named fields rather than a map so callers
// can't silently typo a factor name.
type SignificanceFactors struct {
	Emotion    float64 `json:"emotion"`
	Novelty    float64 `json:"novelty"`
	LifeEvent  float64 `json:"lifeEvent"`
	Length     float64 `json:"length"`
	NameRecall float64 `json:"nameRecall"`
}

// Entry is the atomic unit stored in the vector index.
type Entry struct {
	ID      string `json:"id"`
	BotName string `json:"botName"`
	UserID  string `json:"userId"`

	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId,omitempty"`
	EntryType EntryType `json:"memoryType"`

	ChannelID    string `json:"channelId,omitempty"`
	MessageID    string `json:"messageId,omitempty"`
	AuthorID     string `json:"authorId,omitempty"`
	AuthorIsBot  bool   `json:"authorIsBot,omitempty"`
	ReplyToMsgID string `json:"replyToMsgId,omitempty"`

	PrimaryEmotion      Emotion   `json:"primaryEmotion"`
	EmotionalIntensity  float64   `json:"emotionalIntensity"`
	EmotionalTrajectory []Emotion `json:"emotionalTrajectory,omitempty"`
	EmotionalVelocity   float64   `json:"emotionalVelocity"`
	EmotionalMomentum   Momentum  `json:"emotionalMomentum,omitempty"`
	EmotionalStability  float64   `json:"emotionalStability"`

	OverallSignificance float64             `json:"overallSignificance"`
	SignificanceFactors SignificanceFactors `json:"significanceFactors"`
	SignificanceTier    SignificanceTier    `json:"significanceTier"`
	DecayResistance     float64             `json:"decayResistance"`

	Vectors VectorSet `json:"-"`
}

// TrajectoryWindow bounds the length of EmotionalTrajectory to the last K
// emotion labels for a user, K≈10.
const TrajectoryWindow = 10

// AppendTrajectory appends label to the bounded trajectory window,
// dropping the oldest entry once the window is full.
func AppendTrajectory(trajectory []Emotion, label Emotion) []Emotion {
	out := append(append([]Emotion{}, trajectory...), label)
	if len(out) > TrajectoryWindow {
		out = out[len(out)-TrajectoryWindow:]
	}
	return out
}

// SearchOptions configures a fidelity-first Store search.
type SearchOptions struct {
	Limit                   int
	MinScore                float64
	VectorName              VectorName
	MemoryTypes             []EntryType
	FullFidelity            bool
	IntelligentRanking      bool
	GraduatedFiltering      bool
	PreserveCharacterNuance bool
	ContextBudgetChars      int // 0 means unbounded
}

// SearchType labels which vector or strategy produced a result, carried on
// every returned entry.
type SearchType string

const (
	SearchTypeContent       SearchType = "content"
	SearchTypeEmotion       SearchType = "emotion"
	SearchTypeSemantic      SearchType = "semantic"
	SearchTypeFidelityFirst SearchType = "fidelity_first"
)

// EmotionSource records how the query's routing vector was chosen.
type EmotionSource string

const (
	EmotionSourceKeyword  EmotionSource = "keyword_detection"
	EmotionSourceSemantic EmotionSource = "semantic_routing"
	EmotionSourceContent  EmotionSource = "content_default"
)

// RobertaSource formats an emotion_source value for a caller-supplied hint
// with the given classifier label, e.g. "roberta:joy".
func RobertaSource(label Emotion) EmotionSource {
	return EmotionSource("roberta:" + string(label))
}

// Result wraps an Entry with the scoring metadata the retrieval pipeline
// attaches on the way out.
type Result struct {
	Entry                Entry
	Score                float64
	SearchType           SearchType
	EmotionSource        EmotionSource
	FidelityPreserved    bool
	CharacterRelevance   float64
	PersonalityAlignment float64
}

// LastInteraction summarizes the most recent stored turn for a user.
type LastInteraction struct {
	Timestamp time.Time
	ChannelID string
}

// ConversationSummary is the extractive, centrality-scored summary
// produced by GetConversationSummaryWithRecommendations.
type ConversationSummary struct {
	TopicSummary       string
	ConversationThemes []string
	Method             string
	SentencesAnalyzed  int
	EmotionsDetected   []Emotion
}

// HealthStatus reports backend reachability.
type HealthStatus struct {
	Status string
	Detail string
}

// Store is the Memory Store's logical contract (§4.1). Bot isolation is
// physical: an implementation routes every call through a single bot's
// collection and never crosses collections within one Store value.
type Store interface {
	StoreConversation(ctx context.Context, userID, userMessage, botResponse, channelID string, hint *Emotion, meta map[string]string) error

	RetrieveRelevantMemories(ctx context.Context, userID, query string, limit int) ([]Result, error)
	RetrieveRelevantMemoriesFidelityFirst(ctx context.Context, userID, query string, opts SearchOptions) ([]Result, error)
	RetrieveContextAwareMemories(ctx context.Context, userID, query string, maxMemories int, queryContext map[string]string) ([]Result, error)
	GetConversationHistory(ctx context.Context, userID string, limit int) ([]Entry, error)
	GetLastInteractionInfo(ctx context.Context, userID string) (*LastInteraction, error)
	SearchMemoriesWithIntelligence(ctx context.Context, userID, query string, memoryTypes []EntryType, limit int) ([]Result, error)
	GetConversationSummaryWithRecommendations(ctx context.Context, userID string, history []Entry, limit int) (ConversationSummary, error)

	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	HealthCheck(ctx context.Context) (HealthStatus, error)
}
