package respond

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/adapters/devadapter"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/retrieval"
)

// fakeStore is a minimal in-memory memory.Store double: only the methods
// the hot path actually calls return interesting values, the rest are
// zero-value no-ops.
type fakeStore struct {
	stored []string
}

func (f *fakeStore) StoreConversation(ctx context.Context, userID, userMessage, botResponse, channelID string, hint *memory.Emotion, meta map[string]string) error {
	f.stored = append(f.stored, userMessage, botResponse)
	return nil
}
func (f *fakeStore) RetrieveRelevantMemories(ctx context.Context, userID, query string, limit int) ([]memory.Result, error) {
	return nil, nil
}
func (f *fakeStore) RetrieveRelevantMemoriesFidelityFirst(ctx context.Context, userID, query string, opts memory.SearchOptions) ([]memory.Result, error) {
	return nil, nil
}
func (f *fakeStore) RetrieveContextAwareMemories(ctx context.Context, userID, query string, maxMemories int, queryContext map[string]string) ([]memory.Result, error) {
	return nil, nil
}
func (f *fakeStore) GetConversationHistory(ctx context.Context, userID string, limit int) ([]memory.Entry, error) {
	return nil, nil
}
func (f *fakeStore) GetLastInteractionInfo(ctx context.Context, userID string) (*memory.LastInteraction, error) {
	return nil, nil
}
func (f *fakeStore) SearchMemoriesWithIntelligence(ctx context.Context, userID, query string, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error) {
	return nil, nil
}
func (f *fakeStore) GetConversationSummaryWithRecommendations(ctx context.Context, userID string, history []memory.Entry, limit int) (memory.ConversationSummary, error) {
	return memory.ConversationSummary{}, nil
}
func (f *fakeStore) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, 384), nil
}
func (f *fakeStore) HealthCheck(ctx context.Context) (memory.HealthStatus, error) {
	return memory.HealthStatus{Status: "ok"}, nil
}

type fakeRecaller struct{}

func (fakeRecaller) Recall(ctx context.Context, userID, query string, vectorName memory.VectorName, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error) {
	return nil, nil
}

func newTestEngine() (*Engine, *devadapter.Messaging, *devadapter.LLM, *fakeStore) {
	log := zerolog.Nop()
	messaging := devadapter.New(log)
	llm := devadapter.NewLLM("a cheerful reply")
	store := &fakeStore{}

	e := &Engine{
		Persona: Persona{
			BotName:       "aria",
			SystemPrompt:  "You are Aria.",
			ColdResponses: []string{"Let's talk later."},
			ErrorMessages: []string{"Oops, try again."},
		},
		Messaging: messaging,
		LLM:       llm,
		Memory:    store,
		Pipeline:  &retrieval.Pipeline{Recaller: fakeRecaller{}},
		Log:       log,
	}
	return e, messaging, llm, store
}

func TestHandleMessageSendsReplyAndStoresTurn(t *testing.T) {
	e, messaging, _, store := newTestEngine()

	err := e.HandleMessage(context.Background(), adapters.InboundMessage{
		ID: "m1", AuthorID: "u1", Content: "how's it going", ChannelID: "c1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messaging.Sent) != 1 {
		t.Fatalf("expected exactly one SendChunks call, got %d", len(messaging.Sent))
	}
	if len(store.stored) != 2 {
		t.Fatalf("expected a (user, bot) turn pair stored, got %d entries", len(store.stored))
	}
}

func TestHandleMessageEmptyContentSuppressed(t *testing.T) {
	e, messaging, _, store := newTestEngine()

	if err := e.HandleMessage(context.Background(), adapters.InboundMessage{ID: "m1", AuthorID: "u1", Content: "   ", ChannelID: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messaging.Sent) != 0 || len(store.stored) != 0 {
		t.Fatal("expected an empty message to be suppressed before any processing")
	}
}

func TestHandleMessageBlockedUserSuppressed(t *testing.T) {
	e, messaging, _, _ := newTestEngine()
	e.Privacy.BlockedUserIDs = map[string]bool{"u1": true}

	if err := e.HandleMessage(context.Background(), adapters.InboundMessage{ID: "m1", AuthorID: "u1", Content: "hello", ChannelID: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messaging.Sent) != 0 {
		t.Fatal("expected a blocked user's message to never reach the reply path")
	}
}

type alwaysInTimeout struct{}

func (alwaysInTimeout) IsInTimeout(ctx context.Context, userID string) (bool, error) { return true, nil }

func TestHandleMessageModerationTimeoutSendsColdResponseWithoutStoring(t *testing.T) {
	e, messaging, _, store := newTestEngine()
	e.Moderation = alwaysInTimeout{}

	if err := e.HandleMessage(context.Background(), adapters.InboundMessage{ID: "m1", AuthorID: "u1", Content: "hello", ChannelID: "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messaging.Sent) != 1 || messaging.Sent[0].Chunks[0] != "Let's talk later." {
		t.Fatalf("expected the configured cold response, got %+v", messaging.Sent)
	}
	if len(store.stored) != 0 {
		t.Fatal("expected no memory write of the bot's line during a moderation timeout")
	}
}

func TestRespondUsesLastHumanTurnFromReconstructedHistory(t *testing.T) {
	e, _, _, _ := newTestEngine()

	history := []adapters.InboundMessage{
		{AuthorID: "bot-aria", AuthorIsBot: true, AuthorName: "aria", Content: "earlier reply"},
		{AuthorID: "u2", Content: "what's the weather like"},
	}
	reply, err := e.Respond(context.Background(), "c1", history, "internal goal: reply to quiet channel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply == "" {
		t.Fatal("expected a non-empty reply")
	}
}

func TestThoughtCallsLLMWithTopic(t *testing.T) {
	e, _, llm, _ := newTestEngine()
	llm.Response = "I've been thinking about marine biology lately."

	thought, err := e.Thought(context.Background(), "marine biology")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thought == "" {
		t.Fatal("expected a non-empty thought")
	}
}

func TestClassifyTrustSignalDetectsVulnerabilityAndBoundary(t *testing.T) {
	if classifyTrustSignal("just saying hi") != signalPositiveTurn {
		t.Error("expected a plain turn to classify as positive_turn")
	}
	if classifyTrustSignal("I've never told anyone this before") != signalVulnerability {
		t.Error("expected a vulnerability phrase to classify as vulnerability_moment")
	}
	if classifyTrustSignal("shut up and do what i say") != signalBoundaryViolation {
		t.Error("expected a boundary-pushing phrase to classify as boundary_violation")
	}
}
