package workers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/adapters/devadapter"
	"github.com/whisperengine/core/pkg/dailylife"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/embedding"
	"github.com/whisperengine/core/pkg/memory/selfmemory"
	"github.com/whisperengine/core/pkg/taskqueue"
	"github.com/whisperengine/core/pkg/universe"
)

// fakeStore is a minimal memory.Store double recording every
// StoreConversation call, mirroring pkg/respond's test double.
type fakeStore struct {
	history []memory.Entry
	stored  []string
	summary memory.ConversationSummary
}

func (f *fakeStore) StoreConversation(ctx context.Context, userID, userMessage, botResponse, channelID string, hint *memory.Emotion, meta map[string]string) error {
	f.stored = append(f.stored, botResponse)
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
	return f.history, nil
}
func (f *fakeStore) GetLastInteractionInfo(ctx context.Context, userID string) (*memory.LastInteraction, error) {
	return nil, nil
}
func (f *fakeStore) SearchMemoriesWithIntelligence(ctx context.Context, userID, query string, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error) {
	return nil, nil
}
func (f *fakeStore) GetConversationSummaryWithRecommendations(ctx context.Context, userID string, history []memory.Entry, limit int) (memory.ConversationSummary, error) {
	return f.summary, nil
}
func (f *fakeStore) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, memory.VectorDim), nil
}
func (f *fakeStore) HealthCheck(ctx context.Context) (memory.HealthStatus, error) {
	return memory.HealthStatus{Status: "ok"}, nil
}

type fakeGraph struct{ reply string }

func (g fakeGraph) Respond(ctx context.Context, channelID string, history []adapters.InboundMessage, goalNote string) (string, error) {
	return g.reply, nil
}

type fakeCreative struct{ thought string }

func (c fakeCreative) Thought(ctx context.Context, topic string) (string, error) {
	return c.thought, nil
}

type fakeDirectory struct{ recipients []universe.Recipient }

func (d fakeDirectory) OtherBots(ctx context.Context, sourceBot string) ([]universe.Recipient, error) {
	return d.recipients, nil
}

type fakeSink struct{ pushed []adapters.ActionCommand }

func (s *fakeSink) PushActions(ctx context.Context, cmds []adapters.ActionCommand) error {
	s.pushed = append(s.pushed, cmds...)
	return nil
}

func newTestWorkers(store *fakeStore, llm *devadapter.LLM) *Workers {
	return &Workers{
		BotName:  "aria",
		Memory:   store,
		LLM:      llm,
		Embedder: embedding.NewStubProvider(),
		Character: dailylife.Character{
			BotName:   "aria",
			Interests: []string{"marine biology"},
		},
		Flags:    dailylife.Flags{EnableReplies: true, EnableReactions: true, EnablePosting: true},
		Activity: dailylife.NewActivityMonitor(),
		Log:      zerolog.Nop(),
	}
}

func TestExtractBatchKnowledgeSkipsShortHistory(t *testing.T) {
	store := &fakeStore{history: []memory.Entry{{Role: memory.RoleUser, Content: "hi"}}}
	wk := newTestWorkers(store, devadapter.NewLLM("name: short"))

	payload := `{"user_id":"u1","session_id":"s1"}`
	if err := wk.handleExtractBatchKnowledge(context.Background(), &taskqueue.Job{Payload: []byte(payload)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 0 {
		t.Fatalf("expected no facts stored for a too-short history, got %d", len(store.stored))
	}
}

func TestExtractBatchKnowledgeStoresOneFactPerLine(t *testing.T) {
	store := &fakeStore{history: []memory.Entry{
		{Role: memory.RoleUser, Content: "I work as a marine biologist and I love diving near reefs every summer."},
	}}
	llm := devadapter.NewLLM("works as a marine biologist\nenjoys diving near reefs")
	wk := newTestWorkers(store, llm)

	payload := `{"user_id":"u1","session_id":"s1","channel_id":"c1"}`
	if err := wk.handleExtractBatchKnowledge(context.Background(), &taskqueue.Job{Payload: []byte(payload)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 2 {
		t.Fatalf("expected two facts stored, got %d: %v", len(store.stored), store.stored)
	}
}

func TestSummarizeSessionStoresTopicSummary(t *testing.T) {
	store := &fakeStore{
		history: []memory.Entry{{Role: memory.RoleUser, Content: "hi"}},
		summary: memory.ConversationSummary{TopicSummary: "a catch-up about diving plans"},
	}
	wk := newTestWorkers(store, devadapter.NewLLM(""))

	payload := `{"user_id":"u1","session_id":"s1"}`
	if err := wk.handleSummarizeSession(context.Background(), &taskqueue.Job{Payload: []byte(payload)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 1 || store.stored[0] != "a catch-up about diving plans" {
		t.Fatalf("expected the summary stored verbatim, got %v", store.stored)
	}
}

func TestSummarizeSessionSkipsEmptyHistory(t *testing.T) {
	store := &fakeStore{}
	wk := newTestWorkers(store, devadapter.NewLLM(""))

	payload := `{"user_id":"u1","session_id":"s1"}`
	if err := wk.handleSummarizeSession(context.Background(), &taskqueue.Job{Payload: []byte(payload)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 0 {
		t.Fatal("expected no summary stored for an empty history")
	}
}

func TestRunGraphEnrichmentStoresOneFactPerEntity(t *testing.T) {
	store := &fakeStore{history: []memory.Entry{{Role: memory.RoleUser, Content: "my sister Jo keeps asking about my new job"}}}
	llm := devadapter.NewLLM("Jo: sister, frequently mentioned")
	wk := newTestWorkers(store, llm)

	payload := `{"session_id":"s1","user_id":"u1","channel_id":"c1","server_id":"g1"}`
	if err := wk.handleRunGraphEnrichment(context.Background(), &taskqueue.Job{Payload: []byte(payload)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected one enrichment fact stored, got %d", len(store.stored))
	}
}

func TestRunReverieCycleStoresReflection(t *testing.T) {
	store := &fakeStore{}
	wk := newTestWorkers(store, devadapter.NewLLM("thinking about reefs tonight"))
	wk.Self = selfmemory.New(store, "aria")

	if err := wk.handleRunReverieCycle(context.Background(), &taskqueue.Job{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("expected one reflection stored, got %d", len(store.stored))
	}
}

func TestRunGossipDispatchWithNoDirectoryIsNoop(t *testing.T) {
	store := &fakeStore{}
	wk := newTestWorkers(store, devadapter.NewLLM(""))

	evt := universe.Event{EventType: universe.EventTopicDiscovery, UserID: "u1", SourceBot: "aria", Summary: "found a shared interest"}
	payload, _ := json.Marshal(evt)
	if err := wk.handleRunGossipDispatch(context.Background(), &taskqueue.Job{Payload: payload}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessDailyLifeNoScoredMessagesIsNoop(t *testing.T) {
	store := &fakeStore{}
	wk := newTestWorkers(store, devadapter.NewLLM(""))
	wk.Flags.EnablePosting = false
	wk.Graph = fakeGraph{reply: "hi"}
	wk.Creative = fakeCreative{thought: "hmm"}
	sink := &fakeSink{}
	wk.Poller = sink

	snapshot := dailylife.SensorySnapshot{BotName: "aria", Channels: []string{"c1"}}
	payload, _ := json.Marshal(snapshot)
	if err := wk.handleProcessDailyLife(context.Background(), &taskqueue.Job{Payload: payload}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.pushed) != 0 {
		t.Fatalf("expected no actions pushed for an empty snapshot, got %d", len(sink.pushed))
	}
}

func TestNonEmptyLinesDropsBlankEntries(t *testing.T) {
	lines := nonEmptyLines("first\n\n  \nsecond\n")
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestParsePreferenceObjectStripsCodeFence(t *testing.T) {
	prefs := parsePreferenceObject("```json\n{\"nickname\":\"Jo\"}\n```")
	if prefs["nickname"] != "Jo" {
		t.Fatalf("expected nickname=Jo, got %+v", prefs)
	}
}

func TestParsePreferenceObjectMalformedYieldsNil(t *testing.T) {
	if prefs := parsePreferenceObject("not json"); prefs != nil {
		t.Fatalf("expected nil for malformed input, got %+v", prefs)
	}
}
