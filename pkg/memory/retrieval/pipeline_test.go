package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/whisperengine/core/pkg/memory"
)

type fakeRecaller struct {
	hits           []memory.Result
	gotMemoryTypes []memory.EntryType
}

func (f *fakeRecaller) Recall(ctx context.Context, userID, query string, vectorName memory.VectorName, memoryTypes []memory.EntryType, limit int) ([]memory.Result, error) {
	f.gotMemoryTypes = memoryTypes
	out := make([]memory.Result, 0, len(f.hits))
	for i, h := range f.hits {
		if i >= limit {
			break
		}
		out = append(out, h)
	}
	return out, nil
}

type fakeDefining struct {
	result *memory.Result
}

func (f *fakeDefining) AnyDefining(ctx context.Context, userID string) (*memory.Result, error) {
	return f.result, nil
}

func TestRouteVectorPrefersHintOverKeyword(t *testing.T) {
	hint := memory.EmotionJoy
	vec, source := routeVector("I'm furious about this", &hint)
	if vec != memory.VectorEmotion {
		t.Fatalf("expected emotion vector when hint present, got %s", vec)
	}
	if source != memory.RobertaSource(memory.EmotionJoy) {
		t.Fatalf("expected roberta source, got %s", source)
	}
}

func TestRouteVectorKeywordThenSemanticThenContent(t *testing.T) {
	if vec, src := routeVector("I'm so angry right now", nil); vec != memory.VectorEmotion || src != memory.EmotionSourceKeyword {
		t.Fatalf("expected emotion/keyword routing, got %s/%s", vec, src)
	}
	if vec, src := routeVector("tell me about marine biology and coral reefs", nil); vec != memory.VectorSemantic || src != memory.EmotionSourceSemantic {
		t.Fatalf("expected semantic routing, got %s/%s", vec, src)
	}
	if vec, src := routeVector("what time is it", nil); vec != memory.VectorContent || src != memory.EmotionSourceContent {
		t.Fatalf("expected content default routing, got %s/%s", vec, src)
	}
}

func TestPipelinePreservesDefiningMemory(t *testing.T) {
	now := time.Now()
	routine := memory.Result{
		Entry: memory.Entry{ID: "b", Timestamp: now, SignificanceTier: memory.TierRoutine},
		Score: 0.9,
	}
	defining := memory.Result{
		Entry: memory.Entry{ID: "a", Timestamp: now.Add(-time.Hour), SignificanceTier: memory.TierDefining},
		Score: 0.05,
	}

	p := &Pipeline{
		Recaller: &fakeRecaller{hits: []memory.Result{routine}},
		Defining: &fakeDefining{result: &defining},
	}

	out, err := p.Run(context.Background(), "user-1", "hello", nil, memory.SearchOptions{
		Limit:                   1,
		PreserveCharacterNuance: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, r := range out {
		if r.Entry.SignificanceTier == memory.TierDefining {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a defining-tier memory to survive, got %+v", out)
	}
}

func TestRunForwardsMemoryTypesToRecall(t *testing.T) {
	recaller := &fakeRecaller{}
	p := &Pipeline{Recaller: recaller}

	if _, err := p.Run(context.Background(), "user-1", "hello", nil, memory.SearchOptions{
		Limit:       5,
		MemoryTypes: []memory.EntryType{memory.EntryGossip},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recaller.gotMemoryTypes) != 1 || recaller.gotMemoryTypes[0] != memory.EntryGossip {
		t.Fatalf("expected Recall to receive MemoryTypes=[gossip], got %v", recaller.gotMemoryTypes)
	}
}

func TestGraduatedFilterDropsAmbientBeforeDefining(t *testing.T) {
	hits := []memory.Result{
		{Entry: memory.Entry{ID: "amb", Content: "short ambient note", SignificanceTier: memory.TierAmbient}},
		{Entry: memory.Entry{ID: "def", Content: "a very important defining memory that matters a lot", SignificanceTier: memory.TierDefining}},
	}
	out := graduatedFilter(hits, 10)
	if len(out) != 1 || out[0].Entry.SignificanceTier != memory.TierDefining {
		t.Fatalf("expected only the defining entry to survive ambient eviction, got %+v", out)
	}
}
