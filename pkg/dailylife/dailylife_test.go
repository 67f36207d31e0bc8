package dailylife

import (
	"context"
	"testing"
	"time"

	"github.com/whisperengine/core/pkg/adapters"
)

func TestActivityMonitorTopActiveOrdersByRecency(t *testing.T) {
	m := NewActivityMonitor()
	now := time.Now()
	m.RecordActivity("old", now.Add(-10*time.Minute))
	m.RecordActivity("new", now.Add(-1*time.Minute))
	m.RecordActivity("stale", now.Add(-1*time.Hour))

	top := m.TopActive(now, activeChannelWindow, 5)
	if len(top) != 2 {
		t.Fatalf("expected 2 active channels within window, got %d: %v", len(top), top)
	}
	if top[0] != "new" {
		t.Fatalf("expected most recent channel first, got %v", top)
	}
}

func TestActivityMonitorQuietForNeverSeenIsQuiet(t *testing.T) {
	m := NewActivityMonitor()
	if !m.QuietFor("never-seen", time.Now(), 10*time.Minute) {
		t.Fatal("expected a never-seen channel to count as quiet")
	}
}

func TestActivityMonitorQuietForRecentIsNotQuiet(t *testing.T) {
	m := NewActivityMonitor()
	now := time.Now()
	m.RecordActivity("busy", now.Add(-1*time.Minute))
	if m.QuietFor("busy", now, 10*time.Minute) {
		t.Fatal("expected a recently active channel to not count as quiet")
	}
}

func TestClassifySentiment(t *testing.T) {
	cases := map[string]sentiment{
		"this is awesome news":    sentimentPositive,
		"lol that's hilarious":    sentimentFunny,
		"ugh today was terrible":  sentimentNegative,
		"the meeting is at 3pm":   sentimentNeutral,
	}
	for text, want := range cases {
		if got := classifySentiment(text); got != want {
			t.Errorf("classifySentiment(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestCosineSimilarityIdenticalVectorsIsOne(t *testing.T) {
	v := []float32{1, 0, 0}
	if got := cosineSimilarity(v, v); got < 0.999 {
		t.Errorf("expected ~1.0 for identical vectors, got %f", got)
	}
}

func TestCosineSimilarityOrthogonalIsZero(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := cosineSimilarity(a, b); got != 0 {
		t.Errorf("expected 0 for orthogonal vectors, got %f", got)
	}
}

func TestReactorRespectsPerUserCooldown(t *testing.T) {
	r := NewReactor(1.0, ReactionCaps{PerChannelHourly: 100, PerUserCooldown: time.Hour, DailyGlobal: 100}, nil)
	now := time.Now()
	if !r.allow("chan-1", "user-1", now) {
		t.Fatal("expected first reaction to be allowed")
	}
	if r.allow("chan-1", "user-1", now.Add(1*time.Minute)) {
		t.Fatal("expected second reaction within cooldown to be denied")
	}
}

func TestReactorRespectsDailyGlobalCap(t *testing.T) {
	r := NewReactor(1.0, ReactionCaps{PerChannelHourly: 1000, PerUserCooldown: 0, DailyGlobal: 2}, nil)
	now := time.Now()
	if !r.allow("chan-1", "user-1", now) {
		t.Fatal("expected first reaction allowed")
	}
	if !r.allow("chan-1", "user-2", now) {
		t.Fatal("expected second reaction allowed")
	}
	if r.allow("chan-1", "user-3", now) {
		t.Fatal("expected third reaction to exceed daily cap")
	}
}

func TestDebouncerDoesNotFlushBeforeWindow(t *testing.T) {
	flushed := make(chan string, 1)
	d := newDebouncer(func(key string) { flushed <- key })

	d.Trigger("k1", false)
	select {
	case <-flushed:
		t.Fatal("expected debounced trigger to not flush immediately")
	case <-time.After(50 * time.Millisecond):
	}
	d.Stop()
}

func TestDebouncerBypassFlushesImmediately(t *testing.T) {
	flushed := make(chan string, 1)
	d := newDebouncer(func(key string) { flushed <- key })

	d.Trigger("k1", true)
	select {
	case got := <-flushed:
		if got != "k1" {
			t.Errorf("expected flush for k1, got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected bypassed trigger to flush immediately")
	}
}

func TestPerceiveSkipsStaleAndSelfMessages(t *testing.T) {
	snapshot := SensorySnapshot{
		BotName: "aria",
		TakenAt: time.Now(),
		Messages: map[string][]MessageSnapshot{
			"chan-1": {
				{ID: "m1", AuthorID: "aria", Content: "self talk", At: time.Now()},
				{ID: "m2", AuthorID: "user-1", Content: "stale", At: time.Now().Add(-1 * time.Hour)},
			},
		},
	}
	scored, err := Perceive(context.Background(), snapshot, Character{BotName: "aria"}, nil, map[string]bool{})
	if err == nil && len(scored) != 0 {
		t.Fatalf("expected no candidates after filtering self/stale messages, got %d", len(scored))
	}
}

func TestExecuteReactNeverCallsLLM(t *testing.T) {
	plans := []Plan{{ActionType: adapters.ActionReact, ChannelID: "chan-1", TargetID: "m1", Emoji: "🎉"}}
	cmds, err := Execute(context.Background(), plans, nil, nil, nil, Character{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds) != 1 || cmds[0].ActionType != adapters.ActionReact {
		t.Fatalf("expected exactly one react command, got %+v", cmds)
	}
}
