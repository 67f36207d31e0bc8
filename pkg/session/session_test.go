package session

import (
	"context"
	"testing"
	"time"

	"github.com/whisperengine/core/pkg/taskqueue"
)

func TestSessionIDForIsStableForSameStart(t *testing.T) {
	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	a := sessionIDFor("user-1", at)
	b := sessionIDFor("user-1", at)
	if a != b {
		t.Fatalf("expected stable session id, got %q vs %q", a, b)
	}
	if sessionIDFor("user-2", at) == a {
		t.Fatalf("expected different users to get different session ids")
	}
}

func TestDedupeJobIDIsStablePerTaskAndSession(t *testing.T) {
	a := dedupeJobID(taskqueue.TaskSummarizeSession, "sess-1")
	b := dedupeJobID(taskqueue.TaskSummarizeSession, "sess-1")
	if a != b {
		t.Fatalf("expected dedupeJobID to be deterministic")
	}
	if dedupeJobID(taskqueue.TaskReflect, "sess-1") == a {
		t.Fatalf("expected different tasks to get different dedup ids")
	}
}

func TestRecordTurnOpensAndTracksSession(t *testing.T) {
	tr := New("aria", nil)
	at := time.Now()

	if err := tr.RecordTurn(context.Background(), "user-1", "chan-1", "", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.mu.Lock()
	s, ok := tr.sessions["user-1"]
	tr.mu.Unlock()
	if !ok || s.sessionID != sessionIDFor("user-1", at) {
		t.Fatalf("expected RecordTurn to open a session")
	}
	if s.messageCount != 1 {
		t.Fatalf("expected message count to be tracked")
	}
}

func TestCloseSessionClearsState(t *testing.T) {
	tr := New("aria", nil)
	tr.mu.Lock()
	tr.sessions["user-1"] = &state{sessionID: "fixed"}
	tr.mu.Unlock()

	tr.CloseSession("user-1")

	if _, ok := tr.sessions["user-1"]; ok {
		t.Fatalf("expected session state to be cleared")
	}
}
