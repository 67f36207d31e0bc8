package vectorstore

import (
	"testing"
	"time"

	"github.com/whisperengine/core/pkg/memory"
)

func TestPayloadRoundTrip(t *testing.T) {
	entry := memory.Entry{
		UserID:              "user-1",
		BotName:             "aria",
		Role:                memory.RoleUser,
		Content:             "I just got a new job!",
		Timestamp:           time.UnixMilli(1_700_000_000_000).UTC(),
		SessionID:           "sess-1",
		EntryType:           memory.EntryConversation,
		ChannelID:           "chan-1",
		PrimaryEmotion:      memory.EmotionJoy,
		EmotionalIntensity:  0.7,
		EmotionalMomentum:   memory.MomentumAccelerating,
		EmotionalStability:  0.8,
		EmotionalTrajectory: []memory.Emotion{memory.EmotionNeutral, memory.EmotionJoy},
		OverallSignificance: 0.6,
		SignificanceTier:    memory.TierNotable,
		DecayResistance:     0.6,
	}

	payload := entryToPayload(entry)
	roundTripped, ok := payloadToEntry(payload)
	if !ok {
		t.Fatalf("expected payloadToEntry to succeed")
	}

	if roundTripped.UserID != entry.UserID || roundTripped.Content != entry.Content {
		t.Fatalf("round trip mismatch: %+v vs %+v", roundTripped, entry)
	}
	if roundTripped.PrimaryEmotion != entry.PrimaryEmotion {
		t.Fatalf("expected emotion to round trip, got %s", roundTripped.PrimaryEmotion)
	}
	if !roundTripped.Timestamp.Equal(entry.Timestamp) {
		t.Fatalf("expected timestamp to round trip, got %v vs %v", roundTripped.Timestamp, entry.Timestamp)
	}
	if roundTripped.SignificanceTier != entry.SignificanceTier {
		t.Fatalf("expected significance tier to round trip, got %s", roundTripped.SignificanceTier)
	}
	if len(roundTripped.EmotionalTrajectory) != len(entry.EmotionalTrajectory) {
		t.Fatalf("expected trajectory to round trip, got %v vs %v", roundTripped.EmotionalTrajectory, entry.EmotionalTrajectory)
	}
	for i, e := range entry.EmotionalTrajectory {
		if roundTripped.EmotionalTrajectory[i] != e {
			t.Fatalf("expected trajectory[%d]=%s, got %s", i, e, roundTripped.EmotionalTrajectory[i])
		}
	}
}

func TestTrajectoryStringRoundTrip(t *testing.T) {
	trajectory := []memory.Emotion{memory.EmotionNeutral, memory.EmotionSadness, memory.EmotionJoy}
	if got := trajectoryFromString(trajectoryToString(trajectory)); len(got) != len(trajectory) {
		t.Fatalf("expected %d entries, got %d", len(trajectory), len(got))
	}
}

func TestTrajectoryFromStringEmpty(t *testing.T) {
	if got := trajectoryFromString(""); got != nil {
		t.Fatalf("expected nil for empty trajectory string, got %v", got)
	}
}

func TestPayloadToEntryNilPayload(t *testing.T) {
	if _, ok := payloadToEntry(nil); ok {
		t.Fatalf("expected nil payload to fail")
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	vec := []float32{0.6, 0.8}
	if got := cosineSimilarity(vec, vec); got < 0.999 {
		t.Fatalf("expected ~1 for identical vectors, got %v", got)
	}
}

func TestCosineSimilarityMismatchedLength(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Fatalf("expected 0 for mismatched lengths, got %v", got)
	}
}
