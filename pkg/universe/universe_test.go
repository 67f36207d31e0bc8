package universe

import (
	"context"
	"testing"
)

func TestDetectEmotionalSpike(t *testing.T) {
	evt, ok := Detect("user-1", "aria", "I'm so happy about this!")
	if !ok {
		t.Fatal("expected emotional spike to be detected")
	}
	if evt.EventType != EventEmotionalSpike {
		t.Errorf("expected emotional_spike event type, got %s", evt.EventType)
	}
}

func TestDetectLifeUpdate(t *testing.T) {
	evt, ok := Detect("user-1", "aria", "I just moved to a new city")
	if !ok {
		t.Fatal("expected life update to be detected")
	}
	if evt.EventType != EventUserUpdate || evt.Topic != "move" {
		t.Errorf("expected user_update/move, got %s/%s", evt.EventType, evt.Topic)
	}
}

func TestDetectNoSignalReturnsFalse(t *testing.T) {
	_, ok := Detect("user-1", "aria", "what time is the meeting")
	if ok {
		t.Fatal("expected no detection for a plain informational message")
	}
}

func TestIsSensitiveBlocksNamedTopics(t *testing.T) {
	for _, topic := range []string{"health", "finance", "relationship", "legal", "secrecy"} {
		if !IsSensitive(topic, "") {
			t.Errorf("expected %q to be sensitive", topic)
		}
	}
	if IsSensitive("mood", "just had a great day") {
		t.Error("expected mood to not be sensitive")
	}
}

func TestIsSensitiveScansSummaryToo(t *testing.T) {
	if !IsSensitive("negative_emotion", "seems to be going through a tough time after a diagnosis") {
		t.Error("expected a sensitive keyword in the summary alone to block publication")
	}
}

func TestDetectHealthLifeUpdateIsSensitive(t *testing.T) {
	evt, ok := Detect("user-1", "aria", "I just got diagnosed with something serious.")
	if !ok {
		t.Fatal("expected the diagnosis message to produce a detectable event")
	}
	if evt.Topic != "health" {
		t.Errorf("expected topic=health, got %q", evt.Topic)
	}
	if !IsSensitive(evt.Topic, evt.Summary) {
		t.Error("expected the health life update to be blocked as sensitive")
	}
}

func TestBusPublishDropsSensitiveTopic(t *testing.T) {
	bus := NewBus(true, nil, nil)
	evt := Event{EventType: EventUserUpdate, UserID: "u1", SourceBot: "aria", Topic: "health"}
	if evt.PropagationDepth > maxPropagationDepth {
		t.Fatal("test event should not exceed propagation depth")
	}
	if !IsSensitive(evt.Topic, evt.Summary) {
		t.Fatal("expected health topic to be sensitive for this test")
	}
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("expected sensitive-topic drop to return nil, got %v", err)
	}
}

func TestBusPublishDropsDeepPropagation(t *testing.T) {
	bus := NewBus(true, nil, nil)
	evt := Event{EventType: EventUserUpdate, UserID: "u1", SourceBot: "aria", Topic: "mood", PropagationDepth: 2}
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("expected deep-propagation drop to return nil, got %v", err)
	}
}

func TestBusPublishDisabledNeverEnqueues(t *testing.T) {
	bus := NewBus(false, nil, nil)
	evt := Event{EventType: EventUserUpdate, UserID: "u1", SourceBot: "aria", Topic: "mood"}
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("expected disabled bus to no-op without error, got %v", err)
	}
}
