package openaiadapter

import (
	"testing"

	"github.com/whisperengine/core/pkg/adapters"
)

func TestToOpenAIMessagesMapsRoles(t *testing.T) {
	msgs := toOpenAIMessages([]adapters.ChatMessage{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "unknown", Content: "fallback to user"},
	})
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
}

func TestToOpenAIToolsPreservesNameAndDescription(t *testing.T) {
	tools := toOpenAITools([]adapters.ToolSpec{
		{Name: "lookup", Description: "look something up", Parameters: map[string]any{"type": "object"}},
	})
	if len(tools) != 1 || tools[0].OfFunction == nil {
		t.Fatalf("expected one function tool, got %+v", tools)
	}
	if tools[0].OfFunction.Name != "lookup" {
		t.Fatalf("expected name lookup, got %q", tools[0].OfFunction.Name)
	}
}
