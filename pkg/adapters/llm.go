package adapters

import "context"

// ChatMessage is one turn in an LLM chat completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// ToolCall is a single tool invocation the model requested.
type ToolCall struct {
	Name      string
	Arguments string
}

// ToolResult is what comes back from running a ToolCall, for continuing a
// tool-enabled completion.
type ToolResult struct {
	Name    string
	Content string
}

// ToolSpec describes one callable tool available to a tool-enabled
// completion, by name and a JSON-schema-shaped argument description.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCompletion is the result of a tool-enabled chat completion: either a
// final text response, or a batch of tool calls the caller must run and
// feed back in.
type ToolCompletion struct {
	Text      string
	ToolCalls []ToolCall
}

// LLM is the narrow chat-completion contract every reply-path and
// background-job component depends on, per §4.9.
type LLM interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, error)
	ChatCompletionWithTools(ctx context.Context, messages []ChatMessage, tools []ToolSpec, maxTokens int, temperature float64) (ToolCompletion, error)
}
