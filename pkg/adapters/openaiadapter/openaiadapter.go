// Package openaiadapter implements pkg/adapters.LLM against an
// OpenAI-compatible Chat Completions endpoint, grounded on the teacher's
// OpenAIProvider (pkg/connector/provider_openai.go): same client
// construction (API key plus optional base URL for OpenRouter-style
// proxies), same fall-back-to-Chat-Completions request shape, trimmed to
// the narrow ChatCompletion/ChatCompletionWithTools contract this module
// needs instead of the teacher's full streaming Responses API surface.
package openaiadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/whisperengine/core/pkg/adapters"
)

// Client implements adapters.LLM over OpenAI's Chat Completions API.
type Client struct {
	client openai.Client
	model  string
}

// New builds a Client. baseURL overrides the default OpenAI endpoint for
// OpenRouter or another Chat-Completions-compatible proxy; empty keeps
// the default.
func New(apiKey, baseURL, model string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{client: openai.NewClient(opts...), model: model}
}

func toOpenAIMessages(messages []adapters.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// ChatCompletion implements adapters.LLM.
func (c *Client) ChatCompletion(ctx context.Context, messages []adapters.ChatMessage, maxTokens int, temperature float64) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	}
	if maxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}
	if temperature > 0 {
		req.Temperature = openai.Float(temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openaiadapter: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatCompletionWithTools implements adapters.LLM. Tool results surface as
// ToolCalls the caller must run; a plain text response has no tool calls.
func (c *Client) ChatCompletionWithTools(ctx context.Context, messages []adapters.ChatMessage, tools []adapters.ToolSpec, maxTokens int, temperature float64) (adapters.ToolCompletion, error) {
	req := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
	}
	if maxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}
	if temperature > 0 {
		req.Temperature = openai.Float(temperature)
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return adapters.ToolCompletion{}, fmt.Errorf("openaiadapter: chat completion with tools: %w", err)
	}
	if len(resp.Choices) == 0 {
		return adapters.ToolCompletion{}, nil
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return adapters.ToolCompletion{Text: msg.Content}, nil
	}

	calls := make([]adapters.ToolCall, len(msg.ToolCalls))
	for i, tc := range msg.ToolCalls {
		calls[i] = adapters.ToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments}
	}
	return adapters.ToolCompletion{ToolCalls: calls}, nil
}

func toOpenAITools(tools []adapters.ToolSpec) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		params, _ := json.Marshal(t.Parameters)
		var schema map[string]any
		_ = json.Unmarshal(params, &schema)
		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  schema,
				},
			},
		})
	}
	return out
}
