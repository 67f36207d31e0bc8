// Package devadapter provides an in-memory, logging-only implementation of
// pkg/adapters.Messaging and pkg/adapters.LLM for local development and
// tests, the way the teacher's modules/simple offers a minimal reference
// module with no external dependencies.
package devadapter

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
)

// SentMessage records one SendChunks call for test assertions.
type SentMessage struct {
	ChannelID string
	Chunks    []string
	ReplyToID string
}

// Messaging is an in-memory adapters.Messaging that records everything
// sent instead of calling a real gateway.
type Messaging struct {
	log zerolog.Logger

	mu        sync.Mutex
	Sent      []SentMessage
	Actions   []adapters.ActionCommand
	Channels  []string
	ChannelLog map[string][]adapters.InboundMessage
}

// New builds a Messaging double bound to the given logger.
func New(log zerolog.Logger) *Messaging {
	return &Messaging{
		log:        log.With().Str("component", "devadapter").Logger(),
		ChannelLog: make(map[string][]adapters.InboundMessage),
	}
}

// SeedChannel preloads a channel's message history, newest last, so tests
// can exercise snapshot-building and history reconstruction.
func (m *Messaging) SeedChannel(channelID string, messages []adapters.InboundMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelLog[channelID] = messages
	for _, existing := range m.Channels {
		if existing == channelID {
			return
		}
	}
	m.Channels = append(m.Channels, channelID)
}

func (m *Messaging) SendChunks(ctx context.Context, channelID string, chunks []string, replyToID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentMessage{ChannelID: channelID, Chunks: chunks, ReplyToID: replyToID})
	m.log.Debug().Str("channel_id", channelID).Int("chunks", len(chunks)).Msg("dev adapter sent chunks")
	return nil
}

func (m *Messaging) Execute(ctx context.Context, cmd adapters.ActionCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, cmd)
	m.log.Debug().Str("channel_id", cmd.ChannelID).Str("action_type", string(cmd.ActionType)).Msg("dev adapter executed action")
	return nil
}

func (m *Messaging) RecentMessages(ctx context.Context, channelID string, limit int) ([]adapters.InboundMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.ChannelLog[channelID]
	if limit <= 0 || limit >= len(history) {
		out := make([]adapters.InboundMessage, len(history))
		copy(out, history)
		return out, nil
	}
	out := make([]adapters.InboundMessage, limit)
	copy(out, history[len(history)-limit:])
	return out, nil
}

func (m *Messaging) ReadableChannels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Channels))
	copy(out, m.Channels)
	return out, nil
}

// LLM is a canned-response adapters.LLM for tests that never calls out to
// a real provider.
type LLM struct {
	Response string
}

// NewLLM builds an LLM double that always returns the given response.
func NewLLM(response string) *LLM {
	return &LLM{Response: response}
}

func (l *LLM) ChatCompletion(ctx context.Context, messages []adapters.ChatMessage, maxTokens int, temperature float64) (string, error) {
	return l.Response, nil
}

func (l *LLM) ChatCompletionWithTools(ctx context.Context, messages []adapters.ChatMessage, tools []adapters.ToolSpec, maxTokens int, temperature float64) (adapters.ToolCompletion, error) {
	return adapters.ToolCompletion{Text: l.Response}, nil
}
