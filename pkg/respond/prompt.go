package respond

import (
	"fmt"
	"strings"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/memory"
)

// defaultMaxTokens and defaultTemperature are the single hot-path
// ChatCompletion call's sampling parameters; a character definition could
// override these, but no such affordance is named in §4.9, so they're
// fixed constants here.
const (
	defaultMaxTokens   = 600
	defaultTemperature = 0.8
)

// buildPrompt assembles persona + fan-out context + conversation history
// into the single chat-completion request (§2's "Session Worker...
// calls LLM").
func buildPrompt(persona Persona, rc replyContext, history []adapters.ChatMessage, goalNote, userMessage string) []adapters.ChatMessage {
	var sys strings.Builder
	sys.WriteString(persona.SystemPrompt)

	if rc.Nickname != "" {
		fmt.Fprintf(&sys, "\nThe user prefers to be called %s.", rc.Nickname)
	}
	if rc.Summary.TopicSummary != "" {
		fmt.Fprintf(&sys, "\nConversation so far: %s", rc.Summary.TopicSummary)
	}
	for _, m := range rc.Memories {
		fmt.Fprintf(&sys, "\nRelevant memory: %s", m.Entry.Content)
	}
	for _, f := range rc.Facts {
		fmt.Fprintf(&sys, "\nKnown fact about yourself: %s", f.Entry.Content)
	}
	for _, g := range rc.Gossip {
		fmt.Fprintf(&sys, "\nYou heard from another bot: %s", g.Entry.Content)
	}
	if goalNote != "" {
		fmt.Fprintf(&sys, "\n%s", goalNote)
	}

	messages := []adapters.ChatMessage{{Role: "system", Content: sys.String()}}
	messages = append(messages, history...)
	if userMessage != "" {
		messages = append(messages, adapters.ChatMessage{Role: "user", Content: userMessage})
	}
	return messages
}

// chatHistoryFrom converts the Memory Store's ordered conversation
// history into chat messages, oldest first.
func chatHistoryFrom(entries []memory.Entry) []adapters.ChatMessage {
	out := make([]adapters.ChatMessage, 0, len(entries))
	for _, e := range entries {
		role := "user"
		if e.Role == memory.RoleBot {
			role = "assistant"
		}
		out = append(out, adapters.ChatMessage{Role: role, Content: e.Content})
	}
	return out
}

// chatHistoryFromInbound converts a reconstructed inbound-message window
// (used by the daily-life reply path, which has no stored Memory
// entries to read back) into chat messages, oldest first.
func chatHistoryFromInbound(botName string, msgs []adapters.InboundMessage) []adapters.ChatMessage {
	out := make([]adapters.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.AuthorIsBot && m.AuthorName == botName {
			role = "assistant"
		}
		out = append(out, adapters.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}
