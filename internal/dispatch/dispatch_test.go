package dispatch

import (
	"context"
	"testing"

	"github.com/whisperengine/core/pkg/adapters"
)

func TestMentionsBot(t *testing.T) {
	d := &Dispatcher{BotName: "aria"}
	if !d.mentionsBot(adapters.InboundMessage{Mentions: []string{"aria"}}) {
		t.Fatal("expected mention match")
	}
	if d.mentionsBot(adapters.InboundMessage{Mentions: []string{"someone-else"}}) {
		t.Fatal("expected no match")
	}
}

func TestRepliesToBot(t *testing.T) {
	d := &Dispatcher{BotName: "aria"}
	if !d.repliesToBot(adapters.InboundMessage{Reference: &adapters.Reference{AuthorID: "aria"}}) {
		t.Fatal("expected reply match")
	}
	if d.repliesToBot(adapters.InboundMessage{Reference: &adapters.Reference{AuthorID: "someone-else"}}) {
		t.Fatal("expected no match")
	}
	if d.repliesToBot(adapters.InboundMessage{}) {
		t.Fatal("expected no match with no reference")
	}
}

func TestHandleInboundNoopsWithNoWiring(t *testing.T) {
	d := &Dispatcher{BotName: "aria"}
	if err := d.HandleInbound(context.Background(), adapters.InboundMessage{
		AuthorID:  "u1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "hello",
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestHandleInboundSkipsBotAuthors(t *testing.T) {
	d := &Dispatcher{BotName: "aria"}
	if err := d.HandleInbound(context.Background(), adapters.InboundMessage{
		AuthorID:    "other-bot",
		AuthorIsBot: true,
		ChannelID:   "c1",
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
