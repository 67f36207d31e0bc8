package respond

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/artifacts"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/retrieval"
	"github.com/whisperengine/core/pkg/memory/selfmemory"
	"github.com/whisperengine/core/pkg/session"
	"github.com/whisperengine/core/pkg/trust"
	"github.com/whisperengine/core/pkg/universe"
)

// Engine ties the retrieval pipeline, memory store, trust manager,
// session tracker and universe bus into the single hot-path entry point
// every inbound direct message and every daily-life reply plan goes
// through (§2's "Session Worker consumes stored turns and calls LLM").
type Engine struct {
	Persona Persona

	Messaging adapters.Messaging
	LLM       adapters.LLM
	Memory    memory.Store
	Self      *selfmemory.Namespace
	Pipeline  *retrieval.Pipeline
	Trust     *trust.Manager
	Sessions  *session.Tracker
	Universe  *universe.Bus
	Artifacts *artifacts.Registry
	Privacy   PrivacyConfig
	Moderation ModerationChecker

	Log zerolog.Logger
}

// turnCounter is a tiny, unexported process-wide counter, shared by every
// user and every Engine, used only to cycle
// through cold/error scripted lines so repeated timeouts or errors don't
// always return the exact same sentence; it never needs persistence.
var turnCounter int

func nextTurn() int {
	turnCounter++
	return turnCounter
}

// HandleMessage is the direct-message hot path: gate, retrieve, call the
// LLM, chunk and send, store, then fire the post-reply hooks.
func (e *Engine) HandleMessage(ctx context.Context, msg adapters.InboundMessage) error {
	outcome, err := runGate(ctx, msg, e.Privacy, e.Moderation)
	if err != nil {
		e.Log.Warn().Err(err).Msg("moderation check failed, proceeding as if clear")
	}

	switch outcome {
	case gateSuppressed, gateInvalid:
		return nil
	case gateModerationCold:
		return e.Messaging.SendChunks(ctx, msg.ChannelID, []string{e.Persona.coldResponse(nextTurn())}, msg.ID)
	}

	reply, hint, err := e.respondTo(ctx, msg.AuthorID, msg.ChannelID, msg.Content, nil, "")
	if err != nil {
		e.Log.Error().Err(err).Str("user_id", msg.AuthorID).Msg("response hot path failed")
		return e.Messaging.SendChunks(ctx, msg.ChannelID, []string{e.Persona.errorResponse(nextTurn())}, msg.ID)
	}

	reply = e.appendPendingArtifacts(ctx, msg.AuthorID, reply)

	if err := e.Messaging.SendChunks(ctx, msg.ChannelID, adapters.Chunk(reply), msg.ID); err != nil {
		return err
	}

	// Retrieval always runs before the store write, by design, to avoid
	// echoing the turn that's still being answered (§5 ordering
	// guarantee). The write and every hook below run best-effort after
	// the reply is already on the wire.
	if err := e.Memory.StoreConversation(ctx, msg.AuthorID, msg.Content, reply, msg.ChannelID, hint, map[string]string{"memory_type": string(memory.EntryConversation)}); err != nil {
		e.Log.Warn().Err(err).Msg("store_conversation failed")
	}
	if e.Sessions != nil {
		if err := e.Sessions.RecordTurn(ctx, msg.AuthorID, msg.ChannelID, msg.GuildID, time.Now()); err != nil {
			e.Log.Warn().Err(err).Msg("session record_turn failed")
		}
	}

	e.applyHotPathTrust(ctx, msg.AuthorID, msg.Content)
	e.publishUniverseSignal(ctx, msg.AuthorID, msg.Content)

	return nil
}

// Respond implements dailylife.ResponseGraph: the daily-life loop's
// reply plan reconstructs chat history itself and passes it in, along
// with an internal-goal note, instead of a single InboundMessage.
func (e *Engine) Respond(ctx context.Context, channelID string, history []adapters.InboundMessage, goalNote string) (string, error) {
	userID, query := lastHumanTurn(e.Persona.BotName, history)
	reply, _, err := e.respondTo(ctx, userID, channelID, query, chatHistoryFromInbound(e.Persona.BotName, history), goalNote)
	return reply, err
}

// Thought implements dailylife.CreativeThought: a short in-character
// thought about a topic, no retrieval fan-out, no channel context.
func (e *Engine) Thought(ctx context.Context, topic string) (string, error) {
	messages := []adapters.ChatMessage{
		{Role: "system", Content: e.Persona.SystemPrompt},
		{Role: "user", Content: "Share a brief, in-character thought about " + topic + "."},
	}
	return e.LLM.ChatCompletion(ctx, messages, defaultMaxTokens, defaultTemperature)
}

// respondTo runs the shared fan-out + prompt + chat-completion sequence
// used by both HandleMessage and Respond. explicitHistory, when non-nil,
// replaces the Memory Store history lookup (the daily-life path has no
// stored turns for the channel it's reacting to).
func (e *Engine) respondTo(ctx context.Context, userID, channelID, query string, explicitHistory []adapters.ChatMessage, goalNote string) (string, *memory.Emotion, error) {
	var hint *memory.Emotion
	if label, ok := memory.DetectEmotionKeyword(query); ok {
		hint = &label
	}

	rc := gatherContext(ctx, e.Pipeline, e.Memory, e.Self, e.Trust, userID, e.Persona.BotName, query, hint)

	history := explicitHistory
	if history == nil {
		history = chatHistoryFrom(rc.History)
	}

	messages := buildPrompt(e.Persona, rc, history, goalNote, query)
	reply, err := e.LLM.ChatCompletion(ctx, messages, defaultMaxTokens, defaultTemperature)
	if err != nil {
		return "", hint, err
	}
	return reply, hint, nil
}

// appendPendingArtifacts claims any files or images a tool produced for
// userID earlier in the turn (§4.9, §6) and appends them to the reply as
// plain links, since adapters.Messaging only carries chunked text — there
// is no structured attachment channel to push them through separately.
func (e *Engine) appendPendingArtifacts(ctx context.Context, userID, reply string) string {
	if e.Artifacts == nil {
		return reply
	}
	pending, err := e.Artifacts.PopAll(ctx, userID)
	if err != nil {
		e.Log.Warn().Err(err).Msg("pop pending artifacts failed")
		return reply
	}
	if len(pending) == 0 {
		return reply
	}
	var b strings.Builder
	b.WriteString(reply)
	for _, a := range pending {
		b.WriteString("\n")
		b.WriteString(a.URL)
	}
	return b.String()
}

// applyHotPathTrust fires the hot-path trust deltas named in §4.4: a
// baseline positive_turn credit for every completed reply, or a
// vulnerability/boundary-violation override when the turn matches a
// rule-based signal. Best-effort: a failure here never blocks a reply
// that has already been sent.
func (e *Engine) applyHotPathTrust(ctx context.Context, userID, turn string) {
	if e.Trust == nil {
		return
	}
	kind := trust.EventPositiveTurn
	switch classifyTrustSignal(turn) {
	case signalVulnerability:
		kind = trust.EventVulnerabilityMoment
	case signalBoundaryViolation:
		kind = trust.EventBoundaryViolation
	}
	if _, _, err := e.Trust.UpdateTrust(ctx, userID, e.Persona.BotName, kind); err != nil {
		e.Log.Warn().Err(err).Msg("hot path trust update failed")
	}
}

// publishUniverseSignal runs the rule-based detector on the user's turn
// and publishes through the gossip bus if it fired — "invoked from the
// response hot path" per §2's data flow, always after the reply is
// already sent so gossip publication never delays one.
func (e *Engine) publishUniverseSignal(ctx context.Context, userID, turn string) {
	if e.Universe == nil {
		return
	}
	evt, ok := universe.Detect(userID, e.Persona.BotName, turn)
	if !ok {
		return
	}
	if err := e.Universe.Publish(ctx, evt); err != nil {
		e.Log.Warn().Err(err).Msg("universe publish failed")
	}
}

// lastHumanTurn finds the most recent non-bot message in a reconstructed
// history window, for the daily-life reply path which has no single
// triggering InboundMessage of its own.
func lastHumanTurn(botName string, history []adapters.InboundMessage) (userID, content string) {
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m.AuthorIsBot {
			continue
		}
		return m.AuthorID, m.Content
	}
	return "", ""
}
