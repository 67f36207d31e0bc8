package workers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/taskqueue"
)

// historyWindow is how many trailing turns the post-conversation
// capabilities pull to build their LLM prompts from (§4.3 names no fixed
// number; 50 mirrors the teacher's "bounded recent window" sizing used
// elsewhere in this module for cognition jobs).
const historyWindow = 50

// minExtractableChars is "combined text >= 30 chars" from §4.3's
// run_batch_knowledge_extraction filter.
const minExtractableChars = 30

// maxFactsPerRun bounds how many individual fact entries one extraction
// run writes, so a verbose LLM response can't flood the index.
const maxFactsPerRun = 10

func userTurnsOnly(history []memory.Entry) string {
	var b strings.Builder
	for _, e := range history {
		if e.Role != memory.RoleUser {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Content)
	}
	return b.String()
}

// handleExtractBatchKnowledge implements run_batch_knowledge_extraction:
// the LLM extracts stable user facts from the concatenation of human
// messages, filtered on combined length, one memory entry per fact
// (§4.3).
func (wk *Workers) handleExtractBatchKnowledge(ctx context.Context, job *taskqueue.Job) error {
	var p sessionPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	combined := userTurnsOnly(history)
	if len(combined) < minExtractableChars {
		return nil
	}

	raw, err := wk.LLM.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "Extract stable, durable facts about the user from their messages. Respond with one fact per line, no numbering, no commentary. If nothing durable stands out, respond with an empty line."},
		{Role: "user", Content: combined},
	}, 400, 0.2)
	if err != nil {
		return err
	}

	facts := nonEmptyLines(raw)
	if len(facts) > maxFactsPerRun {
		facts = facts[:maxFactsPerRun]
	}
	for _, fact := range facts {
		meta := map[string]string{"memory_type": string(memory.EntryFact), "session_id": p.SessionID}
		if err := wk.Memory.StoreConversation(ctx, p.UserID, "", fact, p.ChannelID, nil, meta); err != nil {
			return err
		}
	}
	return nil
}

func nonEmptyLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// handleExtractPreferences implements run_batch_preference_extraction: the
// LLM is asked for a bounded JSON object of preference key/value pairs,
// each applied through update_preference (§4.3, §4.4).
func (wk *Workers) handleExtractPreferences(ctx context.Context, job *taskqueue.Job) error {
	var p sessionPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	combined := userTurnsOnly(history)
	if combined == "" {
		return nil
	}

	raw, err := wk.LLM.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "Infer the user's stated preferences (nickname, communication style, topics to avoid, etc). Respond ONLY with a flat JSON object of string keys to string values. Respond {} if none are evident."},
		{Role: "user", Content: combined},
	}, 300, 0.2)
	if err != nil {
		return err
	}

	prefs := parsePreferenceObject(raw)
	for key, value := range prefs {
		if key == "" || value == "" {
			continue
		}
		if err := wk.Trust.UpdatePreference(ctx, p.UserID, wk.BotName, key, value); err != nil {
			return err
		}
	}
	return nil
}

// parsePreferenceObject tolerates a fenced code block around the JSON
// object, per §7's "Planner/LLM JSON malformed" error kind: strip fences,
// then unmarshal; a parse failure yields no preferences rather than an
// error, since a missed extraction is never fatal to the job.
func parsePreferenceObject(raw string) map[string]string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var prefs map[string]string
	if err := json.Unmarshal([]byte(trimmed), &prefs); err != nil {
		return nil
	}
	return prefs
}

// handleUpdateGoals implements run_batch_goal_analysis: a short
// goal-progress note derived from the session's human turns, recorded as
// an insight since the domain model has no dedicated goal store (§4.3).
func (wk *Workers) handleUpdateGoals(ctx context.Context, job *taskqueue.Job) error {
	var p sessionPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	combined := userTurnsOnly(history)
	if combined == "" {
		return nil
	}

	note, err := wk.LLM.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "Note any goal or ambition the user mentioned working toward, and how their progress reads from this conversation, in one sentence. If none, respond with an empty line."},
		{Role: "user", Content: combined},
	}, 150, 0.3)
	if err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil
	}
	return wk.Trust.AppendInsight(ctx, p.UserID, wk.BotName, "goal: "+note)
}

// handleSummarizeSession implements run_summarization: the extractive,
// centrality-scored summary the Memory Store already knows how to build,
// persisted as its own memory entry (§4.3, §4.1).
func (wk *Workers) handleSummarizeSession(ctx context.Context, job *taskqueue.Job) error {
	var p sessionPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	summary, err := wk.Memory.GetConversationSummaryWithRecommendations(ctx, p.UserID, history, historyWindow)
	if err != nil {
		return err
	}
	if summary.TopicSummary == "" {
		return nil
	}

	meta := map[string]string{"memory_type": string(memory.EntrySummary), "session_id": p.SessionID}
	return wk.Memory.StoreConversation(ctx, p.UserID, "", summary.TopicSummary, p.ChannelID, nil, meta)
}

// handleReflect implements run_reflection: a higher-level pattern the LLM
// notices across the user's recent history, deduped by (user_id, bot) at
// enqueue time rather than by session (§4.3).
func (wk *Workers) handleReflect(ctx context.Context, job *taskqueue.Job) error {
	var p reflectPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	combined := userTurnsOnly(history)
	if combined == "" {
		return nil
	}

	insight, err := wk.LLM.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "Reflect on this user's recent messages as a whole. Name one recurring pattern in how they communicate or what they care about, in one sentence."},
		{Role: "user", Content: combined},
	}, 150, 0.4)
	if err != nil {
		return err
	}
	insight = strings.TrimSpace(insight)
	if insight == "" {
		return nil
	}
	return wk.Trust.AppendInsight(ctx, p.UserID, wk.BotName, insight)
}

// handleRunInsightAnalysis implements run_insight_analysis: throttled via
// the job-id dedup key session.dispatchPipeline computes from (user_id,
// bot, trigger), an even higher-level pass than run_reflection (§4.3).
func (wk *Workers) handleRunInsightAnalysis(ctx context.Context, job *taskqueue.Job) error {
	var p insightPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	combined := userTurnsOnly(history)
	if combined == "" {
		return nil
	}

	insight, err := wk.LLM.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "Given this user's recent conversation, state the single most useful thing to remember about them going forward, in one sentence."},
		{Role: "user", Content: combined},
	}, 150, 0.3)
	if err != nil {
		return err
	}
	insight = strings.TrimSpace(insight)
	if insight == "" {
		return nil
	}
	return wk.Trust.AppendInsight(ctx, p.UserID, wk.BotName, insight)
}

// handleRunGraphEnrichment implements run_graph_enrichment: optional,
// only dispatched once a session crosses graphEnrichmentThreshold
// messages (session.dispatchGraphEnrichment). Best-effort: any other
// people or entities the user referenced, recorded as a fact tagged for
// later relationship-graph use.
func (wk *Workers) handleRunGraphEnrichment(ctx context.Context, job *taskqueue.Job) error {
	var p enrichmentPayload
	if err := decode(job.Payload, &p); err != nil {
		return err
	}
	if p.UserID == "" {
		return nil
	}

	history, err := wk.Memory.GetConversationHistory(ctx, p.UserID, historyWindow)
	if err != nil {
		return err
	}
	combined := userTurnsOnly(history)
	if combined == "" {
		return nil
	}

	raw, err := wk.LLM.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "List any other people, places, or recurring entities the user mentioned and how they relate to the user, one per line. If none, respond with an empty line."},
		{Role: "user", Content: combined},
	}, 300, 0.2)
	if err != nil {
		return err
	}

	for _, line := range nonEmptyLines(raw) {
		meta := map[string]string{
			"memory_type": string(memory.EntryFact),
			"session_id":  p.SessionID,
			"enrichment":  "graph",
		}
		if p.ServerID != "" {
			meta["server_id"] = p.ServerID
		}
		if err := wk.Memory.StoreConversation(ctx, p.UserID, "", line, p.ChannelID, nil, meta); err != nil {
			return err
		}
	}
	return nil
}
