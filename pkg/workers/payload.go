package workers

import "encoding/json"

// sessionPayload is the common shape every session-scoped post-conversation
// capability is enqueued with (session.dispatchPipeline): user_id plus the
// session_id it was deduped against. channel_id is only ever present on the
// legacy per-participant extraction poller.afterReply enqueues directly, so
// it's read opportunistically rather than required.
type sessionPayload struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	ChannelID string `json:"channel_id"`
}

// insightPayload is run_insight_analysis's shape (session.dispatchPipeline).
type insightPayload struct {
	UserID   string `json:"user_id"`
	Trigger  string `json:"trigger"`
	Priority string `json:"priority"`
}

// enrichmentPayload is run_graph_enrichment's shape
// (session.dispatchGraphEnrichment): session_id, user_id, channel_id,
// server_id per §4.3's signature. bot is carried natively on
// taskqueue.Job.BotName rather than duplicated into the JSON payload.
type enrichmentPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	ServerID  string `json:"server_id"`
}

// reflectPayload is run_reflection's shape (session.dispatchPipeline).
type reflectPayload struct {
	UserID string `json:"user_id"`
}

// immediateTriggerPayload is trigger_immediate's shape (scheduler.flushImmediate).
type immediateTriggerPayload struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	AuthorID  string `json:"author_id"`
	Reason    string `json:"reason"`
}

// reverieTriggerPayload is run_reverie_cycle's shape (scheduler.checkIdle).
type reverieTriggerPayload struct {
	BotName string `json:"bot_name"`
}

func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
