package dailylife

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/trust"
)

// postProbability is the per-tick dice roll an eligible quiet channel must
// win before a post plan fires (§4.5: "with probability 0.1 per tick").
const postProbability = 0.1

// defaultPostCooldown is how long a channel must stay quiet before it's
// eligible for an autonomous post, absent configuration (§4.5).
const defaultPostCooldown = 10 * time.Minute

// Flags mirrors the autonomy sub-switches the plan stage must re-check
// after the planner LLM responds, so a misbehaving model can never force
// an action the operator disabled.
type Flags struct {
	EnableReplies   bool
	EnableReactions bool
	EnablePosting   bool
	PostCooldown    time.Duration
}

// Plan is one candidate action the worker-side plan stage proposes,
// before execute turns it into an adapters.ActionCommand.
type Plan struct {
	ActionType adapters.ActionType
	ChannelID  string
	TargetID   string
	AuthorID   string
	Emoji      string
	Reason     string
}

// plannerResponse is the bounded JSON shape the planner LLM is asked to
// return (§4.5: "expects a bounded JSON list of plans").
type plannerResponse struct {
	Plans []struct {
		Action    string `json:"action"`
		ChannelID string `json:"channel_id"`
		TargetID  string `json:"target_id"`
		AuthorID  string `json:"author_id"`
		Emoji     string `json:"emoji"`
		Reason    string `json:"reason"`
	} `json:"plans"`
}

// PlanContext carries everything the planner LLM prompt references:
// relationship levels and known facts per candidate author.
type PlanContext struct {
	Relationships map[string]trust.Relationship
	KnownFacts    map[string][]string
}

// Plan chooses among {reply, react, ignore, post} for a scored snapshot,
// calling the planner LLM once and re-enforcing the autonomy flags on its
// output, then layering in the independent post-eligibility check.
func Plan(ctx context.Context, llm adapters.LLM, scored []ScoredMessage, planCtx PlanContext, flags Flags, activity *ActivityMonitor, quietChannels []string, now time.Time) ([]Plan, error) {
	var plans []Plan

	if len(scored) > 0 && (flags.EnableReplies || flags.EnableReactions) {
		messages := buildPlannerPrompt(scored, planCtx)
		raw, err := llm.ChatCompletion(ctx, messages, 512, 0.4)
		if err != nil {
			return nil, err
		}
		parsed := parsePlannerResponse(raw)
		for _, p := range parsed.Plans {
			switch adapters.ActionType(p.Action) {
			case adapters.ActionReply:
				if !flags.EnableReplies {
					continue
				}
			case adapters.ActionReact:
				if !flags.EnableReactions {
					continue
				}
			default:
				continue
			}
			plans = append(plans, Plan{
				ActionType: adapters.ActionType(p.Action),
				ChannelID:  p.ChannelID,
				TargetID:   p.TargetID,
				AuthorID:   p.AuthorID,
				Emoji:      p.Emoji,
				Reason:     p.Reason,
			})
		}
	}

	if flags.EnablePosting && len(plans) == 0 {
		cooldown := flags.PostCooldown
		if cooldown <= 0 {
			cooldown = defaultPostCooldown
		}
		for _, channelID := range quietChannels {
			if !activity.QuietFor(channelID, now, cooldown) {
				continue
			}
			if rand.Float64() >= postProbability {
				continue
			}
			plans = append(plans, Plan{
				ActionType: adapters.ActionPost,
				ChannelID:  channelID,
				Reason:     "quiet-channel-post",
			})
			break
		}
	}

	return plans, nil
}

func buildPlannerPrompt(scored []ScoredMessage, planCtx PlanContext) []adapters.ChatMessage {
	system := "You decide whether to reply, react, or ignore recent channel messages. " +
		"Respond ONLY with JSON: {\"plans\":[{\"action\":\"reply|react|ignore\",\"channel_id\":...,\"target_id\":...,\"author_id\":...,\"emoji\":...,\"reason\":...}]}."

	body := ""
	for _, s := range scored {
		rel := planCtx.Relationships[s.Message.AuthorID]
		facts := planCtx.KnownFacts[s.Message.AuthorID]
		body += fmt.Sprintf("message %s from %s (relationship: %s, known facts: %v): %q\n",
			s.Message.ID, s.Message.AuthorName, rel.Level.Label(), facts, s.Message.Content)
	}

	return []adapters.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: body},
	}
}

func parsePlannerResponse(raw string) plannerResponse {
	var parsed plannerResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return plannerResponse{}
	}
	return parsed
}
