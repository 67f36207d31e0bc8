package dailylife

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/whisperengine/core/pkg/adapters"
)

// historyDepth is how many trailing messages execute reconstructs for a
// reply plan, per §4.5 ("reconstruct the last ~10-message chat history").
const historyDepth = 10

// ResponseGraph is the same main response pipeline direct messages go
// through, invoked here with an extra internal-goal note explaining why
// the bot decided to reply on its own (§4.5).
type ResponseGraph interface {
	Respond(ctx context.Context, channelID string, history []adapters.InboundMessage, goalNote string) (string, error)
}

// CreativeThought asks the creative LLM for a short in-character post
// about a topic, for the `post` action.
type CreativeThought interface {
	Thought(ctx context.Context, topic string) (string, error)
}

// Execute turns a plan list into action commands, calling back into the
// main response graph for replies and the creative LLM for posts; react
// plans never touch an LLM.
func Execute(ctx context.Context, plans []Plan, messaging adapters.Messaging, graph ResponseGraph, creative CreativeThought, character Character) ([]adapters.ActionCommand, error) {
	var commands []adapters.ActionCommand

	for _, plan := range plans {
		switch plan.ActionType {
		case adapters.ActionReply:
			cmd, err := executeReply(ctx, plan, messaging, graph)
			if err != nil {
				return commands, err
			}
			commands = append(commands, cmd)

		case adapters.ActionReact:
			commands = append(commands, adapters.ActionCommand{
				ActionType:      adapters.ActionReact,
				ChannelID:       plan.ChannelID,
				TargetMessageID: plan.TargetID,
				Emoji:           plan.Emoji,
			})

		case adapters.ActionPost:
			cmd, err := executePost(ctx, plan, creative, character)
			if err != nil {
				return commands, err
			}
			commands = append(commands, cmd)
		}
	}

	return commands, nil
}

func executeReply(ctx context.Context, plan Plan, messaging adapters.Messaging, graph ResponseGraph) (adapters.ActionCommand, error) {
	history, err := messaging.RecentMessages(ctx, plan.ChannelID, historyDepth)
	if err != nil {
		return adapters.ActionCommand{}, err
	}

	goalNote := fmt.Sprintf("internal goal: %s", plan.Reason)
	content, err := graph.Respond(ctx, plan.ChannelID, history, goalNote)
	if err != nil {
		return adapters.ActionCommand{}, err
	}

	return adapters.ActionCommand{
		ActionType:      adapters.ActionReply,
		ChannelID:       plan.ChannelID,
		TargetMessageID: plan.TargetID,
		ReplyToID:       plan.TargetID,
		Content:         content,
	}, nil
}

func executePost(ctx context.Context, plan Plan, creative CreativeThought, character Character) (adapters.ActionCommand, error) {
	topic := randomInterest(character)
	content, err := creative.Thought(ctx, topic)
	if err != nil {
		return adapters.ActionCommand{}, err
	}
	return adapters.ActionCommand{
		ActionType: adapters.ActionPost,
		ChannelID:  plan.ChannelID,
		Content:    content,
	}, nil
}

func randomInterest(character Character) string {
	if len(character.Interests) == 0 {
		return "something on my mind"
	}
	return character.Interests[rand.Intn(len(character.Interests))]
}
