package dailylife

import (
	"context"
	"fmt"

	"github.com/whisperengine/core/pkg/adapters"
	"github.com/whisperengine/core/pkg/memory"
	"github.com/whisperengine/core/pkg/memory/selfmemory"
)

// RunReverieCycle is the creative-idle job enqueued after dream_threshold
// of silence. The original source leaves the payload underspecified; per
// §9's resolution, its only contract is "runs off the hot path, may write
// a self_reflection entry" — so it asks the creative LLM for one
// reflective thought and stores it in the bot's self-memory namespace.
func RunReverieCycle(ctx context.Context, llm adapters.LLM, self *selfmemory.Namespace, character Character) error {
	prompt := fmt.Sprintf(
		"It's been quiet for a while. Reflect briefly, in character, on one of your interests (%v) or ongoing goals.",
		character.Interests,
	)
	thought, err := llm.ChatCompletion(ctx, []adapters.ChatMessage{
		{Role: "system", Content: "You are reflecting privately, not replying to anyone."},
		{Role: "user", Content: prompt},
	}, 256, 0.8)
	if err != nil {
		return fmt.Errorf("dailylife: reverie completion: %w", err)
	}

	return self.StoreReflection(ctx, selfmemory.Reflection{
		Effectiveness:      0.5,
		Authenticity:       0.7,
		EmotionalResonance: 0.5,
		LearningInsight:    thought,
		DominantTrait:      string(memory.EntryBotSelfReflection),
	})
}
