package dailylife

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/whisperengine/core/pkg/adapters"
)

// ReactionCaps bounds autonomous reactions independent of the daily-life
// loop (§4.5's "Autonomous Reactions"): a per-channel hourly cap, a
// per-user cooldown, and a daily global cap.
type ReactionCaps struct {
	PerChannelHourly int
	PerUserCooldown  time.Duration
	DailyGlobal      int
}

func defaultReactionCaps() ReactionCaps {
	return ReactionCaps{PerChannelHourly: 10, PerUserCooldown: 5 * time.Minute, DailyGlobal: 100}
}

// Reactor decides, per incoming human message and independent of the
// perceive/plan/execute loop, whether to react with an emoji using a
// cheap rule-based sentiment classifier — never an LLM call.
type Reactor struct {
	rate      float64
	caps      ReactionCaps
	messaging adapters.Messaging

	mu            sync.Mutex
	channelCounts map[string][]time.Time
	lastPerUser   map[string]time.Time
	dailyCount    int
	dailyResetAt  time.Time
}

// NewReactor builds a Reactor for a character-specific reaction rate in
// [0,1], using default caps unless overridden.
func NewReactor(rate float64, caps ReactionCaps, messaging adapters.Messaging) *Reactor {
	if caps == (ReactionCaps{}) {
		caps = defaultReactionCaps()
	}
	return &Reactor{
		rate:          rate,
		caps:          caps,
		messaging:     messaging,
		channelCounts: make(map[string][]time.Time),
		lastPerUser:   make(map[string]time.Time),
		dailyResetAt:  time.Now().Add(24 * time.Hour),
	}
}

// sentiment is the cheap rule-based signal Reactor classifies messages
// into, with the reaction emoji set for each.
type sentiment int

const (
	sentimentNeutral sentiment = iota
	sentimentPositive
	sentimentNegative
	sentimentFunny
)

var positiveWords = []string{"awesome", "great", "love", "amazing", "yes!", "congrat"}
var negativeWords = []string{"sad", "terrible", "hate", "awful", "sorry", "ugh"}
var funnyWords = []string{"lol", "lmao", "haha", "funny", "joke"}

func classifySentiment(content string) sentiment {
	lower := strings.ToLower(content)
	for _, w := range funnyWords {
		if strings.Contains(lower, w) {
			return sentimentFunny
		}
	}
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			return sentimentPositive
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			return sentimentNegative
		}
	}
	return sentimentNeutral
}

var emojiSet = map[sentiment][]string{
	sentimentPositive: {"🎉", "❤️", "👍"},
	sentimentNegative: {"💙", "🫂"},
	sentimentFunny:    {"😂", "😆"},
}

// MaybeReact rolls the character's reaction rate against msg and, if it
// fires and every cap allows it, schedules a delayed reaction via the
// messaging adapter. Returns immediately; the reaction itself lands 2-15s
// later on its own goroutine.
func (r *Reactor) MaybeReact(ctx context.Context, msg adapters.InboundMessage) {
	if msg.AuthorIsBot || rand.Float64() >= r.rate {
		return
	}

	sent := classifySentiment(msg.Content)
	emojis, ok := emojiSet[sent]
	if !ok || len(emojis) == 0 {
		return
	}

	if !r.allow(msg.ChannelID, msg.AuthorID, time.Now()) {
		return
	}

	picked := pickEmojis(emojis)
	delay := time.Duration(2+rand.Intn(14)) * time.Second
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		_ = r.messaging.Execute(ctx, adapters.ActionCommand{
			ActionType:      adapters.ActionReact,
			ChannelID:       msg.ChannelID,
			TargetMessageID: msg.ID,
			Emoji:           strings.Join(picked, ""),
		})
	}()
}

func pickEmojis(pool []string) []string {
	n := 1
	if len(pool) > 1 && rand.Float64() < 0.3 {
		n = 2
	}
	if n > len(pool) {
		n = len(pool)
	}
	shuffled := append([]string{}, pool...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}

func (r *Reactor) allow(channelID, userID string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.After(r.dailyResetAt) {
		r.dailyCount = 0
		r.dailyResetAt = now.Add(24 * time.Hour)
	}
	if r.dailyCount >= r.caps.DailyGlobal {
		return false
	}

	if last, ok := r.lastPerUser[userID]; ok && now.Sub(last) < r.caps.PerUserCooldown {
		return false
	}

	hourAgo := now.Add(-1 * time.Hour)
	recent := r.channelCounts[channelID][:0]
	for _, t := range r.channelCounts[channelID] {
		if t.After(hourAgo) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= r.caps.PerChannelHourly {
		r.channelCounts[channelID] = recent
		return false
	}

	r.channelCounts[channelID] = append(recent, now)
	r.lastPerUser[userID] = now
	r.dailyCount++
	return true
}
