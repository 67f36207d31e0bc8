package memory

import "strings"

// emotionLexicon is the fixed keyword lexicon used when no classifier hint
// is supplied. The caller-supplied hint always wins over this lookup.
var emotionLexicon = map[Emotion][]string{
	EmotionJoy:      {"happy", "excited", "thrilled", "glad", "joy", "love it", "awesome"},
	EmotionSadness:  {"sad", "depressed", "down", "miss", "lonely", "heartbroken"},
	EmotionAnger:    {"angry", "furious", "pissed", "mad", "hate", "annoyed"},
	EmotionFear:     {"scared", "afraid", "worried", "anxious", "terrified", "nervous"},
	EmotionSurprise: {"wow", "shocked", "surprised", "can't believe", "no way"},
	EmotionDisgust:  {"disgusting", "gross", "ew", "nasty"},
}

// ClassifyEmotion resolves the authoritative primary_emotion for a stored
// turn. hint, when non-nil, is a caller-supplied classifier label (e.g.
// RoBERTa-like) and always wins over keyword detection.
func ClassifyEmotion(content string, hint *Emotion) Emotion {
	if hint != nil && hint.Valid() {
		return *hint
	}
	lower := strings.ToLower(content)
	for emotion, keywords := range emotionLexicon {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return emotion
			}
		}
	}
	return EmotionNeutral
}

// DetectEmotionKeyword runs keyword detection only (no hint), used by the
// retrieval pipeline's vector-routing step to decide whether a query talks
// about a strong emotion. Returns ok=false when nothing in the lexicon hits.
func DetectEmotionKeyword(text string) (Emotion, bool) {
	lower := strings.ToLower(text)
	for emotion, keywords := range emotionLexicon {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return emotion, true
			}
		}
	}
	return "", false
}

// intensityByEmotion is a coarse default intensity used when the caller
// hasn't supplied one alongside a hint.
var intensityByEmotion = map[Emotion]float64{
	EmotionVeryPositive: 0.9,
	EmotionVeryNegative: 0.9,
	EmotionJoy:          0.7,
	EmotionSadness:      0.7,
	EmotionAnger:        0.75,
	EmotionFear:         0.7,
	EmotionSurprise:     0.6,
	EmotionDisgust:      0.6,
	EmotionAnxious:      0.65,
	EmotionPositive:     0.5,
	EmotionNegative:     0.5,
	EmotionNeutral:      0.1,
}

// DefaultIntensity returns the coarse intensity associated with an
// emotion label when the caller supplied none.
func DefaultIntensity(e Emotion) float64 {
	if v, ok := intensityByEmotion[e]; ok {
		return v
	}
	return 0.3
}

// Velocity computes the signed delta of intensity between this turn and
// the previous one, clamped to [-1,1].
func Velocity(prevIntensity, currentIntensity float64) float64 {
	d := currentIntensity - prevIntensity
	switch {
	case d > 1:
		return 1
	case d < -1:
		return -1
	default:
		return d
	}
}

// ResolveMomentum classifies emotional_momentum from the sign and
// magnitude of velocity.
func ResolveMomentum(velocity float64) Momentum {
	switch {
	case velocity > 0.15:
		return MomentumAccelerating
	case velocity < -0.15:
		return MomentumReversing
	case velocity < 0:
		return MomentumDecelerating
	default:
		return MomentumSteady
	}
}

// Stability scores how consistent the last K emotion labels in a
// trajectory are: 1.0 when every label in the window matches the most
// recent one, decreasing as the window diversifies.
func Stability(trajectory []Emotion) float64 {
	if len(trajectory) == 0 {
		return 1
	}
	latest := trajectory[len(trajectory)-1]
	matches := 0
	for _, e := range trajectory {
		if e == latest {
			matches++
		}
	}
	return float64(matches) / float64(len(trajectory))
}
