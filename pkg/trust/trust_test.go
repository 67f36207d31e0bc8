package trust

import "testing"

func TestLevelForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{-100, LevelStranger},
		{0, LevelStranger},
		{19, LevelStranger},
		{20, LevelAcquaintance},
		{39, LevelAcquaintance},
		{40, LevelFriend},
		{59, LevelFriend},
		{60, LevelCloseFriend},
		{79, LevelCloseFriend},
		{80, LevelSoulmate},
		{100, LevelSoulmate},
	}
	for _, c := range cases {
		if got := LevelForScore(c.score); got != c.want {
			t.Errorf("LevelForScore(%d) = %v, want %v", c.score, got, c.want)
		}
	}
}

func TestClampScoreStaysWithinBounds(t *testing.T) {
	if got := ClampScore(-100 - 5); got != -100 {
		t.Errorf("expected -100 with further negative delta to stay at -100, got %d", got)
	}
	if got := ClampScore(100 + 5); got != 100 {
		t.Errorf("expected 100 with further positive delta to stay at 100, got %d", got)
	}
}

func TestDeltaTableCoversAllEventKinds(t *testing.T) {
	kinds := []EventKind{
		EventPositiveTurn, EventVulnerabilityMoment, EventBoundaryViolation,
		EventChannelInteraction, EventBotToBotInteraction,
	}
	for _, k := range kinds {
		if _, ok := DeltaTable[k]; !ok {
			t.Errorf("DeltaTable missing entry for %q", k)
		}
	}
	if DeltaTable[EventPositiveTurn] != 1 {
		t.Errorf("positive turn delta = %d, want 1", DeltaTable[EventPositiveTurn])
	}
	if DeltaTable[EventVulnerabilityMoment] != 5 {
		t.Errorf("vulnerability moment delta = %d, want 5", DeltaTable[EventVulnerabilityMoment])
	}
	if DeltaTable[EventBoundaryViolation] != -3 {
		t.Errorf("boundary violation delta = %d, want -3", DeltaTable[EventBoundaryViolation])
	}
}

func TestTraitsUnlockedAtEscalatesWithLevel(t *testing.T) {
	if len(TraitsUnlockedAt(LevelStranger)) != 0 {
		t.Errorf("expected no traits unlocked at Stranger")
	}
	if len(TraitsUnlockedAt(LevelSoulmate)) == 0 {
		t.Errorf("expected traits unlocked at Soulmate")
	}
}

func TestMilestoneMessageNamesBothLevels(t *testing.T) {
	msg := milestoneMessage(LevelStranger, LevelAcquaintance)
	if msg == "" {
		t.Fatal("expected non-empty milestone message")
	}
}

func TestRelationshipCacheInvalidateOnWrite(t *testing.T) {
	c := newRelationshipCache()
	rel := NewDefaultRelationship("user-1", "aria")
	rel.Score = 20
	c.Set(rel)

	if _, ok := c.Get("user-1", "aria"); !ok {
		t.Fatal("expected cache hit after Set")
	}

	c.Invalidate("user-1", "aria")
	if _, ok := c.Get("user-1", "aria"); ok {
		t.Fatal("expected cache miss after Invalidate")
	}
}
