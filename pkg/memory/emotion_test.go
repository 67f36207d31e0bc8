package memory

import "testing"

func TestVelocityClampsToUnitRange(t *testing.T) {
	cases := []struct {
		prev, cur float64
		want      float64
	}{
		{0, 0.5, 0.5},
		{0.2, 0.1, -0.1},
		{-1, 2, 1},
		{1, -2, -1},
	}
	for _, c := range cases {
		if got := Velocity(c.prev, c.cur); got != c.want {
			t.Errorf("Velocity(%v, %v) = %v, want %v", c.prev, c.cur, got, c.want)
		}
	}
}

func TestResolveMomentum(t *testing.T) {
	cases := []struct {
		velocity float64
		want     Momentum
	}{
		{0.3, MomentumAccelerating},
		{-0.3, MomentumReversing},
		{-0.05, MomentumDecelerating},
		{0, MomentumSteady},
	}
	for _, c := range cases {
		if got := ResolveMomentum(c.velocity); got != c.want {
			t.Errorf("ResolveMomentum(%v) = %v, want %v", c.velocity, got, c.want)
		}
	}
}

func TestStabilityEmptyTrajectoryIsFullyStable(t *testing.T) {
	if got := Stability(nil); got != 1 {
		t.Errorf("expected stability 1 for empty trajectory, got %v", got)
	}
}

func TestStabilityAllSameIsFullyStable(t *testing.T) {
	trajectory := []Emotion{EmotionJoy, EmotionJoy, EmotionJoy}
	if got := Stability(trajectory); got != 1 {
		t.Errorf("expected stability 1 for a uniform trajectory, got %v", got)
	}
}

func TestStabilityMixedIsPartial(t *testing.T) {
	trajectory := []Emotion{EmotionSadness, EmotionJoy, EmotionJoy}
	if got := Stability(trajectory); got <= 0 || got >= 1 {
		t.Errorf("expected a partial stability score, got %v", got)
	}
}

func TestAppendTrajectoryBoundsToWindow(t *testing.T) {
	var trajectory []Emotion
	for i := 0; i < TrajectoryWindow+5; i++ {
		trajectory = AppendTrajectory(trajectory, EmotionJoy)
	}
	if len(trajectory) != TrajectoryWindow {
		t.Fatalf("expected trajectory capped at %d, got %d", TrajectoryWindow, len(trajectory))
	}
}

func TestAppendTrajectoryDoesNotMutateInput(t *testing.T) {
	original := []Emotion{EmotionJoy}
	appended := AppendTrajectory(original, EmotionSadness)
	if len(original) != 1 {
		t.Fatalf("expected original slice untouched, got %v", original)
	}
	if len(appended) != 2 || appended[1] != EmotionSadness {
		t.Fatalf("expected appended trajectory to carry the new label, got %v", appended)
	}
}
