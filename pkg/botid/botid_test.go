package botid

import "testing"

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"aria":        true,
		"bot_42":      true,
		"":            false,
		"Aria":        false,
		"bot-42":      false,
		"a very long bot name that definitely exceeds the thirty two char limit": false,
	}
	for name, want := range cases {
		if got := Valid(name); got != want {
			t.Errorf("Valid(%q) = %v, want %v", name, got, want)
		}
	}
}
