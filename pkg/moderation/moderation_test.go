package moderation

import "testing"

func TestKeyLayout(t *testing.T) {
	c := &Checker{keyPrefix: "whisperengine:"}
	got := c.key("user-1")
	want := "whisperengine:moderation_timeout:user-1"
	if got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}
}

func TestKeyLayoutNoPrefix(t *testing.T) {
	c := &Checker{}
	if got := c.key("user-1"); got != "moderation_timeout:user-1" {
		t.Fatalf("unexpected key: %q", got)
	}
}
