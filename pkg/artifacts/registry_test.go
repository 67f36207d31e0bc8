package artifacts

import "testing"

func TestKeyLayout(t *testing.T) {
	r := &Registry{keyPrefix: "whisperengine:"}
	got := r.key("user-1")
	want := "whisperengine:pending_images:user-1"
	if got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}
}

func TestKeyLayoutNoPrefix(t *testing.T) {
	r := &Registry{}
	if got := r.key("user-1"); got != "pending_images:user-1" {
		t.Fatalf("unexpected key: %q", got)
	}
}
