package adapters

import (
	"strings"
	"testing"
)

func TestChunkUnderLimitIsSingleChunk(t *testing.T) {
	got := Chunk("hello there")
	if len(got) != 1 || got[0] != "hello there" {
		t.Fatalf("expected single chunk, got %#v", got)
	}
}

func TestChunkNeverEmpty(t *testing.T) {
	for _, c := range Chunk("   \n\n  ") {
		if c == "" {
			t.Fatalf("expected no empty chunks")
		}
	}
	if got := Chunk(""); got != nil {
		t.Fatalf("expected nil for empty input, got %#v", got)
	}
}

func TestChunkSplitsLongTextWithoutExceedingLimit(t *testing.T) {
	sentence := strings.Repeat("a", 50) + ". "
	text := strings.Repeat(sentence, 100)

	chunks := Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for long text, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c) > MaxChunkChars {
			t.Fatalf("chunk exceeds MaxChunkChars: %d", len(c))
		}
		if c == "" {
			t.Fatalf("expected no empty chunks")
		}
	}
}

func TestChunkNeverSplitsMidWord(t *testing.T) {
	text := strings.Repeat("supercalifragilisticexpialidocious ", 100)
	for _, c := range Chunk(text) {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		words := strings.Fields(trimmed)
		for _, w := range words {
			if w != "supercalifragilisticexpialidocious" {
				t.Fatalf("expected only whole words, got fragment %q", w)
			}
		}
	}
}
