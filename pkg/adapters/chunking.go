package adapters

import "strings"

// MaxChunkChars is the outbound per-message size limit (§6).
const MaxChunkChars = 2000

// Chunk splits text into outbound pieces no longer than MaxChunkChars,
// preferring sentence (". ") and paragraph ("\n\n") boundaries the way the
// teacher prefers markdown paragraph/line boundaries for continuation
// messages. Falls back to a word boundary when a single chunk still
// overflows. Never returns an empty chunk.
func Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	remaining := text
	for len(remaining) > MaxChunkChars {
		piece, rest := splitAtBoundary(remaining, MaxChunkChars)
		piece = strings.TrimSpace(piece)
		if piece != "" {
			chunks = append(chunks, piece)
		}
		remaining = strings.TrimSpace(rest)
	}
	if remaining != "" {
		chunks = append(chunks, remaining)
	}
	return chunks
}

// splitAtBoundary returns (first, rest) split near maxChars, preferring a
// paragraph break, then a sentence break, then falling back to a word
// boundary so no chunk ever splits mid-word.
func splitAtBoundary(text string, maxChars int) (string, string) {
	if len(text) <= maxChars {
		return text, ""
	}
	window := text[:maxChars]

	if idx := strings.LastIndex(window, "\n\n"); idx > maxChars/2 {
		return text[:idx], text[idx+2:]
	}
	if idx := strings.LastIndex(window, ". "); idx > maxChars/2 {
		return text[:idx+1], text[idx+2:]
	}
	if idx := strings.LastIndex(window, " "); idx > 0 {
		return text[:idx], text[idx+1:]
	}
	return window, text[maxChars:]
}
