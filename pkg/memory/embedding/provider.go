// Package embedding implements the embed(texts) -> [][384]float32 contract
// (§4.9), L2-normalized, with a caller-pluggable HTTP backend and a
// deterministic local/stub backend for tests.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/whisperengine/core/pkg/memory"
)

// Provider mirrors the teacher's function-field-based interface
// implementation: a struct holding an id, model name and the two
// embedding functions, so every concrete backend (HTTP, stub) is just a
// constructor filling in those two closures rather than a new named type.
type Provider struct {
	id         string
	model      string
	embedQuery func(ctx context.Context, text string) ([]float32, error)
	embedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (p *Provider) ID() string    { return p.id }
func (p *Provider) Model() string { return p.model }

// EmbedQuery embeds a single text, normally the retrieval query.
func (p *Provider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if p.embedQuery == nil {
		return nil, nil
	}
	return p.embedQuery(ctx, text)
}

// EmbedBatch embeds a batch of stored-turn texts in one round trip.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if p.embedBatch == nil {
		return nil, nil
	}
	return p.embedBatch(ctx, texts)
}

// Normalize L2-normalizes a vector in place semantics (returns a new
// slice), guarding against NaN/Inf components the way the teacher's
// NormalizeEmbedding does, so a malformed backend response never poisons
// a stored vector.
func Normalize(vec []float32) []float32 {
	if len(vec) == 0 {
		return vec
	}
	var sum float64
	for _, v := range vec {
		f := float64(v)
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			sum += f * f
		}
	}
	if sum <= 0 {
		return vec
	}
	mag := math.Sqrt(sum)
	if mag < 1e-10 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out[i] = 0
		} else {
			out[i] = float32(f / mag)
		}
	}
	return out
}

// ErrDim is returned when a backend produces a vector of the wrong width.
type ErrDim struct {
	Got int
}

func (e *ErrDim) Error() string {
	return fmt.Sprintf("embedding: expected %d-dim vector, got %d", memory.VectorDim, e.Got)
}
