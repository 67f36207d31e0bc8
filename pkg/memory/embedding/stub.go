package embedding

import (
	"context"
	"hash/fnv"

	"github.com/whisperengine/core/pkg/memory"
)

// NewStubProvider builds a deterministic Provider with no network
// dependency, for tests and local smoke-testing without a live embedding
// backend. Equal texts always produce equal vectors.
func NewStubProvider() *Provider {
	embed := func(text string) []float32 {
		vec := make([]float32, memory.VectorDim)
		h := fnv.New64a()
		h.Write([]byte(text))
		seed := h.Sum64()
		for i := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[i] = float32(int64(seed>>40)%1000) / 1000
		}
		return Normalize(vec)
	}

	return &Provider{
		id:    "stub",
		model: "stub-deterministic",
		embedQuery: func(ctx context.Context, text string) ([]float32, error) {
			return embed(text), nil
		},
		embedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, t := range texts {
				out[i] = embed(t)
			}
			return out, nil
		},
	}
}
