package embedding

import (
	"context"
	"math"
	"testing"
)

func TestNormalizeProducesUnitVector(t *testing.T) {
	vec := []float32{3, 4}
	normalized := Normalize(vec)
	var sum float64
	for _, v := range normalized {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("expected unit magnitude, got %v", sum)
	}
}

func TestNormalizeGuardsNaNAndInf(t *testing.T) {
	vec := []float32{float32(math.NaN()), float32(math.Inf(1)), 1}
	normalized := Normalize(vec)
	for i, v := range normalized[:2] {
		if v != 0 {
			t.Fatalf("expected NaN/Inf component %d to zero out, got %v", i, v)
		}
	}
}

func TestStubProviderIsDeterministic(t *testing.T) {
	p := NewStubProvider()
	a, err := p.EmbedQuery(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := p.EmbedQuery(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("expected equal length vectors")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected deterministic output at index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestStubProviderDiffersByText(t *testing.T) {
	p := NewStubProvider()
	a, _ := p.EmbedQuery(context.Background(), "hello")
	b, _ := p.EmbedQuery(context.Background(), "goodbye")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected different texts to embed differently")
	}
}
