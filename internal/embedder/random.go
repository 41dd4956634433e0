package embedder

import (
	"context"
	"math/rand"
)

// RandomProvider is the last-resort tier: uniformly random vectors of the
// canonical dimension. It exists so the pipeline degrades to "an answer of
// unknown quality" instead of hard-failing when no real backend is
// available. Callers must surface its use; retrieval over random vectors is
// near-random.
type RandomProvider struct{}

// NewRandomProvider returns the randomized fallback tier.
func NewRandomProvider() *RandomProvider {
	return &RandomProvider{}
}

func (p *RandomProvider) Tier() Tier     { return TierRandom }
func (p *RandomProvider) Dimension() int { return Dimension }

// Embed never fails.
func (p *RandomProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, Dimension)
		for j := range vec {
			vec[j] = rand.Float32()
		}
		vectors[i] = vec
	}
	return vectors, nil
}
