package embedder

import (
	"context"
	"fmt"
	"log"
)

// Tiered tries each configured provider in order; the first tier that
// succeeds serves the whole batch. A tier error means "tier unavailable",
// not batch failure.
type Tiered struct {
	tiers []Provider
}

// NewTiered builds a tiered embedder from providers in preference order.
func NewTiered(tiers ...Provider) *Tiered {
	return &Tiered{tiers: tiers}
}

// Tiers returns the configured tier names in order, for status reporting.
func (t *Tiered) Tiers() []Tier {
	names := make([]Tier, len(t.tiers))
	for i, p := range t.tiers {
		names[i] = p.Tier()
	}
	return names
}

// Embed returns one vector per input text in input order, plus the tier that
// produced the batch. Empty input returns an empty result without invoking
// any tier.
func (t *Tiered) Embed(ctx context.Context, texts []string) (*BatchResult, error) {
	if len(texts) == 0 {
		return &BatchResult{Tier: TierNone}, nil
	}

	var lastErr error
	for _, p := range t.tiers {
		vectors, err := p.Embed(ctx, texts)
		if err != nil {
			// Context cancellation is the caller's failure, not the tier's.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("embedder: %s tier unavailable, falling back: %v", p.Tier(), err)
			lastErr = err
			continue
		}
		if len(vectors) != len(texts) {
			log.Printf("embedder: %s tier returned %d vectors for %d texts, falling back",
				p.Tier(), len(vectors), len(texts))
			lastErr = fmt.Errorf("%w: vector count mismatch from %s tier", ErrProviderFailed, p.Tier())
			continue
		}
		if p.Tier() == TierRandom {
			log.Printf("embedder: serving %d texts with randomized vectors; retrieval quality will be near-random", len(texts))
		}
		return &BatchResult{Vectors: vectors, Tier: p.Tier()}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no tiers configured", ErrProviderFailed)
	}
	return nil, lastErr
}
