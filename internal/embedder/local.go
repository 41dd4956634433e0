package embedder

import (
	"context"
	"crypto/sha256"
	"fmt"
)

// LocalBatchSize is how many texts the local model encodes per call.
const LocalBatchSize = 32

// Encoder is the local sentence-embedding model capability: a batch of
// strings in, one fixed-length vector per string out.
type Encoder interface {
	Encode(texts []string) ([][]float32, error)
}

// LocalProvider embeds through an in-process model. It is the preferred tier:
// deterministic, no network dependency, fast once the model is loaded.
type LocalProvider struct {
	enc   Encoder
	cache *Cache
}

// NewLocalProvider wraps enc as the local embedding tier.
func NewLocalProvider(enc Encoder, cache *Cache) *LocalProvider {
	return &LocalProvider{enc: enc, cache: cache}
}

func (l *LocalProvider) Tier() Tier     { return TierLocal }
func (l *LocalProvider) Dimension() int { return Dimension }

// Embed encodes texts in batches of LocalBatchSize, preserving input order.
func (l *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if l.enc == nil {
		return nil, ErrNoEncoder
	}

	vectors := make([][]float32, len(texts))
	pending := make([]int, 0, len(texts))

	// Serve cache hits first so only misses go through the model.
	for i, text := range texts {
		if l.cache != nil {
			if v, ok := l.cache.Get(ComputeHash(text)); ok {
				vectors[i] = v
				continue
			}
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += LocalBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + LocalBatchSize
		if end > len(pending) {
			end = len(pending)
		}

		batch := make([]string, 0, end-start)
		for _, idx := range pending[start:end] {
			batch = append(batch, texts[idx])
		}

		encoded, err := l.enc.Encode(batch)
		if err != nil {
			return nil, fmt.Errorf("%w: local encode: %v", ErrProviderFailed, err)
		}
		if len(encoded) != len(batch) {
			return nil, fmt.Errorf("%w: local model returned %d vectors for %d texts",
				ErrProviderFailed, len(encoded), len(batch))
		}

		for j, idx := range pending[start:end] {
			vectors[idx] = encoded[j]
			if l.cache != nil {
				l.cache.Set(ComputeHash(texts[idx]), encoded[j])
			}
		}
	}

	return vectors, nil
}

// HashEncoder is a deterministic stand-in for a real sentence-embedding
// model: it projects the SHA-256 digest of each text into the canonical
// dimension. Identical texts always map to identical vectors, which is all
// the pipeline's tests and offline mode need.
type HashEncoder struct{}

// NewHashEncoder returns the default local encoder.
func NewHashEncoder() *HashEncoder {
	return &HashEncoder{}
}

// Encode maps each text to a Dimension-length vector derived from iterated
// hashing of its content.
func (h *HashEncoder) Encode(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, Dimension)
		digest := sha256.Sum256([]byte(text))
		for filled := 0; filled < Dimension; {
			for _, b := range digest {
				if filled >= Dimension {
					break
				}
				vec[filled] = float32(b)/255.0 - 0.5
				filled++
			}
			digest = sha256.Sum256(digest[:])
		}
		out[i] = vec
	}
	return out, nil
}
