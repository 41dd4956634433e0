package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrNoAPIKey       = errors.New("embedding API key not configured")
	ErrProviderFailed = errors.New("embedding provider failed")
	ErrNoEncoder      = errors.New("local encoder not loaded")
)

// Tier identifies which embedding backend served a batch.
type Tier string

const (
	TierLocal  Tier = "local"
	TierRemote Tier = "remote"
	TierRandom Tier = "random"

	// TierNone marks a batch no tier was invoked for (empty input).
	TierNone Tier = ""
)

// Dimension is the canonical embedding dimension, matching the local
// sentence-embedding model. The remote tier may return wider vectors.
const Dimension = 384

// Provider is a single embedding backend. Embed returns one vector per input
// text, in input order.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Tier() Tier
	Dimension() int
}

// BatchResult carries the vectors for a batch plus the tier that produced
// them.
type BatchResult struct {
	Vectors [][]float32
	Tier    Tier
}

// Cache is an in-memory LRU of vectors keyed by content hash, shared across
// the local and remote tiers.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// DefaultCacheSize bounds the shared embedding cache.
const DefaultCacheSize = 10000

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which we just excluded.
		cache, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get returns a copy of the cached vector so callers can't mutate the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a vector; LRU eviction handles capacity.
func (c *Cache) Set(hash string, v []float32) {
	c.cache.Add(hash, v)
}

// Len returns the current cache size.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// ComputeHash returns the SHA-256 content hash used as the cache key.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
