package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UseLocalEmbeddings)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationBaseURL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500, cfg.MaxTokens)
	assert.Equal(t, 100, cfg.ChunkSize)
	assert.Equal(t, 10, cfg.ChunkOverlap)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 30*time.Second, cfg.GenTimeout())
	assert.Equal(t, time.Hour, cfg.CacheTTL())
	assert.Equal(t, 1000, cfg.CacheMaxEntries)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CRAMDECK_USE_LOCAL_EMBEDDINGS", "false")
	t.Setenv("CRAMDECK_GENERATION_URL", "https://openrouter.ai/api/v1")
	t.Setenv("CRAMDECK_CHUNK_SIZE", "200")
	t.Setenv("CRAMDECK_CACHE_TTL_SECONDS", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.UseLocalEmbeddings)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.GenerationBaseURL)
	assert.Equal(t, 200, cfg.ChunkSize)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
}
