// Package config loads cramdeck configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is the full environment surface consumed by the pipeline and its
// hosts. Defaults match the reference deployment.
type Config struct {
	// Embedding backends
	UseLocalEmbeddings bool   `env:"CRAMDECK_USE_LOCAL_EMBEDDINGS" envDefault:"true"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`

	// Generation
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	GenerationBaseURL string `env:"CRAMDECK_GENERATION_URL" envDefault:"http://localhost:11434/v1"`
	GenerationModel   string `env:"CRAMDECK_GENERATION_MODEL" envDefault:"meta-llama/llama-3-8b-instruct"`
	MaxRetries        int    `env:"CRAMDECK_MAX_RETRIES" envDefault:"3"`
	MaxTokens         int    `env:"CRAMDECK_MAX_TOKENS" envDefault:"500"`
	GenTimeoutSeconds int    `env:"CRAMDECK_GEN_TIMEOUT_SECONDS" envDefault:"30"`

	// Chunking
	ChunkSize    int `env:"CRAMDECK_CHUNK_SIZE" envDefault:"100"`
	ChunkOverlap int `env:"CRAMDECK_CHUNK_OVERLAP" envDefault:"10"`

	// Retrieval
	TopK int `env:"CRAMDECK_TOP_K" envDefault:"5"`

	// Result cache
	CacheTTLSeconds int `env:"CRAMDECK_CACHE_TTL_SECONDS" envDefault:"3600"`
	CacheMaxEntries int `env:"CRAMDECK_CACHE_MAX_ENTRIES" envDefault:"1000"`

	// Record store
	DBPath string `env:"CRAMDECK_DB_PATH" envDefault:"~/.cramdeck/records.db"`
}

// Load reads .env if present and parses the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GenTimeout returns the per-attempt generation timeout as a duration.
func (c *Config) GenTimeout() time.Duration {
	return time.Duration(c.GenTimeoutSeconds) * time.Second
}

// CacheTTL returns the result cache expiry window as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
