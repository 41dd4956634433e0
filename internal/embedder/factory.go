package embedder

import "log"

// Config selects which tiers the factory assembles.
type Config struct {
	LocalEnabled bool
	APIKey       string
	CacheSize    int
}

// New assembles the tier chain for cfg: local model if enabled, the remote
// API if a credential is present, and the randomized fallback always last.
func New(cfg Config) *Tiered {
	cache := NewCache(cfg.CacheSize)

	var tiers []Provider
	if cfg.LocalEnabled {
		tiers = append(tiers, NewLocalProvider(NewHashEncoder(), cache))
	}
	if cfg.APIKey != "" {
		remote, err := NewRemoteProvider(cfg.APIKey, cache)
		if err != nil {
			log.Printf("embedder: remote tier disabled: %v", err)
		} else {
			tiers = append(tiers, remote)
		}
	}
	tiers = append(tiers, NewRandomProvider())

	return NewTiered(tiers...)
}
