// Package rescache is the process-wide cache of generated study material.
//
// Entries are keyed by content identifier, item count, item kind, and, for
// kinds that use it, difficulty. An entry older than the TTL is treated as
// absent and removed on the lookup that notices it (lazy expiry, no
// background sweep). When a write pushes the store past its soft cap, the
// oldest entries by write timestamp are evicted in a fixed-size batch.
// Eviction goes by write time only; reads never refresh an entry, so the
// policy is FIFO-like rather than LRU. That matches the reference behavior
// and is kept deliberately.
//
// All operations hold an internal mutex, so concurrent pipeline invocations
// can share one Cache.
package rescache

import (
	"sort"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long an entry stays servable.
	DefaultTTL = 3600 * time.Second

	// DefaultMaxEntries is the soft cap on stored entries.
	DefaultMaxEntries = 1000

	// EvictBatch is how many of the oldest entries one sweep removes.
	EvictBatch = 100
)

// Key identifies one cached generation. Difficulty stays empty for kinds
// that don't use it, so it never splits those keys.
type Key struct {
	ContentID  string
	Count      int
	Kind       string
	Difficulty string
}

type entry struct {
	storedAt time.Time
	payload  interface{}
}

// Cache is a capacity- and time-bounded store of generation payloads.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]entry
	ttl        time.Duration
	maxEntries int

	// now is the clock; tests inject a fake one.
	now func() time.Time
}

// New creates a Cache. Non-positive ttl or maxEntries fall back to the
// defaults.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[Key]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the payload for key if present and fresh. A stale entry is
// deleted as a side effect and reported as absent.
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under key, overwriting any existing entry and stamping
// the current time. If the store then exceeds its cap, the EvictBatch oldest
// entries are removed.
func (c *Cache) Put(key Key, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{storedAt: c.now(), payload: payload}

	if len(c.entries) > c.maxEntries {
		c.evictOldestLocked()
	}
}

// evictOldestLocked removes the EvictBatch entries with the smallest write
// timestamps. Caller holds the mutex.
func (c *Cache) evictOldestLocked() {
	type aged struct {
		key      Key
		storedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].storedAt.Before(all[j].storedAt)
	})

	n := EvictBatch
	if n > len(all) {
		n = len(all)
	}
	for _, a := range all[:n] {
		delete(c.entries, a.key)
	}
}

// Clear empties the cache and returns how many entries were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[Key]entry)
	return n
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
