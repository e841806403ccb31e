// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes fetch results keyed by request signature.
//
// Two tiers: an in-memory map consulted first, and an optional SQLite
// mirror consulted on memory miss. The mirror survives process restarts;
// its presence is a deployment choice, not a correctness requirement.
// Failures are never cached, so a later retry can succeed.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pdiddy/citegraph/pkg/types"
)

// Stats reports cache usage counters.
type Stats struct {
	// EntryCount is the number of entries in the in-memory tier.
	EntryCount int `json:"entry_count" yaml:"entry_count"`

	// HitCount counts GetOrFetch calls served from either tier.
	HitCount int `json:"hit_count" yaml:"hit_count"`

	// MissCount counts GetOrFetch calls that invoked the fetch function.
	MissCount int `json:"miss_count" yaml:"miss_count"`
}

type entry struct {
	value     json.RawMessage
	createdAt time.Time
}

// Cache is a process-wide fetch memo. It outlives individual requests and
// is safe for concurrent use; an explicit Clear resets it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	hits    int
	misses  int

	durable *mirror // nil when the durable tier is disabled
}

// New builds a Cache. When cfg.Durable is set, the SQLite mirror is opened
// (and created if needed) under cfg.CacheDir.
func New(cfg types.CacheConfig) (*Cache, error) {
	c := &Cache{entries: make(map[string]entry)}
	if cfg.Durable {
		m, err := openMirror(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		c.durable = m
	}
	return c, nil
}

// GetOrFetch returns the cached value for key if present; otherwise it
// invokes fetch and, on success, stores the result under key in both tiers
// before returning it. On fetch failure nothing is stored.
//
// The lock is not held across fetch, so concurrent branches may race to
// fetch the same key; the last success wins and failures are discarded.
// For a fixed key the returned bytes are identical until Clear.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return e.value, nil
	}

	// Memory miss: consult the mirror before fetching.
	if c.durable != nil {
		if value, ok, err := c.durable.get(ctx, key); err == nil && ok {
			c.entries[key] = entry{value: value, createdAt: time.Now()}
			c.hits++
			c.mu.Unlock()
			return value, nil
		}
	}
	c.misses++
	c.mu.Unlock()

	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, createdAt: time.Now()}
	c.mu.Unlock()

	if c.durable != nil {
		// A mirror write failure does not fail the fetch; the memory
		// tier already holds the value.
		_ = c.durable.put(ctx, key, value)
	}
	return value, nil
}

// Clear removes all entries from both tiers and resets the counters.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()

	if c.durable != nil {
		return c.durable.clear(context.Background())
	}
	return nil
}

// Stats returns current usage counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		EntryCount: len(c.entries),
		HitCount:   c.hits,
		MissCount:  c.misses,
	}
}

// Close releases the durable tier, if any.
func (c *Cache) Close() error {
	if c.durable != nil {
		return c.durable.close()
	}
	return nil
}
