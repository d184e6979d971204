// Package cache provides an in-memory, TTL-bounded memoization layer for the
// clinical note parser. Re-parsing the same note text with the same options
// (e.g. a client re-submitting an unchanged note) is wasted work once the
// header scorer and extractors have already run once.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// CacheStats tracks cache hit/miss performance, mirroring the shape other
// tiered caches in this codebase report so operators can reason about them
// the same way.
type CacheStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCache is a single-tier LRU cache with per-entry TTL expiry. It is
// deliberately simple: the lite MCP server runs with no Redis or database
// available, so there is no second tier to fall back to.
type MemoryCache struct {
	lru *lru.Cache
	ttl time.Duration

	statsMu sync.RWMutex
	stats   CacheStats
}

// NewMemoryCache creates a cache holding at most maxItems entries, each
// valid for ttl after being set. maxItems <= 0 defaults to 1000, ttl <= 0
// defaults to 15 minutes.
func NewMemoryCache(maxItems int, ttl time.Duration) (*MemoryCache, error) {
	if maxItems <= 0 {
		maxItems = 1000
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	c := &MemoryCache{ttl: ttl}

	backing, err := lru.NewWithEvict(maxItems, func(key interface{}, value interface{}) {
		c.statsMu.Lock()
		c.stats.Evictions++
		c.statsMu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	c.lru = backing

	return c, nil
}

// Get returns the cached value for key, if present and not expired.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	raw, ok := c.lru.Get(key)
	if !ok {
		c.recordMiss()
		return nil, false
	}

	e := raw.(*entry)
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return e.value, true
}

// Set stores value under key with the cache's configured TTL.
func (c *MemoryCache) Set(key string, value interface{}) {
	c.lru.Add(key, &entry{value: value, expiresAt: time.Now().Add(c.ttl)})
}

// Invalidate removes key from the cache, if present.
func (c *MemoryCache) Invalidate(key string) {
	c.lru.Remove(key)
}

// Len returns the number of entries currently held (including any not yet
// lazily expired).
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of cache performance counters.
func (c *MemoryCache) Stats() CacheStats {
	c.statsMu.RLock()
	defer c.statsMu.RUnlock()
	return c.stats
}

func (c *MemoryCache) recordHit() {
	c.statsMu.Lock()
	c.stats.Hits++
	c.statsMu.Unlock()
}

func (c *MemoryCache) recordMiss() {
	c.statsMu.Lock()
	c.stats.Misses++
	c.statsMu.Unlock()
}
