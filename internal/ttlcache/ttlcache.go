// Package ttlcache provides a small in-memory cache with per-entry
// expiry. It backs the time-bounded memoization around query
// vectorization and per-query similarity computation.
package ttlcache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache maps keys to values that expire after a fixed time-to-live.
type Cache[K comparable, V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[K]entry[V]
}

// Option configures a Cache.
type Option func(clock *func() time.Time)

// WithClock replaces the time source. Tests use this to step time.
func WithClock(now func() time.Time) Option {
	return func(clock *func() time.Time) {
		*clock = now
	}
}

// New creates a cache whose entries expire ttl after they are set.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	now := time.Now
	for _, opt := range opts {
		opt(&now)
	}
	return &Cache[K, V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the cached value for key. Expired entries are evicted and
// reported as misses.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key, resetting its expiry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:   value,
		expires: c.now().Add(c.ttl),
	}
}

// Len returns the number of entries, counting expired ones not yet
// evicted.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops all entries.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}
