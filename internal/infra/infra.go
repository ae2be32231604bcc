// Package infra provides shared infrastructure components used across
// the application: an expiring key/value cache and a token-bucket limiter.
package infra

import (
	"context"
	"sync"
	"time"
)

// --- Expiring cache ---

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe in-memory map whose entries expire after a TTL.
// When sliding is enabled every successful Get extends the entry's life,
// which gives idle-timeout semantics.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]cacheEntry[V]
	ttl     time.Duration
	sliding bool
	now     func() time.Time
	onEvict func(K, V)
}

// CacheOption configures a Cache.
type CacheOption[K comparable, V any] func(*Cache[K, V])

// WithSliding makes reads extend an entry's expiry.
func WithSliding[K comparable, V any]() CacheOption[K, V] {
	return func(c *Cache[K, V]) { c.sliding = true }
}

// WithClock replaces the time source, for tests.
func WithClock[K comparable, V any](now func() time.Time) CacheOption[K, V] {
	return func(c *Cache[K, V]) { c.now = now }
}

// WithEvictHook registers a callback invoked for every entry removed by Cleanup.
func WithEvictHook[K comparable, V any](fn func(K, V)) CacheOption[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = fn }
}

// NewCache creates a cache with the given default TTL.
func NewCache[K comparable, V any](ttl time.Duration, opts ...CacheOption[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries: make(map[K]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get retrieves a live value.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	if c.sliding {
		c.mu.Lock()
		defer c.mu.Unlock()
	} else {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}

	var zero V
	entry, ok := c.entries[key]
	now := c.now()
	if !ok || now.After(entry.expiresAt) {
		return zero, false
	}
	if c.sliding {
		entry.expiresAt = now.Add(c.ttl)
		c.entries[key] = entry
	}
	return entry.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Update applies fn to a live entry under the write lock and stores the
// result. It reports false when the key is missing or expired.
func (c *Cache[K, V]) Update(key K, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	now := c.now()
	if !ok || now.After(entry.expiresAt) {
		return false
	}
	c.entries[key] = cacheEntry[V]{value: fn(entry.value), expiresAt: now.Add(c.ttl)}
	return true
}

// Invalidate removes a key from the cache.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included until
// the next Cleanup.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *Cache[K, V]) Cleanup() int {
	type evicted struct {
		key   K
		value V
	}
	var gone []evicted

	c.mu.Lock()
	now := c.now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
			gone = append(gone, evicted{k, v.value})
		}
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, e := range gone {
			c.onEvict(e.key, e.value)
		}
	}
	return len(gone)
}

// --- Rate limiter ---

// RateLimiter provides simple token-bucket rate limiting.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
}

// NewRateLimiter allows maxTokens requests per refillRate window.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens < 1 {
		maxTokens = 1
	}
	if refillRate <= 0 {
		refillRate = time.Second
	}
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.take() {
			return nil
		}

		t := time.NewTimer(50 * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elapsed := time.Since(rl.lastRefill); elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens = min(rl.tokens+periods*rl.maxTokens, rl.maxTokens)
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
	if rl.tokens == 0 {
		return false
	}
	rl.tokens--
	return true
}
