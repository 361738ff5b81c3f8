// Package cache holds assembled comparison responses in memory for a
// short TTL so identical shopping lists don't re-hit the stores.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cartcompare/backend/internal/domain"
)

const (
	DefaultTTL        = 30 * time.Second
	DefaultMaxEntries = 1000
)

type entry struct {
	response  *domain.ComparisonResponse
	expiresAt time.Time
}

// ResponseCache is a thread-safe in-memory comparison cache with TTL and
// a capacity bound. Expired entries are swept lazily on insert; at
// capacity the entry closest to expiry goes first.
type ResponseCache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.RWMutex
	entries map[string]entry
}

// NewResponseCache creates a cache. Non-positive arguments fall back to
// defaults.
func NewResponseCache(ttl time.Duration, maxEntries int) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResponseCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
	}
}

// Get returns the cached response for key, or domain.ErrCacheMiss if the
// key is absent or expired.
func (c *ResponseCache) Get(ctx context.Context, key string) (*domain.ComparisonResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, domain.ErrCacheMiss
	}
	return e.response, nil
}

// Set stores a response under key with the configured TTL, evicting
// expired entries first and then the oldest entry if still at capacity.
func (c *ResponseCache) Set(ctx context.Context, key string, response *domain.ComparisonResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.expiresAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.expiresAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = entry{response: response, expiresAt: now.Add(c.ttl)}
	return nil
}

// Size returns the current number of entries, expired or not.
func (c *ResponseCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
