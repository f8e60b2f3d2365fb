// Package cache memoizes model completions so repeated runs over the
// same input do not spend tokens twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"scrooge/internal/interfaces"
)

// CompletionCache stores model completions keyed by model, token limit
// and prompt. Entries expire after a TTL and the cache holds a bounded
// number of entries.
type CompletionCache struct {
	entries    map[string]*cacheEntry
	mutex      sync.Mutex
	ttl        time.Duration
	maxEntries int
}

type cacheEntry struct {
	completion string
	timestamp  time.Time
	hits       int64
}

// NewCompletionCache creates a completion cache. Non-positive arguments
// fall back to 15 minutes and 256 entries.
func NewCompletionCache(ttl time.Duration, maxEntries int) *CompletionCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}

	return &CompletionCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns a cached completion if present and not expired
func (c *CompletionCache) Get(model string, maxTokens int, prompt string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[c.key(model, maxTokens, prompt)]
	if !exists {
		return "", false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return "", false
	}

	entry.hits++
	return entry.completion, true
}

// Set stores a completion, evicting the oldest entry when full
func (c *CompletionCache) Set(model string, maxTokens int, prompt string, completion string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := c.key(model, maxTokens, prompt)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		completion: completion,
		timestamp:  time.Now(),
	}
}

// Clear removes all entries from the cache
func (c *CompletionCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*cacheEntry)
}

// Stats returns cache statistics
func (c *CompletionCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var totalHits int64
	var expired int
	now := time.Now()

	for _, entry := range c.entries {
		totalHits += entry.hits
		if now.Sub(entry.timestamp) > c.ttl {
			expired++
		}
	}

	return CacheStats{
		TotalEntries:   len(c.entries),
		ExpiredEntries: expired,
		TotalHits:      totalHits,
		TTL:            c.ttl,
		MaxEntries:     c.maxEntries,
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	TotalHits      int64
	TTL            time.Duration
	MaxEntries     int
}

// CleanupExpired removes expired entries and reports how many went
func (c *CompletionCache) CleanupExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var removed int
	now := time.Now()

	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// key builds a deterministic short key for a completion request
func (c *CompletionCache) key(model string, maxTokens int, prompt string) string {
	hasher := sha256.New()
	fmt.Fprintf(hasher, "%s|%d|", model, maxTokens)
	hasher.Write([]byte(prompt))
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

// evictOldest removes the oldest entry, preferring the one with the
// fewest hits among equally old entries
func (c *CompletionCache) evictOldest() {
	var victim string
	var victimTime time.Time
	var victimHits int64 = -1

	for key, entry := range c.entries {
		older := victim == "" || entry.timestamp.Before(victimTime)
		tied := victim != "" && entry.timestamp.Equal(victimTime)
		if older || (tied && entry.hits < victimHits) {
			victim = key
			victimTime = entry.timestamp
			victimHits = entry.hits
		}
	}

	if victim != "" {
		delete(c.entries, victim)
	}
}

// CachedModelClient wraps a model client with completion caching. It
// implements interfaces.ModelClient.
type CachedModelClient struct {
	client interfaces.ModelClient
	cache  *CompletionCache
}

// NewCachedModelClient decorates a model client with the given cache
func NewCachedModelClient(client interfaces.ModelClient, cache *CompletionCache) *CachedModelClient {
	return &CachedModelClient{
		client: client,
		cache:  cache,
	}
}

// Complete returns a cached completion when available, otherwise calls
// the underlying client and stores the result
func (c *CachedModelClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if completion, found := c.cache.Get(c.client.ModelName(), maxTokens, prompt); found {
		return completion, nil
	}

	completion, err := c.client.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", err
	}

	c.cache.Set(c.client.ModelName(), maxTokens, prompt, completion)
	return completion, nil
}

// ModelName reports the underlying client's model
func (c *CachedModelClient) ModelName() string {
	return c.client.ModelName()
}

// Stats exposes the cache statistics
func (c *CachedModelClient) Stats() CacheStats {
	return c.cache.Stats()
}
