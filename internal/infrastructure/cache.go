package infrastructure

import (
	"strings"
	"sync"
	"time"
)

// cacheEntry is a stored value with an absolute expiry.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache for slow-changing catalog
// responses (field definitions, issue types, link types). Expiry is
// checked on read and expired entries are removed on touch; there is no
// background sweeper. Concurrent lookups of a missing key may each invoke
// the producer in WithCache, which is accepted for this workload: the
// producers are idempotent reads and the last write wins.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	defaultTTL time.Duration
	metrics    *MetricsCollector
}

// NewMemoryCache creates a cache whose Set calls fall back to defaultTTL
// when no positive TTL is supplied. The metrics collector may be nil.
func NewMemoryCache(defaultTTL time.Duration, metrics *MetricsCollector) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]cacheEntry),
		defaultTTL: defaultTTL,
		metrics:    metrics,
	}
}

// Get returns the value stored under key. An entry whose expiry has
// passed is deleted and reported absent.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; the entry may have been
		// refreshed since the read
		if current, ok := c.entries[key]; ok && time.Now().After(current.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.metrics.RecordCacheMiss()
		return nil, false
	}

	c.metrics.RecordCacheHit()
	return entry.value, true
}

// Set stores value under key. A TTL of zero or below means the
// configured default.
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

// Delete removes the entry stored under key, if any.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including entries whose
// expiry has passed but has not yet been observed by a read.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// WithCache returns the cached value for key when present; otherwise it
// calls producer exactly once, stores a successful result under key with
// the given TTL, and returns it. Producer errors are propagated and
// nothing is stored. The producer runs without holding the cache lock.
func (c *MemoryCache) WithCache(key string, ttl time.Duration, producer func() (interface{}, error)) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := producer()
	if err != nil {
		return nil, err
	}

	c.Set(key, value, ttl)
	return value, nil
}

// Cache key generators for the cached catalog endpoints. Keys are
// namespaced so ad hoc entries cannot collide with catalog entries.

// FieldCatalogKey is the cache key for the field catalog.
func FieldCatalogKey() string {
	return "catalog:fields"
}

// ProjectIssueTypesKey is the cache key for one project's issue types.
// The project key is normalized so lookups are case-insensitive.
func ProjectIssueTypesKey(projectKey string) string {
	return "catalog:issue-types:" + strings.ToUpper(strings.TrimSpace(projectKey))
}

// LinkTypesKey is the cache key for the issue link type catalog.
func LinkTypesKey() string {
	return "catalog:link-types"
}
