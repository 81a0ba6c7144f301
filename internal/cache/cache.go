// Package cache is an in-memory, process-local record cache with a fixed
// capacity and a sliding expiry. Entries evict oldest-first when full;
// expiry is checked lazily on read and by a periodic sweep.
package cache

import (
	"sync"
	"time"

	"github.com/mkardas/job-extractor/internal/clock"
	"github.com/mkardas/job-extractor/internal/jobs"
)

const (
	// DefaultTTL is how long an entry stays usable after insertion.
	DefaultTTL = 24 * time.Hour
	// DefaultCapacity bounds the number of live entries.
	DefaultCapacity = 100
)

type entry struct {
	record   jobs.JobRecord
	storedAt time.Time
}

// Cache maps normalized URLs (or text hashes) to extracted records.
// Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	keys     []string // insertion order, oldest first
	ttl      time.Duration
	capacity int
	clock    clock.Clock
}

// New builds a cache with the given bounds. Non-positive ttl or capacity
// fall back to the defaults.
func New(ttl time.Duration, capacity int, clk clock.Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		clock:    clk,
	}
}

// Get returns the cached record for key. An entry past its TTL is removed
// and reported as a miss.
func (c *Cache) Get(key string) (jobs.JobRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return jobs.JobRecord{}, false
	}
	if c.clock.Now().Sub(e.storedAt) > c.ttl {
		c.remove(key)
		return jobs.JobRecord{}, false
	}
	return e.record, true
}

// Set stores a record under key, evicting the oldest entry when the cache
// is at capacity. Overwriting an existing key refreshes its TTL but keeps
// its position in the eviction order.
func (c *Cache) Set(key string, record jobs.JobRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.keys) >= c.capacity {
			c.remove(c.keys[0])
		}
		c.keys = append(c.keys, key)
	}
	c.entries[key] = entry{record: record, storedAt: c.clock.Now()}
}

// Cleanup drops every expired entry and reports how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for _, key := range append([]string(nil), c.keys...) {
		if e, ok := c.entries[key]; ok && now.Sub(e.storedAt) > c.ttl {
			c.remove(key)
			removed++
		}
	}
	return removed
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.keys = nil
}

// Size reports the number of entries, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes key from both the map and the order slice.
// Callers must hold c.mu.
func (c *Cache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}
