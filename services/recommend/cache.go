package recommend

import (
	"strings"
	"sync"
	"time"

	"cinesage/models"
)

// memoryCache is a process-local TTL cache for resolved metadata. A stored
// nil summary is itself a valid entry: it records that a lookup resolved to
// nothing, so repeat lookups within the TTL skip the network entirely.
//
// The cache runs no background work of its own; expired entries are dropped
// lazily on read and in bulk by sweepExpired, which an external scheduler
// invokes. Concurrent fetches of the same cold key may race and duplicate an
// outbound call, but the last write wins and state stays consistent.
type memoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value  *models.MediaSummary
	expiry time.Time
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	return &memoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached summary for key. The second return value reports
// whether an unexpired entry exists; a (nil, true) result is a negative hit.
func (c *memoryCache) get(key string) (*models.MediaSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiry) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *memoryCache) set(key string, v *models.MediaSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: v, expiry: c.now().Add(c.ttl)}
}

// sweepExpired removes expired entries and returns how many were dropped.
// Live entries keep their original expiry; sweeping never resets the clock.
func (c *memoryCache) sweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiry) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey builds a namespaced key: the lookup key is lowercased and runs of
// whitespace collapse to single underscores, e.g. "search_the_matrix".
func cacheKey(prefix, key string) string {
	return prefix + "_" + strings.Join(strings.Fields(strings.ToLower(key)), "_")
}
