// Package cache stores the last verified locator per (page key,
// semantic id). Entries are advisory: losing the cache never changes
// correctness, only cost.
//
// The cache is process-wide shared state accessed by many concurrent
// sessions; one mutex guards both the map and the recency list so
// eviction bookkeeping stays atomic with reads.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/devicelab-dev/locator-resolver/pkg/core"
)

// DefaultMaxEntries bounds the cache when no limit is configured.
const DefaultMaxEntries = 1024

// Key identifies one cached locator.
type Key struct {
	PageKey    string
	SemanticID core.SemanticID
}

// Entry is a cached locator with its verification metadata.
type Entry struct {
	Key            Key
	Locator        core.Locator
	LastVerifiedAt time.Time
	HitCount       int
}

// Cache is a bounded least-recently-verified cache. At most one entry
// exists per key; writes are last-verified-wins.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*list.Element
	order   *list.List // front = most recently verified
	max     int
	now     func() time.Time
}

// New creates a cache bounded to max entries. max <= 0 uses
// DefaultMaxEntries.
func New(max int) *Cache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache{
		entries: make(map[Key]*list.Element),
		order:   list.New(),
		max:     max,
		now:     time.Now,
	}
}

// Get returns the cached locator for the key, refreshing its recency.
// The recency refresh happens under the same lock as the read so
// concurrent gets cannot lose updates.
func (c *Cache) Get(pageKey string, id core.SemanticID) (core.Locator, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[Key{pageKey, id}]
	if !ok {
		return core.Locator{}, false
	}
	entry := elem.Value.(*Entry)
	entry.HitCount++
	c.order.MoveToFront(elem)
	return entry.Locator, true
}

// Put stores a verified locator, evicting the least recently verified
// entry when the bound is exceeded.
func (c *Cache) Put(pageKey string, id core.SemanticID, loc core.Locator) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{pageKey, id}
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*Entry)
		entry.Locator = loc
		entry.LastVerifiedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&Entry{
		Key:            key,
		Locator:        loc,
		LastVerifiedAt: c.now(),
	})
	c.entries[key] = elem

	if c.order.Len() > c.max {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*Entry).Key)
		}
	}
}

// Touch marks an existing entry as re-verified without changing its
// locator. No-op if the key is absent.
func (c *Cache) Touch(pageKey string, id core.SemanticID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[Key{pageKey, id}]; ok {
		elem.Value.(*Entry).LastVerifiedAt = c.now()
		c.order.MoveToFront(elem)
	}
}

// Invalidate removes the entry for the key, if present.
func (c *Cache) Invalidate(pageKey string, id core.SemanticID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key{pageKey, id}
	if elem, ok := c.entries[key]; ok {
		c.order.Remove(elem)
		delete(c.entries, key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Entries returns a snapshot of all entries, most recently verified
// first, for diagnostics and reporting.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, *elem.Value.(*Entry))
	}
	return out
}
