// Package rastercache holds filtered layer rasters between renders.
//
// Entries are keyed by layer ID and tagged with the layer's content version.
// A lookup with a different version is a miss, so a layer whose pixels or
// filters changed is re-filtered exactly once on its next render.
package rastercache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"
)

// Default cache configuration constants.
const (
	// DefaultMaxSizeMB is the default maximum cache size in megabytes.
	DefaultMaxSizeMB = 64
	// bytesPerMB is the number of bytes in a megabyte.
	bytesPerMB = 1024 * 1024
	// bytesPerPixel is the number of bytes per RGBA pixel.
	bytesPerPixel = 4
)

// Cache is an LRU cache of filtered rasters bounded by a memory budget.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	lru     *list.List // front = most recent
	size    int64
	maxSize int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	stores    atomic.Uint64
	evictions atomic.Uint64
}

type entry struct {
	id      string
	pixmap  *gg.Pixmap
	size    int64
	version uint64
	element *list.Element
}

// Stats contains cache statistics for monitoring.
type Stats struct {
	// Size is the current memory usage in bytes.
	Size int64
	// MaxSize is the memory budget in bytes.
	MaxSize int64
	// Entries is the number of cached rasters.
	Entries int
	// Hits counts lookups that found a raster at the requested version.
	Hits uint64
	// Misses counts lookups that found nothing or a stale raster.
	Misses uint64
	// Stores counts rasters written with Put.
	Stores uint64
	// Evictions counts rasters dropped for space or invalidation.
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New creates a cache with the given budget in megabytes.
// Non-positive values select DefaultMaxSizeMB.
func New(maxSizeMB int) *Cache {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxSizeMB
	}
	return &Cache{
		entries: make(map[string]*entry),
		lru:     list.New(),
		maxSize: int64(maxSizeMB) * bytesPerMB,
	}
}

// Get returns the raster cached for id if it was stored at version.
// A hit moves the entry to the front of the LRU list.
func (c *Cache) Get(id string, version uint64) (*gg.Pixmap, bool) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok || e.version != version {
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(e.element)
	pixmap := e.pixmap
	c.mu.Unlock()

	c.hits.Add(1)
	return pixmap, true
}

// Put stores pixmap as the raster for id at version, replacing any older
// raster for the same id. Rasters larger than the whole budget are counted
// as stored but not retained.
func (c *Cache) Put(id string, version uint64, pixmap *gg.Pixmap) {
	if pixmap == nil {
		return
	}
	c.stores.Add(1)

	sz := int64(pixmap.Width()) * int64(pixmap.Height()) * bytesPerPixel
	if sz <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[id]; ok {
		c.size -= existing.size
		c.lru.Remove(existing.element)
		delete(c.entries, id)
	}
	if sz > c.maxSize {
		return
	}

	c.evictUntilSize(c.maxSize - sz)

	e := &entry{id: id, pixmap: pixmap, size: sz, version: version}
	e.element = c.lru.PushFront(e)
	c.entries[id] = e
	c.size += sz
}

// Invalidate drops the raster for id, if any.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[id]; ok {
		c.lru.Remove(e.element)
		c.size -= e.size
		delete(c.entries, id)
		c.evictions.Add(1)
	}
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n := uint64(len(c.entries)); n > 0 {
		c.evictions.Add(n)
	}
	c.entries = make(map[string]*entry)
	c.lru.Init()
	c.size = 0
}

// Contains reports whether id has a raster at version without touching
// LRU order or statistics.
func (c *Cache) Contains(id string, version uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return ok && e.version == version
}

// evictUntilSize must be called with c.mu held.
func (c *Cache) evictUntilSize(target int64) {
	for c.size > target && c.lru.Len() > 0 {
		elem := c.lru.Back()
		e := elem.Value.(*entry)
		c.lru.Remove(elem)
		c.size -= e.size
		delete(c.entries, e.id)
		c.evictions.Add(1)
	}
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	s := Stats{Size: c.size, MaxSize: c.maxSize, Entries: len(c.entries)}
	c.mu.RUnlock()

	s.Hits = c.hits.Load()
	s.Misses = c.misses.Load()
	s.Stores = c.stores.Load()
	s.Evictions = c.evictions.Load()
	return s
}

// ResetStats zeroes the counters.
func (c *Cache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.stores.Store(0)
	c.evictions.Store(0)
}
