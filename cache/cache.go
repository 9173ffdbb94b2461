// Package cache provides memoization for set-expression evaluations.
// Rendering re-evaluates the current formula on every request; caching
// keyed by formula and region geometry avoids recomputing masks when the
// board has not moved.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/pflow-xyz/go-venn/geometry"
)

// ResultCache caches evaluation results keyed by a hash of the formula
// and region geometry.
type ResultCache struct {
	mu        sync.Mutex
	cache     map[string]*bitset.BitSet
	maxSize   int
	hits      int64
	misses    int64
	evictions int64
}

// NewResultCache creates a cache with the specified maximum size.
// When the cache is full, an arbitrary entry is evicted.
// Set maxSize to 0 for an unlimited cache.
func NewResultCache(maxSize int) *ResultCache {
	return &ResultCache{
		cache:   make(map[string]*bitset.BitSet),
		maxSize: maxSize,
	}
}

// Key creates a deterministic hash of a formula and region geometry.
// Any region move or radius change produces a different key.
func Key(formula string, regions []geometry.Region) string {
	h := sha256.New()
	h.Write([]byte(formula))
	buf := make([]byte, 8)
	for _, r := range regions {
		h.Write([]byte{0})
		h.Write([]byte(r.Name))
		for _, v := range []float64{r.Circle.X, r.Circle.Y, r.Circle.R} {
			binary.BigEndian.PutUint64(buf, math.Float64bits(v))
			h.Write(buf)
		}
	}
	return string(h.Sum(nil))
}

// Get retrieves a cached result for the given key.
// Returns nil if not found. The returned vector is a copy; mutating it
// does not affect the cached entry.
func (c *ResultCache) Get(key string) *bitset.BitSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	if result, ok := c.cache[key]; ok {
		c.hits++
		return result.Clone()
	}
	c.misses++
	return nil
}

// Put stores a result in the cache. The vector is copied on the way in.
func (c *ResultCache) Put(key string, result *bitset.BitSet) {
	if result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.cache) >= c.maxSize {
		for k := range c.cache {
			delete(c.cache, k)
			c.evictions++
			break
		}
	}
	c.cache[key] = result.Clone()
}

// Stats returns cache hit/miss/eviction counters.
func (c *ResultCache) Stats() (hits, misses, evictions int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Clear removes all entries and resets counters.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*bitset.BitSet)
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}
