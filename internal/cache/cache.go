// Package cache provides a small generic LRU cache for values that are
// expensive to rebuild and requested repeatedly by parallel stages.
//
//	c := cache.New[int, geom.Polygons](256)
//	band := c.GetOrCreate(key, func() geom.Polygons { return build(key) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache

import (
	"sync"
	"sync/atomic"
)

// Cache is a thread-safe LRU cache with a fixed capacity. A capacity of 0
// means unlimited.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	lru      lruList[K, V]
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

type entry[K comparable, V any] struct {
	node  lruNode[K, V]
	value V
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: capacity,
	}
}

// Get returns the value for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.lru.moveToFront(&e.node)
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *Cache[K, V]) set(key K, value V) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.lru.moveToFront(&e.node)
		return
	}
	e := &entry[K, V]{value: value}
	e.node.key = key
	c.entries[key] = e
	c.lru.pushFront(&e.node)

	if c.capacity > 0 && len(c.entries) > c.capacity {
		if old, ok := c.lru.removeOldest(); ok {
			delete(c.entries, old)
		}
	}
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create runs without the lock held, so two goroutines missing the
// same key may both call it; the first result stored wins.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.lru.moveToFront(&e.node)
		return e.value
	}
	c.set(key, v)
	return v
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports lookups since creation.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// Stats returns the current entry count and hit/miss counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{Len: c.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
