// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import "sync"

// Cache is a generic thread-safe LRU cache with a hard limit.
// Inserting past the limit evicts the least recently used entry.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruNode[K, V]
	lru     lruList[K, V]
	limit   int
	onEvict func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a new cache holding at most limit entries.
// A limit of 0 means unlimited.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return NewWithEvict[K, V](limit, nil)
}

// NewWithEvict is like New but calls onEvict for every entry that leaves
// the cache through eviction, Delete or Clear. onEvict runs after the
// cache lock is released, so it may use the cache.
func NewWithEvict[K comparable, V any](limit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*lruNode[K, V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get retrieves a value from the cache and marks it most recently used.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.lru.MoveToFront(node)
	return node.value, true
}

// Peek is like Get but neither updates recency nor statistics.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[key]; ok {
		return node.value, true
	}
	var zero V
	return zero, false
}

// Set stores a value in the cache. Replacing the value of an existing key
// does not call onEvict for the old value.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	evicted := c.set(key, value)
	c.mu.Unlock()
	c.notify(evicted)
}

// GetOrCreate returns the cached value or creates and stores it.
// create is called under lock, so concurrent callers never create twice.
// A create error is returned as is and nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	if node, ok := c.entries[key]; ok {
		c.hits++
		c.lru.MoveToFront(node)
		c.mu.Unlock()
		return node.value, true, nil
	}
	c.misses++

	value, err := create()
	if err != nil {
		c.mu.Unlock()
		var zero V
		return zero, false, err
	}
	evicted := c.set(key, value)
	c.mu.Unlock()
	c.notify(evicted)
	return value, false, nil
}

// Delete removes an entry from the cache.
// Returns true if the entry was found and removed.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	node, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
		c.lru.Remove(node)
	}
	c.mu.Unlock()
	if ok {
		c.notify([]*lruNode[K, V]{node})
	}
	return ok
}

// Clear removes all entries from the cache.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	var removed []*lruNode[K, V]
	if c.onEvict != nil {
		removed = make([]*lruNode[K, V], 0, c.lru.Len())
		c.lru.Each(func(n *lruNode[K, V]) { removed = append(removed, n) })
	}
	c.entries = make(map[K]*lruNode[K, V])
	c.lru.Clear()
	c.mu.Unlock()
	c.notify(removed)
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Capacity returns the limit of the cache.
func (c *Cache[K, V]) Capacity() int {
	return c.limit
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// set stores value and returns the nodes evicted to make room.
// Caller must hold c.mu.
func (c *Cache[K, V]) set(key K, value V) []*lruNode[K, V] {
	if node, ok := c.entries[key]; ok {
		node.value = value
		c.lru.MoveToFront(node)
		return nil
	}
	c.entries[key] = c.lru.PushFront(key, value)

	var evicted []*lruNode[K, V]
	for c.limit > 0 && c.lru.Len() > c.limit {
		node := c.lru.RemoveOldest()
		delete(c.entries, node.key)
		c.evictions++
		evicted = append(evicted, node)
	}
	return evicted
}

func (c *Cache[K, V]) notify(nodes []*lruNode[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, n := range nodes {
		c.onEvict(n.key, n.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the cache limit.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is the cache hit rate 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries dropped to stay within the limit.
	Evictions uint64
}
