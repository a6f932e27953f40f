// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a generic LRU cache.
//
// Cache[K, V] keeps at most a fixed number of entries and evicts the least
// recently used one when a new entry would exceed the limit. An optional
// callback observes every entry that leaves the cache, which lets owners
// release resources held by evicted values.
//
//	c := cache.NewWithEvict[string, *Program](16, func(_ string, p *Program) {
//		p.Destroy()
//	})
//	p, hit, err := c.GetOrCreate(key, build)
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation
// (it contains a mutex).
package cache
