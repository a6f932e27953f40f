// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	c := New[string, int](100)
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)
	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok || val != 42 {
		t.Errorf("Get(key1) = %d, %v, want 42, true", val, ok)
	}
	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}

	c.Set("key1", 7)
	if val, _ := c.Get("key1"); val != 7 {
		t.Errorf("Get(key1) after replace = %d, want 7", val)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewWithEvict[string, int](3, func(k string, _ int) { evicted = append(evicted, k) })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a") // b is now the oldest
	c.Set("d", 4)

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", evicted)
	}
	if _, ok := c.Peek("b"); ok {
		t.Error("b still cached")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Peek(k); !ok {
			t.Errorf("%s was evicted", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 3 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheReplaceDoesNotEvict(t *testing.T) {
	calls := 0
	c := NewWithEvict[string, int](2, func(string, int) { calls++ })
	c.Set("a", 1)
	c.Set("a", 2)
	if calls != 0 {
		t.Errorf("onEvict called %d times on replace", calls)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	created := 0
	create := func() (int, error) {
		created++
		return 42, nil
	}

	v, hit, err := c.GetOrCreate("k", create)
	if err != nil || hit || v != 42 {
		t.Fatalf("GetOrCreate() = %d, %v, %v", v, hit, err)
	}
	v, hit, err = c.GetOrCreate("k", create)
	if err != nil || !hit || v != 42 {
		t.Fatalf("second GetOrCreate() = %d, %v, %v", v, hit, err)
	}
	if created != 1 {
		t.Errorf("create called %d times, want 1", created)
	}

	boom := errors.New("boom")
	if _, _, err := c.GetOrCreate("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrCreate() error = %v, want boom", err)
	}
	if _, ok := c.Peek("bad"); ok {
		t.Error("failed create was stored")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 2 {
		t.Errorf("Stats() = %+v, want 1 hit and 2 misses", s)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	var evicted []int
	c := NewWithEvict[int, int](0, func(_ int, v int) { evicted = append(evicted, v) })
	for i := 0; i < 5; i++ {
		c.Set(i, i*10)
	}
	if !c.Delete(2) {
		t.Error("Delete(2) = false")
	}
	if c.Delete(2) {
		t.Error("second Delete(2) = true")
	}
	if len(evicted) != 1 || evicted[0] != 20 {
		t.Fatalf("evicted after Delete = %v", evicted)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if len(evicted) != 5 {
		t.Errorf("evicted after Clear = %v, want 5 values", evicted)
	}
}

func TestCacheCallbackMayReenter(t *testing.T) {
	var c *Cache[int, int]
	c = NewWithEvict[int, int](1, func(k, _ int) {
		// Runs without the lock held.
		_ = c.Len()
	})
	c.Set(1, 1)
	c.Set(2, 2)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := strconv.Itoa((g*200 + i) % 100)
				c.Set(k, i)
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("Len() = %d, want <= 64", c.Len())
	}
}
