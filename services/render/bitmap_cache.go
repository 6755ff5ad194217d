// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package render rasterizes symbol grids onto a drawing surface.
//
// The render package implements the interactive half of the pattern
// pipeline:
//   - Rasterizer produces pixel rasters for individual symbols
//   - BitmapCache memoizes rasters with LRU eviction
//   - Scheduler coalesces redraw requests to one paint per tick
//
// # Design Principles
//
// Rasters are ephemeral and always reproducible from (symbol, size).
// The cache is a latency optimization, not a source of truth: the hot
// draw path reads exclusively through the cache and never rasterizes
// inline.
//
// # Thread Safety
//
// BitmapCache and Scheduler are safe for concurrent use.
package render

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBitmapCapacity is the default maximum number of cached rasters.
const DefaultBitmapCapacity = 200

// rasterKey identifies one cached raster.
//
// The key includes the pixel size, not just the symbol: the same symbol at
// different sizes needs distinct rasters.
type rasterKey struct {
	symbol string
	size   int
}

// bitmapEntry is one cache slot with access bookkeeping.
type bitmapEntry struct {
	key          rasterKey
	raster       *Raster
	createdAt    time.Time
	lastAccessed time.Time
	lruElement   *list.Element
}

// BitmapCacheStats contains counters for the bitmap cache.
type BitmapCacheStats struct {
	// EntryCount is the number of rasters currently cached.
	EntryCount int

	// Hits is the number of cache hits.
	Hits int64

	// Misses is the number of cache misses (each miss rasterizes once).
	Misses int64

	// Evictions is the number of rasters evicted at capacity.
	Evictions int64

	// Capacity is the configured maximum entry count.
	Capacity int
}

// BitmapCache memoizes rasterized symbols keyed by (symbol, pixel size).
//
// On a miss the cache rasterizes through its Rasterizer, stores the result
// and evicts the least-recently-used entry once capacity is exceeded.
// Hits return the shared raster without touching the rasterizer, which is
// what keeps repeated redraws of the same grid cheap.
//
// Construct per consumer with NewBitmapCache; there is no global instance,
// so tests get isolated caches.
type BitmapCache struct {
	mu       sync.Mutex
	entries  map[rasterKey]*bitmapEntry
	lru      *list.List
	raster   Rasterizer
	capacity int

	hits      int64
	misses    int64
	evictions int64
}

// NewBitmapCache creates a cache backed by the given rasterizer.
//
// A capacity of 0 or less applies DefaultBitmapCapacity.
func NewBitmapCache(r Rasterizer, capacity int) *BitmapCache {
	if capacity <= 0 {
		capacity = DefaultBitmapCapacity
	}
	return &BitmapCache{
		entries:  make(map[rasterKey]*bitmapEntry),
		lru:      list.New(),
		raster:   r,
		capacity: capacity,
	}
}

// Get returns the raster for (symbol, size), rasterizing on miss.
//
// The returned raster is shared: callers must treat it as read-only.
func (c *BitmapCache) Get(symbol string, size int) (*Raster, error) {
	key := rasterKey{symbol: symbol, size: size}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.lastAccessed = time.Now()
		c.lru.MoveToFront(entry.lruElement)
		atomic.AddInt64(&c.hits, 1)
		raster := entry.raster
		c.mu.Unlock()
		recordCount(bitmapHits)
		return raster, nil
	}
	c.mu.Unlock()

	// Rasterize outside the lock; worst case a concurrent miss rasterizes
	// the same key twice and the second store wins harmlessly.
	raster, err := c.raster.Rasterize(symbol, size)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		// Lost the race; reuse the stored raster.
		c.lru.MoveToFront(entry.lruElement)
		return entry.raster, nil
	}

	atomic.AddInt64(&c.misses, 1)
	recordCount(bitmapMisses)
	c.evictIfNeeded()

	now := time.Now()
	entry := &bitmapEntry{
		key:          key,
		raster:       raster,
		createdAt:    now,
		lastAccessed: now,
	}
	entry.lruElement = c.lru.PushFront(key)
	c.entries[key] = entry

	return raster, nil
}

// Contains reports whether (symbol, size) is cached, without touching
// access order.
func (c *BitmapCache) Contains(symbol string, size int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[rasterKey{symbol: symbol, size: size}]
	return ok
}

// Stats returns current cache counters.
func (c *BitmapCache) Stats() BitmapCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return BitmapCacheStats{
		EntryCount: len(c.entries),
		Hits:       atomic.LoadInt64(&c.hits),
		Misses:     atomic.LoadInt64(&c.misses),
		Evictions:  atomic.LoadInt64(&c.evictions),
		Capacity:   c.capacity,
	}
}

// Clear removes all cached rasters.
func (c *BitmapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[rasterKey]*bitmapEntry)
	c.lru.Init()
}

// evictIfNeeded removes least-recently-used entries until one slot is free.
//
// Caller must hold c.mu.
func (c *BitmapCache) evictIfNeeded() {
	for len(c.entries) >= c.capacity {
		back := c.lru.Back()
		if back == nil {
			return
		}
		key := back.Value.(rasterKey)
		c.lru.Remove(back)
		delete(c.entries, key)
		atomic.AddInt64(&c.evictions, 1)
		recordCount(bitmapEvictions)
	}
}
