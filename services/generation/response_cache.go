// Copyright (C) 2026 Glyphloom (hello@glyphloom.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package generation

import (
	"container/list"
	"sync"
	"time"
)

// responseEntry is one cached generation result.
type responseEntry struct {
	sig          signature
	result       *Result
	createdAt    time.Time
	lastAccessed time.Time
	lruElement   *list.Element
}

// ResponseCache memoizes generation results keyed by normalized
// (prompt, language).
//
// Entries expire TTL after creation and are evicted lazily on lookup;
// when the cache is at capacity, expired entries go first and the least
// recently used entry second. Stored results are treated as immutable and
// shared; Get returns a copy so the caller can stamp its own Source.
//
// # Thread Safety
//
// ResponseCache is safe for concurrent use.
type ResponseCache struct {
	mu       sync.Mutex
	entries  map[signature]*responseEntry
	lru      *list.List
	ttl      time.Duration
	capacity int

	hits   int64
	misses int64

	// now is swappable in tests.
	now func() time.Time
}

// NewResponseCache creates a cache with the given TTL and capacity.
//
// Non-positive values apply DefaultResponseTTL and DefaultResponseCapacity.
func NewResponseCache(ttl time.Duration, capacity int) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	if capacity <= 0 {
		capacity = DefaultResponseCapacity
	}
	return &ResponseCache{
		entries:  make(map[signature]*responseEntry),
		lru:      list.New(),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns a copy of the cached result for (prompt, language).
//
// Expired entries are removed on lookup and reported as misses.
func (c *ResponseCache) Get(prompt, language string) (*Result, bool) {
	sig := normalize(prompt, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sig]
	if !ok {
		c.misses++
		return nil, false
	}

	if c.expired(entry) {
		c.removeLocked(entry)
		c.misses++
		return nil, false
	}

	entry.lastAccessed = c.now()
	c.lru.MoveToFront(entry.lruElement)
	c.hits++

	// Copy the sequence too: a caller mutating its result must not reach
	// the cached backing array.
	out := *entry.result
	out.Sequence = append([]string(nil), entry.result.Sequence...)
	return &out, true
}

// Put stores a result for (prompt, language), evicting as needed.
//
// The write is visible to every Get issued after Put returns.
func (c *ResponseCache) Put(prompt, language string, result *Result) {
	sig := normalize(prompt, language)

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[sig]; ok {
		entry.result = result
		entry.createdAt = c.now()
		entry.lastAccessed = entry.createdAt
		c.lru.MoveToFront(entry.lruElement)
		return
	}

	c.evictIfNeededLocked()

	now := c.now()
	entry := &responseEntry{
		sig:          sig,
		result:       result,
		createdAt:    now,
		lastAccessed: now,
	}
	entry.lruElement = c.lru.PushFront(sig)
	c.entries[sig] = entry
}

// Len returns the current number of cached entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// expired reports whether an entry is past its TTL. Caller holds c.mu.
func (c *ResponseCache) expired(entry *responseEntry) bool {
	return c.now().After(entry.createdAt.Add(c.ttl))
}

// evictIfNeededLocked frees one slot: expired entries first, then LRU.
func (c *ResponseCache) evictIfNeededLocked() {
	if len(c.entries) < c.capacity {
		return
	}

	// Sweep from the LRU tail for expired entries first.
	for e := c.lru.Back(); e != nil; {
		prev := e.Prev()
		if entry := c.entries[e.Value.(signature)]; entry != nil && c.expired(entry) {
			c.removeLocked(entry)
		}
		e = prev
	}

	for len(c.entries) >= c.capacity {
		back := c.lru.Back()
		if back == nil {
			return
		}
		c.removeLocked(c.entries[back.Value.(signature)])
	}
}

// removeLocked deletes an entry. Caller holds c.mu.
func (c *ResponseCache) removeLocked(entry *responseEntry) {
	if entry == nil {
		return
	}
	if entry.lruElement != nil {
		c.lru.Remove(entry.lruElement)
	}
	delete(c.entries, entry.sig)
}
