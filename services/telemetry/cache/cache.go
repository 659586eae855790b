// Copyright (C) 2025 OCI Coordinator Dashboards contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache provides the per-endpoint response cache: TTL-bounded,
// capacity-bounded, safe for concurrent use.
//
// Eviction is insertion-order FIFO, deliberately not access-order LRU.
// The dashboard's staleness characteristics were tuned against FIFO
// behavior — an entry that is read constantly still ages out at its
// insertion slot — so upgrading to LRU would change what users see,
// not just performance.
//
// A Cache is always an explicit handle passed into the query path,
// never a package-level singleton, so handlers stay instantiable and
// testable in isolation.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Defaults applied when a Config field is zero.
const (
	DefaultTTL      = 30 * time.Second
	DefaultCapacity = 100
)

// Config sets one logical cache's bounds.
type Config struct {
	// TTL is the maximum age at which an entry is still served.
	TTL time.Duration

	// Capacity is the maximum entry count; inserting beyond it evicts
	// the earliest-inserted entry.
	Capacity int
}

type entry struct {
	payload  any
	storedAt time.Time
}

// Cache is one logical response cache.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]entry

	// order holds keys oldest-insertion-first; index 0 is the next
	// eviction victim.
	order []string

	hits      int64
	misses    int64
	evictions int64

	// now is swapped in tests to control entry age.
	now func() time.Time
}

// New creates a cache, applying defaults to zero Config fields.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &Cache{
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		entries:  make(map[string]entry),
		now:      time.Now,
	}
}

// Key canonicalizes a query into a cache key: the kind plus every
// parameter in sorted order, so equivalent queries with parameters in
// different order collide to the same entry.
func Key(kind string, params map[string]string) string {
	if len(params) == 0 {
		return kind
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(kind)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}

// Get returns the cached payload and its age. An entry past its TTL is
// removed and reported as a miss.
func (c *Cache) Get(key string) (payload any, age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found {
		c.misses++
		return nil, 0, false
	}

	age = c.now().Sub(e.storedAt)
	if age >= c.ttl {
		c.remove(key)
		c.misses++
		return nil, 0, false
	}

	c.hits++
	return e.payload, age, true
}

// Put stores a payload. Re-putting an existing key counts as a fresh
// insertion: the entry moves to the back of the eviction order.
func (c *Cache) Put(key string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.remove(key)
	}

	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		c.remove(c.order[0])
		c.evictions++
	}

	c.entries[key] = entry{payload: payload, storedAt: c.now()}
	c.order = append(c.order, key)
}

// Invalidate drops one entry if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// Clear drops every entry. Stats are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.order = c.order[:0]
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hitRate"`
	Capacity  int     `json:"capacity"`
	TTLSecs   int64   `json:"ttlSeconds"`
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   rate,
		Capacity:  c.capacity,
		TTLSecs:   int64(c.ttl.Seconds()),
	}
}

// remove deletes key from both the map and the order slice.
// Caller must hold the lock.
func (c *Cache) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
