// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides an in-memory cache of post sources. This is the L1
// cache: it avoids recompiling a block design or reconverting Markdown on
// every render. Entries are keyed by post ID and version, so any update
// (which bumps the version) automatically produces a cache miss.
package engine

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// cacheKey uniquely identifies a compiled post version.
type cacheKey struct {
	id      uuid.UUID
	version int
}

// sourceCache is a concurrency-safe in-memory cache of compiled sources.
type sourceCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]string
}

func newSourceCache() *sourceCache {
	return &sourceCache{
		entries: make(map[cacheKey]string),
	}
}

// get retrieves a compiled source. The bool is false on miss.
func (c *sourceCache) get(id uuid.UUID, version int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[cacheKey{id: id, version: version}]
	return s, ok
}

// put stores a compiled source, dropping older versions of the same post.
func (c *sourceCache) put(id uuid.UUID, version int, src string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id && k.version != version {
			delete(c.entries, k)
		}
	}
	c.entries[cacheKey{id: id, version: version}] = src
	slog.Debug("post source cached", "id", id, "version", version, "size", len(c.entries))
}

// invalidate removes all cached versions of a post.
func (c *sourceCache) invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.id == id {
			delete(c.entries, k)
		}
	}
}

// invalidateAll clears the entire cache.
func (c *sourceCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]string)
	slog.Debug("post source cache fully cleared")
}

func (c *sourceCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
