// Package availability answers stock/price availability questions for
// medicines through an external store API, with a TTL cache in front so
// repeated lookups do not hammer the API.
package availability

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Status is the tri-state availability answer.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusUnknown     Status = "unknown"
)

// Cache stores availability statuses keyed by medicine name with a TTL.
// A miss (expired or never stored) returns ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (Status, bool)
	Put(ctx context.Context, key string, status Status, ttl time.Duration)
}

// MemoryCache is an in-process Cache with per-entry expiry, for single-node
// deployments and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	status    Status
	expiresAt time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns the cached status for key, if present and not expired.
func (c *MemoryCache) Get(ctx context.Context, key string) (Status, bool) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(key)]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return StatusUnknown, false
	}
	return entry.status, true
}

// Put stores status for key with the given ttl.
func (c *MemoryCache) Put(ctx context.Context, key string, status Status, ttl time.Duration) {
	c.mu.Lock()
	c.entries[cacheKey(key)] = memoryEntry{
		status:    status,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
