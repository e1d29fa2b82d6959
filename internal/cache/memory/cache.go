// Package memory provides an in-memory key-value cache for development and
// tests.
package memory

import (
	"context"
	"sync"
)

// Cache is a mutex-guarded map implementing project.Cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the value for key, reporting absence via the boolean.
func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

// Put stores value under key with no expiration.
func (c *Cache) Put(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

// Delete removes key; used by tests to simulate an out-of-band purge.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
