package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process memory. Expired entries are swept
// every cleanup interval.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates an in-memory cache. A zero cleanup interval
// disables the background sweep; expired entries are still never returned.
func NewMemoryCache(cleanup time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, cleanup)}
}

// Get retrieves a value.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

// Set stores a copy of data.
func (m *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	exp := gocache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	m.c.Set(key, append([]byte(nil), data...), exp)
	return nil
}

// Delete removes a value.
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Clear drops every entry.
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.c.Flush()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (m *MemoryCache) Len() int { return m.c.ItemCount() }

// Close does nothing.
func (m *MemoryCache) Close() error { return nil }

var _ Cache = (*MemoryCache)(nil)
