// Package cache stores fetched basemap imagery between renders.
//
// Every backend implements [Cache]: a byte-slice key/value store with an
// optional per-entry TTL. [FileCache] is the CLI default and lives under the
// XDG cache directory; [MemoryCache] keeps entries for the life of the
// process; [RedisCache] shares them between machines; [NullCache] disables
// caching. [Tiered] layers a fast cache in front of a slower one.
//
// Keys come from a [Keyer] so that the same request always maps to the same
// entry regardless of backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store.
//
// Get reports a miss as (nil, false, nil); the error is reserved for backend
// failures. A TTL of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if it supports clearing and is a no-op otherwise.
func Clear(ctx context.Context, c Cache) error {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}
