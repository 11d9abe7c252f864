package cache

import (
	"context"
	"errors"
	"time"
)

// Tiered reads from front first and falls back to back, promoting hits.
// Writes go to both.
type Tiered struct {
	front, back Cache
}

// NewTiered layers front over back.
func NewTiered(front, back Cache) *Tiered {
	return &Tiered{front: front, back: back}
}

// Get retrieves a value, promoting back-tier hits to the front tier.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if data, ok, err := t.front.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, ok, err := t.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = t.front.Set(ctx, key, data, 0)
	return data, true, nil
}

// Set writes to both tiers.
func (t *Tiered) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return errors.Join(t.front.Set(ctx, key, data, ttl), t.back.Set(ctx, key, data, ttl))
}

// Delete removes from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	return errors.Join(t.front.Delete(ctx, key), t.back.Delete(ctx, key))
}

// Clear empties both tiers.
func (t *Tiered) Clear(ctx context.Context) error {
	return errors.Join(Clear(ctx, t.front), Clear(ctx, t.back))
}

// Close closes both tiers.
func (t *Tiered) Close() error {
	return errors.Join(t.front.Close(), t.back.Close())
}

var _ Cache = (*Tiered)(nil)
