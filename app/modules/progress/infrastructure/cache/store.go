// Package progresscache holds the cache region owned by the top achievers engine.
package progresscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a key/value cache with per-entry expiry. Writes overwrite; the last
// writer wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Evict(ctx context.Context, key string) error
}

// TopAchieversKey is the cache key of a game's top achievers.
func TopAchieversKey(gameID int64) string {
	return fmt.Sprintf("game:%d:topachievers", gameID)
}

// GetJSON decodes the cached value of key into a T.
func GetJSON[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	return out, true, nil
}

// PutJSON encodes value and stores it under key.
func PutJSON[T any](ctx context.Context, store Store, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	return store.Put(ctx, key, raw, ttl)
}
