package progressdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// GetCacheEntry returns the unexpired entry for key.
func (r *Impl) GetCacheEntry(ctx context.Context, db bun.IDB, key string, now time.Time) (*CacheEntry, error) {
	db = r.resolveDB(db)
	entry := new(CacheEntry)
	err := db.NewSelect().
		Model(entry).
		Where("ce.cache_key = ?", key).
		Where("ce.expires_at > ?", now).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return entry, nil
}

// UpsertCacheEntry writes entry, replacing any previous value for its key.
func (r *Impl) UpsertCacheEntry(ctx context.Context, db bun.IDB, entry *CacheEntry) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(entry).
		On("CONFLICT (cache_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

// DeleteCacheEntry removes key. Deleting a missing key is not an error.
func (r *Impl) DeleteCacheEntry(ctx context.Context, db bun.IDB, key string) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().
		Model((*CacheEntry)(nil)).
		Where("cache_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteExpiredCacheEntries removes entries that expired at or before now.
func (r *Impl) DeleteExpiredCacheEntries(ctx context.Context, db bun.IDB, now time.Time) (int64, error) {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*CacheEntry)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
