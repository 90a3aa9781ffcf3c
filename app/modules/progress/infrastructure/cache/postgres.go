package progresscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// PostgresStore keeps entries in the cache_entries table so they survive restarts
// and are shared between replicas.
type PostgresStore struct {
	repo progressdb.CacheRepository
	db   bun.IDB
	now  func() time.Time
}

// NewPostgresStore returns a store backed by repo. A nil clock uses time.Now.
func NewPostgresStore(repo progressdb.CacheRepository, db bun.IDB, now func() time.Time) *PostgresStore {
	if now == nil {
		now = time.Now
	}
	return &PostgresStore{repo: repo, db: db, now: now}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := s.repo.GetCacheEntry(ctx, s.db, key, s.now())
	if err != nil {
		if errors.Is(err, progressdb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &progressdb.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.repo.UpsertCacheEntry(ctx, s.db, entry); err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Evict(ctx context.Context, key string) error {
	if err := s.repo.DeleteCacheEntry(ctx, s.db, key); err != nil {
		return fmt.Errorf("cache evict %q: %w", key, err)
	}
	return nil
}

// Sweep deletes expired rows.
func (s *PostgresStore) Sweep(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredCacheEntries(ctx, s.db, s.now())
}
