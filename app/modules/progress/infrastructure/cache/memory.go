package progresscache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Reads take no locks.
type MemoryStore struct {
	entries sync.Map
	now     func() time.Time
}

// NewMemoryStore returns an empty store. A nil clock uses time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := v.(*memoryEntry)
	if !s.now().Before(entry.expiresAt) {
		s.entries.CompareAndDelete(key, v)
		return nil, false, nil
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries.Store(key, &memoryEntry{value: stored, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Evict(_ context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0
	s.entries.Range(func(k, v any) bool {
		if !now.Before(v.(*memoryEntry).expiresAt) && s.entries.CompareAndDelete(k, v) {
			removed++
		}
		return true
	})
	return removed
}
