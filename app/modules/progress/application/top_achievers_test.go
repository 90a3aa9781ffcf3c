package progressservice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

const setSize = 40

// masteryLeaders returns n masters of a setSize game in scan order (earliest mastery first)
// followed by partial players.
func masteryLeaders(n, partial int) []progressdb.HardcoreLeaderRow {
	rows := make([]progressdb.HardcoreLeaderRow, 0, n+partial)
	for i := 1; i <= n; i++ {
		rows = append(rows, progressdb.HardcoreLeaderRow{
			UserID:          int64(i),
			Username:        fmt.Sprintf("master%02d", i),
			NumAchievements: setSize,
			TotalScore:      400,
			LastAward:       at(i),
		})
	}
	for i := 1; i <= partial; i++ {
		rows = append(rows, progressdb.HardcoreLeaderRow{
			UserID:          int64(100 + i),
			Username:        fmt.Sprintf("partial%02d", i),
			NumAchievements: setSize - i,
			TotalScore:      400 - 10*i,
			LastAward:       at(100 + i),
		})
	}
	return rows
}

func leadersRepo(rows []progressdb.HardcoreLeaderRow) *FakeProgressRepo {
	repo := NewFakeProgressRepo()
	repo.CountOfficialCoreFunc = func(context.Context, bun.IDB, int64) (int, error) {
		return setSize, nil
	}
	repo.GetHardcoreLeadersFunc = func(context.Context, bun.IDB, int64) ([]progressdb.HardcoreLeaderRow, error) {
		return rows, nil
	}
	return repo
}

func TestGetTopAchieversKeepsTenMostRecentMasters(t *testing.T) {
	ctx := context.Background()
	repo := leadersRepo(masteryLeaders(12, 3))
	store := progresscache.NewMemoryStore(nil)
	svc := newTestService(repo, store, Options{})

	got, err := svc.GetTopAchievers(ctx, 42)
	require.NoError(t, err)

	require.Len(t, got.Masters, progressdomain.TopAchieversLimit)
	for i, m := range got.Masters {
		assert.Equal(t, progressdomain.UserID(i+3), m.UserID, "oldest retained mastery first")
		assert.Equal(t, i+3, m.Rank)
	}
	require.Len(t, got.HighScores, progressdomain.TopAchieversLimit)
	assert.Equal(t, progressdomain.UserID(1), got.HighScores[0].UserID)

	_, cached, err := store.Get(ctx, progresscache.TopAchieversKey(42))
	require.NoError(t, err)
	assert.True(t, cached, "full masters list is cached")

	again, err := svc.GetTopAchievers(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(got, again))
	assert.Equal(t, 1, repo.Count("GetHardcoreLeaders"), "second read is served from cache")

	require.NoError(t, svc.ExpireTopAchievers(ctx, 42))
	require.NoError(t, svc.ExpireTopAchievers(ctx, 42), "purging twice is harmless")

	recomputed, err := svc.GetTopAchievers(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(got, recomputed))
	assert.Equal(t, 2, repo.Count("GetHardcoreLeaders"))
}

func TestGetTopAchieversCachePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("partial masters list is never cached", func(t *testing.T) {
		repo := leadersRepo(masteryLeaders(9, 4))
		store := NewFakeStore()
		svc := newTestService(repo, store, Options{})

		got, err := svc.GetTopAchievers(ctx, 42)
		require.NoError(t, err)
		assert.Len(t, got.Masters, 9)
		assert.Equal(t, []string{"Get"}, store.Trace())
	})

	t.Run("full list is cached with the configured ttl", func(t *testing.T) {
		repo := leadersRepo(masteryLeaders(10, 0))
		store := NewFakeStore()
		svc := newTestService(repo, store, Options{TopAchieversTTL: 6 * time.Hour})

		_, err := svc.GetTopAchievers(ctx, 42)
		require.NoError(t, err)
		require.Len(t, store.puts, 1)
		assert.Equal(t, "game:42:topachievers", store.puts[0].key)
		assert.Equal(t, 6*time.Hour, store.puts[0].ttl)
	})

	t.Run("cache failures fall back to storage", func(t *testing.T) {
		repo := leadersRepo(masteryLeaders(10, 0))
		store := NewFakeStore()
		store.GetFunc = func(context.Context, string) ([]byte, bool, error) {
			return nil, false, errors.New("cache down")
		}
		store.PutFunc = func(context.Context, string, []byte, time.Duration) error {
			return errors.New("cache down")
		}
		svc := newTestService(repo, store, Options{})

		got, err := svc.GetTopAchievers(ctx, 42)
		require.NoError(t, err)
		assert.Len(t, got.Masters, 10)
	})

	t.Run("cached value is returned verbatim", func(t *testing.T) {
		repo := leadersRepo(nil)
		store := progresscache.NewMemoryStore(nil)
		stale := progressdomain.TopAchievers{
			HighScores: []progressdomain.TopAchiever{{UserID: 5, Username: "cached"}},
			Masters:    []progressdomain.TopAchiever{},
		}
		require.NoError(t, progresscache.PutJSON(ctx, store, progresscache.TopAchieversKey(42), stale, time.Hour))
		svc := newTestService(repo, store, Options{})

		got, err := svc.GetTopAchievers(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, stale, got)
		assert.Empty(t, repo.Trace())
	})

	t.Run("evict errors surface", func(t *testing.T) {
		store := NewFakeStore()
		store.EvictFunc = func(context.Context, string) error { return errors.New("cache down") }
		svc := newTestService(NewFakeProgressRepo(), store, Options{})

		assert.Error(t, svc.ExpireTopAchievers(ctx, 42))
	})
}

func TestGetTopAchieversEarlyExitMatchesFullScan(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ masters, partial int }{{0, 15}, {3, 20}, {10, 5}, {12, 30}} {
		t.Run(fmt.Sprintf("%d masters %d partial", tc.masters, tc.partial), func(t *testing.T) {
			rows := masteryLeaders(tc.masters, tc.partial)

			full, err := newTestService(leadersRepo(rows), nil, Options{}).GetTopAchievers(ctx, 7)
			require.NoError(t, err)
			early, err := newTestService(leadersRepo(rows), nil, Options{EarlyExitScan: true}).GetTopAchievers(ctx, 7)
			require.NoError(t, err)

			if diff := cmp.Diff(full, early); diff != "" {
				t.Errorf("early exit differs from full scan (-full +early):\n%s", diff)
			}
		})
	}
}

func TestGetTopAchieversInvalidGame(t *testing.T) {
	repo := NewFakeProgressRepo()
	svc := newTestService(repo, NewFakeStore(), Options{})

	got, err := svc.GetTopAchievers(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got.HighScores)
	assert.Empty(t, got.Masters)
	assert.Empty(t, repo.Trace())
}
