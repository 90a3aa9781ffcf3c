package progressintegrationtests

import (
	"testing"
	"time"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/Black-And-White-Club/progress-engine/integration_tests/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMasters makes n users master fx in hardcore, one hour apart from start.
func seedMasters(t *testing.T, deps testDeps, fx testutils.GameFixture, n int, start time.Time) []progressdb.User {
	t.Helper()
	users := seedUsers(t, deps, n)
	for i, u := range users {
		seedUnlocks(t, deps, fx, u.ID, testutils.UnlockAll(fx, u.ID, start.Add(time.Duration(i)*time.Hour), true))
	}
	return users
}

func TestGetTopAchieversCachesFullMasterList(t *testing.T) {
	deps := setupTest(t)
	fx := seedGame(t, deps, testutils.GameSpec{Official: 3, Points: 10})
	users := seedMasters(t, deps, fx, 12, baseTime)
	gameID := progressdomain.GameID(fx.Game.ID)

	got, err := deps.service.GetTopAchievers(deps.ctx, gameID)
	require.NoError(t, err)

	require.Len(t, got.HighScores, progressdomain.TopAchieversLimit)
	assert.Equal(t, users[0].Username, got.HighScores[0].Username)
	assert.Equal(t, users[9].Username, got.HighScores[9].Username)

	require.Len(t, got.Masters, progressdomain.TopAchieversLimit)
	for i, m := range got.Masters {
		assert.Equal(t, users[i+2].Username, m.Username)
		assert.Equal(t, i+3, m.Rank)
	}
	assert.Equal(t, 1, cacheRows(t, deps))

	// a new master does not show until the entry is purged
	late := seedMasters(t, deps, fx, 1, baseTime.Add(48*time.Hour))[0]
	cached, err := deps.service.GetTopAchievers(deps.ctx, gameID)
	require.NoError(t, err)
	if diff := cmp.Diff(got, cached); diff != "" {
		t.Errorf("cached result mismatch (-first +cached):\n%s", diff)
	}

	require.NoError(t, deps.service.ExpireTopAchievers(deps.ctx, gameID))
	assert.Equal(t, 0, cacheRows(t, deps))

	fresh, err := deps.service.GetTopAchievers(deps.ctx, gameID)
	require.NoError(t, err)
	require.Len(t, fresh.Masters, progressdomain.TopAchieversLimit)
	assert.Equal(t, late.Username, fresh.Masters[len(fresh.Masters)-1].Username)
}

func TestGetTopAchieversSkipsCacheBelowCapacity(t *testing.T) {
	deps := setupTest(t)
	fx := seedGame(t, deps, testutils.GameSpec{Official: 2})
	seedMasters(t, deps, fx, 4, baseTime)

	got, err := deps.service.GetTopAchievers(deps.ctx, progressdomain.GameID(fx.Game.ID))
	require.NoError(t, err)
	assert.Len(t, got.Masters, 4)
	assert.Len(t, got.HighScores, 4)
	assert.Equal(t, 0, cacheRows(t, deps))
}

func TestPostgresStoreExpiry(t *testing.T) {
	deps := setupTest(t)
	now := baseTime
	repo := progressdb.NewRepository(testEnv.DB)
	store := progresscache.NewPostgresStore(repo, testEnv.DB, func() time.Time { return now })

	require.NoError(t, store.Put(deps.ctx, "k", []byte("v1"), time.Hour))
	require.NoError(t, store.Put(deps.ctx, "k", []byte("v2"), time.Hour))

	value, ok, err := store.Get(deps.ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), value)

	now = now.Add(time.Hour)
	_, ok, err = store.Get(deps.ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	swept, err := store.Sweep(deps.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)
	assert.Equal(t, 0, cacheRows(t, deps))
}

func TestGetTopAchieversExcludesUntrackedAndSoftcoreOnly(t *testing.T) {
	deps := setupTest(t)
	fx := seedGame(t, deps, testutils.GameSpec{Official: 3, Points: 5})
	gameID := progressdomain.GameID(fx.Game.ID)

	tracked := seedMasters(t, deps, fx, 2, baseTime)

	hidden := deps.gen.GenerateUsers(2)
	hidden[0].Username, hidden[0].Untracked = "untracked01", true
	hidden[1].Username = "softcore01"
	require.NoError(t, testutils.SeedUsers(deps.ctx, testEnv.DB, hidden...))
	// the untracked master would lead both lists on time alone
	seedUnlocks(t, deps, fx, hidden[0].ID, testutils.UnlockAll(fx, hidden[0].ID, baseTime.Add(-time.Hour), true))
	seedUnlocks(t, deps, fx, hidden[1].ID, testutils.UnlockAll(fx, hidden[1].ID, baseTime.Add(-2*time.Hour), false))

	got, err := deps.service.GetTopAchievers(deps.ctx, gameID)
	require.NoError(t, err)

	usernames := func(entries []progressdomain.TopAchiever) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Username
		}
		return out
	}
	want := []string{tracked[0].Username, tracked[1].Username}
	assert.Equal(t, want, usernames(got.HighScores))
	assert.Equal(t, want, usernames(got.Masters))
	assert.Equal(t, 1, got.Masters[0].Rank)
}
