package progressintegrationtests

import (
	"testing"
	"time"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/Black-And-White-Club/progress-engine/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBeaten(t *testing.T) {
	deps := setupTest(t)
	fx := seedGame(t, deps, testutils.GameSpec{Official: 5, Progression: 2, WinConditions: 2})
	plain := seedGame(t, deps, testutils.GameSpec{Official: 3})
	users := seedUsers(t, deps, 3)

	official := fx.Official()
	// hardcore: everything in hardcore
	seedUnlocks(t, deps, fx, users[0].ID, testutils.UnlockAll(fx, users[0].ID, baseTime, true))
	// softcore: both progression and one win condition in softcore
	seedUnlocks(t, deps, fx, users[1].ID, []progressdb.PlayerAchievement{
		testutils.Unlock(users[1].ID, official[0].ID, baseTime, false),
		testutils.Unlock(users[1].ID, official[1].ID, baseTime, false),
		testutils.Unlock(users[1].ID, official[3].ID, baseTime, false),
	})
	// progression only
	seedUnlocks(t, deps, fx, users[2].ID, []progressdb.PlayerAchievement{
		testutils.Unlock(users[2].ID, official[0].ID, baseTime, true),
		testutils.Unlock(users[2].ID, official[1].ID, baseTime, true),
	})

	tests := []struct {
		name   string
		gameID int64
		userID int64
		want   progressdomain.BeatenStatus
	}{
		{"hardcore beaten", fx.Game.ID, users[0].ID, progressdomain.BeatenStatus{IsBeatable: true, IsBeatenSoftcore: true, IsBeatenHardcore: true}},
		{"softcore beaten", fx.Game.ID, users[1].ID, progressdomain.BeatenStatus{IsBeatable: true, IsBeatenSoftcore: true}},
		{"missing win condition", fx.Game.ID, users[2].ID, progressdomain.BeatenStatus{IsBeatable: true}},
		{"not beatable", plain.Game.ID, users[0].ID, progressdomain.NotBeatable},
		{"unknown game", 999999, users[0].ID, progressdomain.NotBeatable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deps.service.EvaluateBeaten(deps.ctx, progressdomain.GameID(tt.gameID), progressdomain.UserID(tt.userID))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetGameRank(t *testing.T) {
	deps := setupTest(t)
	fx := seedGame(t, deps, testutils.GameSpec{Official: 4, Points: 5})
	users := seedUsers(t, deps, 4)
	official := fx.Official()

	unlocksOf := func(userID int64, n int) []progressdb.PlayerAchievement {
		out := make([]progressdb.PlayerAchievement, n)
		for i := 0; i < n; i++ {
			out[i] = testutils.Unlock(userID, official[i].ID, baseTime.Add(-timeOffset(userID)), false)
		}
		return out
	}

	// users[3] is untracked and has the most points
	_, err := testEnv.DB.NewUpdate().Model((*progressdb.User)(nil)).
		Set("untracked = TRUE").Where("id = ?", users[3].ID).Exec(deps.ctx)
	require.NoError(t, err)

	seedUnlocks(t, deps, fx, users[0].ID, unlocksOf(users[0].ID, 2))
	seedUnlocks(t, deps, fx, users[1].ID, unlocksOf(users[1].ID, 3))
	seedUnlocks(t, deps, fx, users[2].ID, unlocksOf(users[2].ID, 1))
	seedUnlocks(t, deps, fx, users[3].ID, unlocksOf(users[3].ID, 4))

	wantRanks := map[int]int{0: 2, 1: 1, 2: 3}
	for idx, want := range wantRanks {
		player := findPlayer(t, deps, users[idx].Username)
		rank, err := deps.service.GetGameRank(deps.ctx, progressdomain.GameID(fx.Game.ID), player)
		require.NoError(t, err)
		require.NotNil(t, rank.Rank, users[idx].Username)
		assert.Equal(t, want, *rank.Rank, users[idx].Username)
	}

	untracked := findPlayer(t, deps, users[3].Username)
	rank, err := deps.service.GetGameRank(deps.ctx, progressdomain.GameID(fx.Game.ID), untracked)
	require.NoError(t, err)
	assert.Nil(t, rank.Rank)
	assert.Equal(t, 20, rank.TotalScore)
}

func timeOffset(userID int64) time.Duration {
	return time.Duration(userID%60) * time.Minute
}
