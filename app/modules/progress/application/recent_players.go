package progressservice

import (
	"context"
	"fmt"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"github.com/uptrace/bun"
)

type recentPlayersResult = results.OperationResult[[]progressdomain.RecentPlayer, error]

// GetGameRecentPlayers lists players with rich presence in the game's sessions. When
// those do not fill the limit, players whose last played game is this one and whose
// presence is younger than the window fill the rest.
func (s *ProgressService) GetGameRecentPlayers(ctx context.Context, gameID progressdomain.GameID, limit int) ([]progressdomain.RecentPlayer, error) {
	if limit < 0 {
		limit = 0
	}

	recentTx := func(ctx context.Context, db bun.IDB) (recentPlayersResult, error) {
		rows, err := s.repo.GetSessionPlayers(ctx, db, int64(gameID), limit)
		if err != nil {
			return recentPlayersResult{}, fmt.Errorf("failed to get session players: %w", err)
		}
		sessions := toRecentPlayers(rows)
		if limit > 0 && len(sessions) >= limit {
			return results.SuccessResult[[]progressdomain.RecentPlayer, error](sessions[:limit]), nil
		}

		exclude := make([]int64, len(sessions))
		for i, p := range sessions {
			exclude[i] = int64(p.UserID)
		}
		remaining := 0
		if limit > 0 {
			remaining = limit - len(sessions)
		}
		since := s.now().AddDate(0, -progressdomain.RecentPlayersWindowMonths, 0)

		rows, err = s.repo.GetLastPlayedPlayers(ctx, db, int64(gameID), since, exclude, remaining)
		if err != nil {
			return recentPlayersResult{}, fmt.Errorf("failed to get last played players: %w", err)
		}

		merged := progressdomain.MergeRecentPlayers(sessions, toRecentPlayers(rows), limit)
		return results.SuccessResult[[]progressdomain.RecentPlayer, error](merged), nil
	}

	return unwrap(withTelemetry(s, ctx, "GetGameRecentPlayers", gameIdentifier(int64(gameID)), func(ctx context.Context) (recentPlayersResult, error) {
		return runInTx(s, ctx, recentTx)
	}))
}
