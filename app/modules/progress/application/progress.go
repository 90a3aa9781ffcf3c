package progressservice

import (
	"context"
	"fmt"
	"strconv"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"golang.org/x/sync/errgroup"
)

type progressResult = results.OperationResult[progressdomain.UserProgress, error]

// GetUserProgress aggregates the player's progress over gameIDs. Game metadata, the
// player's summaries and the recent feed are fetched concurrently on the shared pool;
// the result keeps the caller's game order with duplicates removed.
func (s *ProgressService) GetUserProgress(
	ctx context.Context,
	player progressdomain.Player,
	gameIDs []progressdomain.GameID,
	opts progressdomain.ProgressOptions,
) (progressdomain.UserProgress, error) {
	ids := uniqueGameIDs(gameIDs)

	return unwrap(withTelemetry(s, ctx, "GetUserProgress", strconv.FormatInt(int64(player.ID), 10), func(ctx context.Context) (progressResult, error) {
		return s.getUserProgressLogic(ctx, player, ids, opts)
	}))
}

func (s *ProgressService) getUserProgressLogic(
	ctx context.Context,
	player progressdomain.Player,
	ids []progressdomain.GameID,
	opts progressdomain.ProgressOptions,
) (progressResult, error) {
	progress := progressdomain.UserProgress{
		Games: make(map[progressdomain.GameID]progressdomain.GameProgress, len(ids)),
		Order: ids,
	}
	if len(ids) == 0 {
		return results.SuccessResult[progressdomain.UserProgress, error](progress), nil
	}

	db := s.pool()
	rawIDs := toInt64s(ids)

	var (
		games     []progressdb.Game
		summaries []progressdb.PlayerGame
		feed      []progressdb.FeedRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxFanOut)

	g.Go(func() error {
		var err error
		if games, err = s.repo.GetGames(gctx, db, rawIDs); err != nil {
			return fmt.Errorf("failed to get games: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if summaries, err = s.repo.GetPlayerGames(gctx, db, int64(player.ID), rawIDs); err != nil {
			return fmt.Errorf("failed to get player games: %w", err)
		}
		return nil
	})
	if opts.RecentAchievements != progressdomain.RecentFeedOff {
		g.Go(func() error {
			var err error
			if feed, err = s.repo.GetFeedRows(gctx, db, int64(player.ID), rawIDs); err != nil {
				return fmt.Errorf("failed to get recent achievements: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return progressResult{}, err
	}

	gameByID := make(map[progressdomain.GameID]progressdomain.Game, len(games))
	for _, row := range games {
		game := toGame(row)
		gameByID[game.ID] = game
	}
	summaryByID := make(map[progressdomain.GameID]progressdomain.PlayerGameSummary, len(summaries))
	for _, pg := range summaries {
		summary := toSummary(pg)
		summaryByID[summary.GameID] = summary
	}

	for _, id := range ids {
		var gamePtr *progressdomain.Game
		if game, ok := gameByID[id]; ok {
			gamePtr = &game
		}
		var summaryPtr *progressdomain.PlayerGameSummary
		if summary, ok := summaryByID[id]; ok {
			summaryPtr = &summary
		}

		entry := progressdomain.NewGameProgress(gamePtr, summaryPtr)
		if opts.WithGameInfo && gamePtr != nil {
			entry.GameInfo = gamePtr
		}
		progress.Games[id] = entry
	}

	progress.Recent = progressdomain.BuildRecentFeed(toFeedRows(feed), opts.RecentAchievements)

	return results.SuccessResult[progressdomain.UserProgress, error](progress), nil
}
