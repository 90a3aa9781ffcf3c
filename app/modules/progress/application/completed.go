package progressservice

import (
	"context"
	"fmt"
	"io"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"github.com/uptrace/bun"
)

type completedResult = results.OperationResult[[]progressdomain.CompletedGame, error]

// GetCompletedGames lists the player's games with more than
// MinAchievementsForCompletion published achievements, in completion order.
// Invalid usernames yield an empty list without touching storage.
func (s *ProgressService) GetCompletedGames(ctx context.Context, username string) ([]progressdomain.CompletedGame, error) {
	if !progressdomain.ValidUsername(username) {
		return []progressdomain.CompletedGame{}, nil
	}

	completedTx := func(ctx context.Context, db bun.IDB) (completedResult, error) {
		return s.getCompletedGamesLogic(ctx, db, username)
	}

	return unwrap(withTelemetry(s, ctx, "GetCompletedGames", username, func(ctx context.Context) (completedResult, error) {
		return runInTx(s, ctx, completedTx)
	}))
}

func (s *ProgressService) getCompletedGamesLogic(ctx context.Context, db bun.IDB, username string) (completedResult, error) {
	found, err := s.findPlayerLogic(ctx, db, username)
	if err != nil || found.IsFailure() {
		return completedResult{Failure: found.Failure}, err
	}

	games, err := s.completedGames(ctx, db, *found.Success)
	if err != nil {
		return completedResult{}, err
	}
	return results.SuccessResult[[]progressdomain.CompletedGame, error](games), nil
}

func (s *ProgressService) completedGames(ctx context.Context, db bun.IDB, player progressdomain.Player) ([]progressdomain.CompletedGame, error) {
	rows, err := s.repo.GetCompletedGames(ctx, db, int64(player.ID), progressdomain.MinAchievementsForCompletion)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed games: %w", err)
	}

	games := make([]progressdomain.CompletedGame, len(rows))
	for i, r := range rows {
		games[i] = toCompletedGame(r)
	}
	progressdomain.SortCompletedGames(games)
	return games, nil
}

// PrepareCompletedGamesCacheValue renders the completed games in the compact encoding.
func (s *ProgressService) PrepareCompletedGamesCacheValue(ctx context.Context, username string) (string, error) {
	games, err := s.GetCompletedGames(ctx, username)
	if err != nil {
		return "", err
	}
	return progressdomain.EncodeCompletedGames(awardsOf(games)), nil
}

// GetLightweightCompletedGames overlays a compact cache value onto the player's game
// list and puts fully completed games first.
func (s *ProgressService) GetLightweightCompletedGames(ctx context.Context, username string, cachedValue string) ([]progressdomain.CompletedGame, error) {
	if !progressdomain.ValidUsername(username) {
		return []progressdomain.CompletedGame{}, nil
	}

	lightTx := func(ctx context.Context, db bun.IDB) (completedResult, error) {
		return s.getLightweightCompletedGamesLogic(ctx, db, username, cachedValue)
	}

	return unwrap(withTelemetry(s, ctx, "GetLightweightCompletedGames", username, func(ctx context.Context) (completedResult, error) {
		return runInTx(s, ctx, lightTx)
	}))
}

func (s *ProgressService) getLightweightCompletedGamesLogic(ctx context.Context, db bun.IDB, username, cachedValue string) (completedResult, error) {
	found, err := s.findPlayerLogic(ctx, db, username)
	if err != nil || found.IsFailure() {
		return completedResult{Failure: found.Failure}, err
	}
	player := *found.Success

	var awards []progressdomain.CompletedGameAward
	if cachedValue == "" {
		games, err := s.completedGames(ctx, db, player)
		if err != nil {
			return completedResult{}, err
		}
		awards = awardsOf(games)
	} else {
		awards, err = progressdomain.DecodeCompletedGames(cachedValue)
		if err != nil {
			return completedResult{}, fmt.Errorf("failed to decode cached completed games: %w", err)
		}
	}

	rows, err := s.repo.GetLightGames(ctx, db, int64(player.ID))
	if err != nil {
		return completedResult{}, fmt.Errorf("failed to get played games: %w", err)
	}
	light := make([]progressdomain.CompletedGame, len(rows))
	for i, r := range rows {
		light[i] = toLightGame(r)
	}

	games := progressdomain.MergeCompletedAwards(light, awards)
	progressdomain.SortLightweightCompletedGames(games)
	return results.SuccessResult[[]progressdomain.CompletedGame, error](games), nil
}

// ExportCompletedGames writes the player's completed games as an xlsx workbook.
func (s *ProgressService) ExportCompletedGames(ctx context.Context, username string, w io.Writer) error {
	if !progressdomain.ValidUsername(username) {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, username)
	}

	games, err := s.GetCompletedGames(ctx, username)
	if err != nil {
		return err
	}

	if err := writeCompletedGamesWorkbook(w, games); err != nil {
		return fmt.Errorf("ExportCompletedGames: %w", err)
	}
	return nil
}

func awardsOf(games []progressdomain.CompletedGame) []progressdomain.CompletedGameAward {
	awards := make([]progressdomain.CompletedGameAward, len(games))
	for i, g := range games {
		awards[i] = progressdomain.AwardOf(g)
	}
	return awards
}
