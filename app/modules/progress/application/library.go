package progressservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"github.com/uptrace/bun"
)

type unlocksResult = results.OperationResult[map[progressdomain.AchievementID]progressdomain.UnlockDates, error]

// GetUnlocksForGame returns earn dates keyed by achievement for the game's official set.
func (s *ProgressService) GetUnlocksForGame(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (map[progressdomain.AchievementID]progressdomain.UnlockDates, error) {
	unlocksTx := func(ctx context.Context, db bun.IDB) (unlocksResult, error) {
		achievements, err := s.repo.GetGameAchievements(ctx, db, int64(gameID), int(progressdomain.AchievementFlagOfficialCore))
		if err != nil {
			return unlocksResult{}, fmt.Errorf("failed to get achievements: %w", err)
		}
		official := make(map[int64]struct{}, len(achievements))
		for _, a := range achievements {
			official[a.ID] = struct{}{}
		}

		unlocks, err := s.repo.GetPlayerUnlocksForGame(ctx, db, int64(player.ID), int64(gameID))
		if err != nil {
			return unlocksResult{}, fmt.Errorf("failed to get unlocks: %w", err)
		}

		out := make(map[progressdomain.AchievementID]progressdomain.UnlockDates, len(unlocks))
		for _, u := range unlocks {
			if _, ok := official[u.AchievementID]; !ok {
				continue
			}
			out[progressdomain.AchievementID(u.AchievementID)] = progressdomain.UnlockDates{
				DateEarned:         u.UnlockedAt,
				DateEarnedHardcore: u.UnlockedHardcoreAt,
			}
		}
		return results.SuccessResult[map[progressdomain.AchievementID]progressdomain.UnlockDates, error](out), nil
	}

	return unwrap(withTelemetry(s, ctx, "GetUnlocksForGame", gameIdentifier(int64(gameID)), func(ctx context.Context) (unlocksResult, error) {
		return runInTx(s, ctx, unlocksTx)
	}))
}

type consoleResult = results.OperationResult[[]progressdomain.ConsoleGameProgress, error]

// GetConsoleProgress lists every game of a console that has published achievements,
// with zero counts for games the player never touched.
func (s *ProgressService) GetConsoleProgress(ctx context.Context, player progressdomain.Player, systemID progressdomain.SystemID) ([]progressdomain.ConsoleGameProgress, error) {
	consoleTx := func(ctx context.Context, db bun.IDB) (consoleResult, error) {
		rows, err := s.repo.GetConsoleProgress(ctx, db, int64(player.ID), int64(systemID))
		if err != nil {
			return consoleResult{}, fmt.Errorf("failed to get console progress: %w", err)
		}
		out := make([]progressdomain.ConsoleGameProgress, len(rows))
		for i, r := range rows {
			out[i] = toConsoleProgress(r)
		}
		return results.SuccessResult[[]progressdomain.ConsoleGameProgress, error](out), nil
	}

	return unwrap(withTelemetry(s, ctx, "GetConsoleProgress", "system:"+strconv.FormatInt(int64(systemID), 10), func(ctx context.Context) (consoleResult, error) {
		return runInTx(s, ctx, consoleTx)
	}))
}

type playedResult = results.OperationResult[[]progressdomain.PlayedGame, error]

// GetPlayedGames lists the games the player has at least one unlock in.
func (s *ProgressService) GetPlayedGames(ctx context.Context, player progressdomain.Player) ([]progressdomain.PlayedGame, error) {
	playedTx := func(ctx context.Context, db bun.IDB) (playedResult, error) {
		rows, err := s.repo.GetPlayedGames(ctx, db, int64(player.ID))
		if err != nil {
			return playedResult{}, fmt.Errorf("failed to get played games: %w", err)
		}
		out := make([]progressdomain.PlayedGame, len(rows))
		for i, r := range rows {
			out[i] = toPlayedGame(r)
		}
		return results.SuccessResult[[]progressdomain.PlayedGame, error](out), nil
	}

	return unwrap(withTelemetry(s, ctx, "GetPlayedGames", player.Username, func(ctx context.Context) (playedResult, error) {
		return runInTx(s, ctx, playedTx)
	}))
}

type summaryResult = results.OperationResult[progressdomain.SummaryCheck, error]

// RecomputePlayerGame rebuilds the player's summary of a game from raw unlock events
// and reports whether it matches the stored projection.
func (s *ProgressService) RecomputePlayerGame(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (progressdomain.SummaryCheck, error) {
	recomputeTx := func(ctx context.Context, db bun.IDB) (summaryResult, error) {
		return s.recomputePlayerGameLogic(ctx, db, player, gameID)
	}

	return unwrap(withTelemetry(s, ctx, "RecomputePlayerGame", gameIdentifier(int64(gameID)), func(ctx context.Context) (summaryResult, error) {
		return runInTx(s, ctx, recomputeTx)
	}))
}

func (s *ProgressService) recomputePlayerGameLogic(ctx context.Context, db bun.IDB, player progressdomain.Player, gameID progressdomain.GameID) (summaryResult, error) {
	models, err := s.repo.GetGameAchievements(ctx, db, int64(gameID), int(progressdomain.AchievementFlagOfficialCore))
	if err != nil {
		return summaryResult{}, fmt.Errorf("failed to get achievements: %w", err)
	}
	achievements := make([]progressdomain.Achievement, len(models))
	for i, m := range models {
		achievements[i] = toAchievement(m)
	}

	raw, err := s.repo.GetPlayerUnlocksForGame(ctx, db, int64(player.ID), int64(gameID))
	if err != nil {
		return summaryResult{}, fmt.Errorf("failed to get unlocks: %w", err)
	}
	unlocks := make([]progressdomain.UnlockEvent, len(raw))
	for i, u := range raw {
		unlocks[i] = toUnlockEvent(u)
	}

	check := progressdomain.SummaryCheck{
		Recomputed: progressdomain.SummarizePlayerGame(player.ID, gameID, achievements, unlocks),
	}

	stored, err := s.repo.GetPlayerGame(ctx, db, int64(player.ID), int64(gameID))
	switch {
	case errors.Is(err, progressdb.ErrNotFound):
		check.Agrees = check.Recomputed.AchievementsUnlocked == 0 && check.Recomputed.AchievementsUnlockedHardcore == 0
	case err != nil:
		return summaryResult{}, fmt.Errorf("failed to get stored summary: %w", err)
	default:
		summary := toSummary(*stored)
		check.Stored = &summary
		check.Agrees = progressdomain.SummariesAgree(summary, check.Recomputed)
	}

	if !check.Agrees {
		s.logger.WarnContext(ctx, "Stored summary disagrees with unlock events",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("user_id", int64(player.ID)),
			attr.Int64("game_id", int64(gameID)),
		)
	}

	return results.SuccessResult[progressdomain.SummaryCheck, error](check), nil
}
