package progressservice

import (
	"context"
	"errors"
	"fmt"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"github.com/uptrace/bun"
)

type playerResult = results.OperationResult[progressdomain.Player, error]

// FindPlayer resolves a username to a player.
func (s *ProgressService) FindPlayer(ctx context.Context, username string) (progressdomain.Player, error) {
	findTx := func(ctx context.Context, db bun.IDB) (playerResult, error) {
		return s.findPlayerLogic(ctx, db, username)
	}

	return unwrap(withTelemetry(s, ctx, "FindPlayer", username, func(ctx context.Context) (playerResult, error) {
		return runInTx(s, ctx, findTx)
	}))
}

func (s *ProgressService) findPlayerLogic(ctx context.Context, db bun.IDB, username string) (playerResult, error) {
	user, err := s.repo.GetUserByUsername(ctx, db, username)
	if err != nil {
		if errors.Is(err, progressdb.ErrNotFound) {
			return results.FailureResult[progressdomain.Player, error](fmt.Errorf("%w: %s", ErrPlayerNotFound, username)), nil
		}
		return playerResult{}, fmt.Errorf("failed to get user: %w", err)
	}
	return results.SuccessResult[progressdomain.Player, error](toPlayer(user)), nil
}

type beatenResult = results.OperationResult[progressdomain.BeatenStatus, error]

// EvaluateBeaten classifies the game's official set and, when it is beatable, checks the
// player's progression and win-condition unlocks against it.
func (s *ProgressService) EvaluateBeaten(ctx context.Context, gameID progressdomain.GameID, userID progressdomain.UserID) (progressdomain.BeatenStatus, error) {
	evaluateTx := func(ctx context.Context, db bun.IDB) (beatenResult, error) {
		return s.evaluateBeatenLogic(ctx, db, gameID, userID)
	}

	return unwrap(withTelemetry(s, ctx, "EvaluateBeaten", gameIdentifier(int64(gameID)), func(ctx context.Context) (beatenResult, error) {
		return runInTx(s, ctx, evaluateTx)
	}))
}

func (s *ProgressService) evaluateBeatenLogic(ctx context.Context, db bun.IDB, gameID progressdomain.GameID, userID progressdomain.UserID) (beatenResult, error) {
	counts, err := s.repo.GetBeatTierCounts(ctx, db, int64(gameID))
	if err != nil {
		return beatenResult{}, fmt.Errorf("failed to classify achievement set: %w", err)
	}

	set := progressdomain.ClassifyCounts(toTypeCounts(counts))
	if !set.IsBeatable() {
		return results.SuccessResult[progressdomain.BeatenStatus, error](progressdomain.NotBeatable), nil
	}

	unlocks, err := s.repo.GetBeatTierUnlocks(ctx, db, int64(gameID), int64(userID))
	if err != nil {
		return beatenResult{}, fmt.Errorf("failed to get beat tier unlocks: %w", err)
	}

	status := progressdomain.EvaluateCompletion(set, toTierUnlocks(unlocks))
	return results.SuccessResult[progressdomain.BeatenStatus, error](status), nil
}

type rankResult = results.OperationResult[progressdomain.GameRank, error]

// GetGameRank ranks the tracked players of a game and returns the player's position.
func (s *ProgressService) GetGameRank(ctx context.Context, gameID progressdomain.GameID, player progressdomain.Player) (progressdomain.GameRank, error) {
	if gameID <= 0 {
		return progressdomain.GameRank{}, nil
	}

	rankTx := func(ctx context.Context, db bun.IDB) (rankResult, error) {
		return s.getGameRankLogic(ctx, db, gameID, player)
	}

	return unwrap(withTelemetry(s, ctx, "GetGameRank", gameIdentifier(int64(gameID)), func(ctx context.Context) (rankResult, error) {
		return runInTx(s, ctx, rankTx)
	}))
}

func (s *ProgressService) getGameRankLogic(ctx context.Context, db bun.IDB, gameID progressdomain.GameID, player progressdomain.Player) (rankResult, error) {
	rows, err := s.repo.GetGameScores(ctx, db, int64(gameID))
	if err != nil {
		return rankResult{}, fmt.Errorf("failed to get game scores: %w", err)
	}

	rank := progressdomain.RankOf(toScores(rows), player.ID)
	if player.Untracked {
		rank.Rank = nil
	}
	return results.SuccessResult[progressdomain.GameRank, error](rank), nil
}
