package progressservice

import (
	"context"
	"fmt"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"github.com/uptrace/bun"
)

const topAchieversRegion = "top_achievers"

type topAchieversResult = results.OperationResult[progressdomain.TopAchievers, error]

// GetTopAchievers returns the cached leaderboard pair of a game, computing it on a miss.
// A computed result is cached only when the masters list is full.
func (s *ProgressService) GetTopAchievers(ctx context.Context, gameID progressdomain.GameID) (progressdomain.TopAchievers, error) {
	if gameID <= 0 {
		return progressdomain.TopAchievers{
			HighScores: []progressdomain.TopAchiever{},
			Masters:    []progressdomain.TopAchiever{},
		}, nil
	}

	return unwrap(withTelemetry(s, ctx, "GetTopAchievers", gameIdentifier(int64(gameID)), func(ctx context.Context) (topAchieversResult, error) {
		return s.getTopAchieversLogic(ctx, gameID)
	}))
}

func (s *ProgressService) getTopAchieversLogic(ctx context.Context, gameID progressdomain.GameID) (topAchieversResult, error) {
	key := progresscache.TopAchieversKey(int64(gameID))

	if s.cache != nil {
		cached, ok, err := progresscache.GetJSON[progressdomain.TopAchievers](ctx, s.cache, key)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "Top achievers cache read failed, recomputing",
				attr.ExtractCorrelationID(ctx),
				attr.String("cache_key", key),
				attr.Error(err),
			)
		case ok:
			s.recordCacheHit(ctx)
			return results.SuccessResult[progressdomain.TopAchievers, error](cached), nil
		}
		s.recordCacheMiss(ctx)
	}

	computeTx := func(ctx context.Context, db bun.IDB) (topAchieversResult, error) {
		return s.computeTopAchievers(ctx, db, gameID)
	}
	result, err := runInTx(s, ctx, computeTx)
	if err != nil {
		return topAchieversResult{}, err
	}

	top := *result.Success
	if s.cache != nil && top.MastersFull() {
		if err := progresscache.PutJSON(ctx, s.cache, key, top, s.opts.TopAchieversTTL); err != nil {
			s.logger.WarnContext(ctx, "Failed to cache top achievers",
				attr.ExtractCorrelationID(ctx),
				attr.String("cache_key", key),
				attr.Error(err),
			)
		} else if s.metrics != nil {
			s.metrics.RecordCachePut(ctx, topAchieversRegion)
		}
	}

	return result, nil
}

func (s *ProgressService) computeTopAchievers(ctx context.Context, db bun.IDB, gameID progressdomain.GameID) (topAchieversResult, error) {
	numInSet, err := s.repo.CountOfficialCore(ctx, db, int64(gameID))
	if err != nil {
		return topAchieversResult{}, fmt.Errorf("failed to count official achievements: %w", err)
	}

	rows, err := s.repo.GetHardcoreLeaders(ctx, db, int64(gameID))
	if err != nil {
		return topAchieversResult{}, fmt.Errorf("failed to get hardcore leaders: %w", err)
	}

	top := progressdomain.BuildTopAchievers(toHardcoreScores(rows), numInSet, s.opts.EarlyExitScan)
	return results.SuccessResult[progressdomain.TopAchievers, error](top), nil
}

type expireResult = results.OperationResult[struct{}, error]

// ExpireTopAchievers purges the game's cached top achievers.
func (s *ProgressService) ExpireTopAchievers(ctx context.Context, gameID progressdomain.GameID) error {
	_, err := unwrap(withTelemetry(s, ctx, "ExpireTopAchievers", gameIdentifier(int64(gameID)), func(ctx context.Context) (expireResult, error) {
		if s.cache == nil {
			return results.SuccessResult[struct{}, error](struct{}{}), nil
		}
		if err := s.cache.Evict(ctx, progresscache.TopAchieversKey(int64(gameID))); err != nil {
			return expireResult{}, fmt.Errorf("failed to evict top achievers: %w", err)
		}
		if s.metrics != nil {
			s.metrics.RecordCacheEvict(ctx, topAchieversRegion)
		}
		return results.SuccessResult[struct{}, error](struct{}{}), nil
	}))
	return err
}

func (s *ProgressService) recordCacheHit(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(ctx, topAchieversRegion)
	}
}

func (s *ProgressService) recordCacheMiss(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(ctx, topAchieversRegion)
	}
}
