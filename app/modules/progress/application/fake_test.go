package progressservice

import (
	"context"
	"sync"
	"time"

	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Progress Repository
// ------------------------

type FakeProgressRepo struct {
	mu    sync.Mutex
	trace []string

	GetUserByUsernameFunc       func(ctx context.Context, db bun.IDB, username string) (*progressdb.User, error)
	GetBeatTierCountsFunc       func(ctx context.Context, db bun.IDB, gameID int64) ([]progressdb.TypeCountRow, error)
	GetBeatTierUnlocksFunc      func(ctx context.Context, db bun.IDB, gameID, userID int64) ([]progressdb.TierUnlockRow, error)
	GetGamesFunc                func(ctx context.Context, db bun.IDB, gameIDs []int64) ([]progressdb.Game, error)
	GetPlayerGamesFunc          func(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]progressdb.PlayerGame, error)
	GetPlayerGameFunc           func(ctx context.Context, db bun.IDB, userID, gameID int64) (*progressdb.PlayerGame, error)
	GetGameScoresFunc           func(ctx context.Context, db bun.IDB, gameID int64) ([]progressdb.GameScoreRow, error)
	CountOfficialCoreFunc       func(ctx context.Context, db bun.IDB, gameID int64) (int, error)
	GetHardcoreLeadersFunc      func(ctx context.Context, db bun.IDB, gameID int64) ([]progressdb.HardcoreLeaderRow, error)
	GetFeedRowsFunc             func(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]progressdb.FeedRow, error)
	GetCompletedGamesFunc       func(ctx context.Context, db bun.IDB, userID int64, minPublished int) ([]progressdb.CompletedGameRow, error)
	GetLightGamesFunc           func(ctx context.Context, db bun.IDB, userID int64) ([]progressdb.LightGameRow, error)
	GetGameAchievementsFunc     func(ctx context.Context, db bun.IDB, gameID int64, flags int) ([]progressdb.Achievement, error)
	GetPlayerUnlocksForGameFunc func(ctx context.Context, db bun.IDB, userID, gameID int64) ([]progressdb.PlayerAchievement, error)
	GetConsoleProgressFunc      func(ctx context.Context, db bun.IDB, userID, systemID int64) ([]progressdb.ConsoleProgressRow, error)
	GetPlayedGamesFunc          func(ctx context.Context, db bun.IDB, userID int64) ([]progressdb.PlayedGameRow, error)
	GetSessionPlayersFunc       func(ctx context.Context, db bun.IDB, gameID int64, limit int) ([]progressdb.RecentPlayerRow, error)
	GetLastPlayedPlayersFunc    func(ctx context.Context, db bun.IDB, gameID int64, since time.Time, excludeUserIDs []int64, limit int) ([]progressdb.RecentPlayerRow, error)
}

func NewFakeProgressRepo() *FakeProgressRepo {
	return &FakeProgressRepo{
		trace: []string{},
	}
}

func (f *FakeProgressRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeProgressRepo) GetUserByUsername(ctx context.Context, db bun.IDB, username string) (*progressdb.User, error) {
	f.record("GetUserByUsername")
	if f.GetUserByUsernameFunc != nil {
		return f.GetUserByUsernameFunc(ctx, db, username)
	}
	return nil, progressdb.ErrNotFound
}

func (f *FakeProgressRepo) GetBeatTierCounts(ctx context.Context, db bun.IDB, gameID int64) ([]progressdb.TypeCountRow, error) {
	f.record("GetBeatTierCounts")
	if f.GetBeatTierCountsFunc != nil {
		return f.GetBeatTierCountsFunc(ctx, db, gameID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetBeatTierUnlocks(ctx context.Context, db bun.IDB, gameID, userID int64) ([]progressdb.TierUnlockRow, error) {
	f.record("GetBeatTierUnlocks")
	if f.GetBeatTierUnlocksFunc != nil {
		return f.GetBeatTierUnlocksFunc(ctx, db, gameID, userID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetGames(ctx context.Context, db bun.IDB, gameIDs []int64) ([]progressdb.Game, error) {
	f.record("GetGames")
	if f.GetGamesFunc != nil {
		return f.GetGamesFunc(ctx, db, gameIDs)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetPlayerGames(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]progressdb.PlayerGame, error) {
	f.record("GetPlayerGames")
	if f.GetPlayerGamesFunc != nil {
		return f.GetPlayerGamesFunc(ctx, db, userID, gameIDs)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetPlayerGame(ctx context.Context, db bun.IDB, userID, gameID int64) (*progressdb.PlayerGame, error) {
	f.record("GetPlayerGame")
	if f.GetPlayerGameFunc != nil {
		return f.GetPlayerGameFunc(ctx, db, userID, gameID)
	}
	return nil, progressdb.ErrNotFound
}

func (f *FakeProgressRepo) GetGameScores(ctx context.Context, db bun.IDB, gameID int64) ([]progressdb.GameScoreRow, error) {
	f.record("GetGameScores")
	if f.GetGameScoresFunc != nil {
		return f.GetGameScoresFunc(ctx, db, gameID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) CountOfficialCore(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
	f.record("CountOfficialCore")
	if f.CountOfficialCoreFunc != nil {
		return f.CountOfficialCoreFunc(ctx, db, gameID)
	}
	return 0, nil
}

func (f *FakeProgressRepo) GetHardcoreLeaders(ctx context.Context, db bun.IDB, gameID int64) ([]progressdb.HardcoreLeaderRow, error) {
	f.record("GetHardcoreLeaders")
	if f.GetHardcoreLeadersFunc != nil {
		return f.GetHardcoreLeadersFunc(ctx, db, gameID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetFeedRows(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]progressdb.FeedRow, error) {
	f.record("GetFeedRows")
	if f.GetFeedRowsFunc != nil {
		return f.GetFeedRowsFunc(ctx, db, userID, gameIDs)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetCompletedGames(ctx context.Context, db bun.IDB, userID int64, minPublished int) ([]progressdb.CompletedGameRow, error) {
	f.record("GetCompletedGames")
	if f.GetCompletedGamesFunc != nil {
		return f.GetCompletedGamesFunc(ctx, db, userID, minPublished)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetLightGames(ctx context.Context, db bun.IDB, userID int64) ([]progressdb.LightGameRow, error) {
	f.record("GetLightGames")
	if f.GetLightGamesFunc != nil {
		return f.GetLightGamesFunc(ctx, db, userID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetGameAchievements(ctx context.Context, db bun.IDB, gameID int64, flags int) ([]progressdb.Achievement, error) {
	f.record("GetGameAchievements")
	if f.GetGameAchievementsFunc != nil {
		return f.GetGameAchievementsFunc(ctx, db, gameID, flags)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetPlayerUnlocksForGame(ctx context.Context, db bun.IDB, userID, gameID int64) ([]progressdb.PlayerAchievement, error) {
	f.record("GetPlayerUnlocksForGame")
	if f.GetPlayerUnlocksForGameFunc != nil {
		return f.GetPlayerUnlocksForGameFunc(ctx, db, userID, gameID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetConsoleProgress(ctx context.Context, db bun.IDB, userID, systemID int64) ([]progressdb.ConsoleProgressRow, error) {
	f.record("GetConsoleProgress")
	if f.GetConsoleProgressFunc != nil {
		return f.GetConsoleProgressFunc(ctx, db, userID, systemID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetPlayedGames(ctx context.Context, db bun.IDB, userID int64) ([]progressdb.PlayedGameRow, error) {
	f.record("GetPlayedGames")
	if f.GetPlayedGamesFunc != nil {
		return f.GetPlayedGamesFunc(ctx, db, userID)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetSessionPlayers(ctx context.Context, db bun.IDB, gameID int64, limit int) ([]progressdb.RecentPlayerRow, error) {
	f.record("GetSessionPlayers")
	if f.GetSessionPlayersFunc != nil {
		return f.GetSessionPlayersFunc(ctx, db, gameID, limit)
	}
	return nil, nil
}

func (f *FakeProgressRepo) GetLastPlayedPlayers(ctx context.Context, db bun.IDB, gameID int64, since time.Time, excludeUserIDs []int64, limit int) ([]progressdb.RecentPlayerRow, error) {
	f.record("GetLastPlayedPlayers")
	if f.GetLastPlayedPlayersFunc != nil {
		return f.GetLastPlayedPlayersFunc(ctx, db, gameID, since, excludeUserIDs, limit)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeProgressRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Count returns how many times step was recorded.
func (f *FakeProgressRepo) Count(step string) int {
	n := 0
	for _, s := range f.Trace() {
		if s == step {
			n++
		}
	}
	return n
}

// Ensure the fake actually satisfies the interface
var _ progressdb.Repository = (*FakeProgressRepo)(nil)

// ------------------------
// Fake Cache Store
// ------------------------

type FakeStore struct {
	trace []string

	GetFunc   func(ctx context.Context, key string) ([]byte, bool, error)
	PutFunc   func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	EvictFunc func(ctx context.Context, key string) error

	puts []fakePut
}

type fakePut struct {
	key string
	ttl time.Duration
}

func NewFakeStore() *FakeStore {
	return &FakeStore{trace: []string{}}
}

func (f *FakeStore) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, key)
	}
	return nil, false, nil
}

func (f *FakeStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.record("Put")
	f.puts = append(f.puts, fakePut{key: key, ttl: ttl})
	if f.PutFunc != nil {
		return f.PutFunc(ctx, key, value, ttl)
	}
	return nil
}

func (f *FakeStore) Evict(ctx context.Context, key string) error {
	f.record("Evict")
	if f.EvictFunc != nil {
		return f.EvictFunc(ctx, key)
	}
	return nil
}

func (f *FakeStore) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ progresscache.Store = (*FakeStore)(nil)
