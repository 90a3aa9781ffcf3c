package progresshandlers

import (
	"context"
	"io"
	"sync"

	progressservice "github.com/Black-And-White-Club/progress-engine/app/modules/progress/application"
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
)

// ------------------------
// Fake Progress Service
// ------------------------

type FakeProgressService struct {
	mu    sync.Mutex
	trace []string

	FindPlayerFunc                      func(ctx context.Context, username string) (progressdomain.Player, error)
	EvaluateBeatenFunc                  func(ctx context.Context, gameID progressdomain.GameID, userID progressdomain.UserID) (progressdomain.BeatenStatus, error)
	GetGameRankFunc                     func(ctx context.Context, gameID progressdomain.GameID, player progressdomain.Player) (progressdomain.GameRank, error)
	GetUserProgressFunc                 func(ctx context.Context, player progressdomain.Player, gameIDs []progressdomain.GameID, opts progressdomain.ProgressOptions) (progressdomain.UserProgress, error)
	GetTopAchieversFunc                 func(ctx context.Context, gameID progressdomain.GameID) (progressdomain.TopAchievers, error)
	ExpireTopAchieversFunc              func(ctx context.Context, gameID progressdomain.GameID) error
	GetCompletedGamesFunc               func(ctx context.Context, username string) ([]progressdomain.CompletedGame, error)
	PrepareCompletedGamesCacheValueFunc func(ctx context.Context, username string) (string, error)
	GetLightweightCompletedGamesFunc    func(ctx context.Context, username string, cachedValue string) ([]progressdomain.CompletedGame, error)
	ExportCompletedGamesFunc            func(ctx context.Context, username string, w io.Writer) error
	GetUnlocksForGameFunc               func(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (map[progressdomain.AchievementID]progressdomain.UnlockDates, error)
	GetConsoleProgressFunc              func(ctx context.Context, player progressdomain.Player, systemID progressdomain.SystemID) ([]progressdomain.ConsoleGameProgress, error)
	GetPlayedGamesFunc                  func(ctx context.Context, player progressdomain.Player) ([]progressdomain.PlayedGame, error)
	GetGameRecentPlayersFunc            func(ctx context.Context, gameID progressdomain.GameID, limit int) ([]progressdomain.RecentPlayer, error)
	RecomputePlayerGameFunc             func(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (progressdomain.SummaryCheck, error)
}

func NewFakeProgressService() *FakeProgressService {
	return &FakeProgressService{
		trace: []string{},
	}
}

func (f *FakeProgressService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeProgressService) FindPlayer(ctx context.Context, username string) (progressdomain.Player, error) {
	f.record("FindPlayer")
	if f.FindPlayerFunc != nil {
		return f.FindPlayerFunc(ctx, username)
	}
	return progressdomain.Player{}, nil
}

func (f *FakeProgressService) EvaluateBeaten(ctx context.Context, gameID progressdomain.GameID, userID progressdomain.UserID) (progressdomain.BeatenStatus, error) {
	f.record("EvaluateBeaten")
	if f.EvaluateBeatenFunc != nil {
		return f.EvaluateBeatenFunc(ctx, gameID, userID)
	}
	return progressdomain.BeatenStatus{}, nil
}

func (f *FakeProgressService) GetGameRank(ctx context.Context, gameID progressdomain.GameID, player progressdomain.Player) (progressdomain.GameRank, error) {
	f.record("GetGameRank")
	if f.GetGameRankFunc != nil {
		return f.GetGameRankFunc(ctx, gameID, player)
	}
	return progressdomain.GameRank{}, nil
}

func (f *FakeProgressService) GetUserProgress(ctx context.Context, player progressdomain.Player, gameIDs []progressdomain.GameID, opts progressdomain.ProgressOptions) (progressdomain.UserProgress, error) {
	f.record("GetUserProgress")
	if f.GetUserProgressFunc != nil {
		return f.GetUserProgressFunc(ctx, player, gameIDs, opts)
	}
	return progressdomain.UserProgress{}, nil
}

func (f *FakeProgressService) GetTopAchievers(ctx context.Context, gameID progressdomain.GameID) (progressdomain.TopAchievers, error) {
	f.record("GetTopAchievers")
	if f.GetTopAchieversFunc != nil {
		return f.GetTopAchieversFunc(ctx, gameID)
	}
	return progressdomain.TopAchievers{}, nil
}

func (f *FakeProgressService) ExpireTopAchievers(ctx context.Context, gameID progressdomain.GameID) error {
	f.record("ExpireTopAchievers")
	if f.ExpireTopAchieversFunc != nil {
		return f.ExpireTopAchieversFunc(ctx, gameID)
	}
	return nil
}

func (f *FakeProgressService) GetCompletedGames(ctx context.Context, username string) ([]progressdomain.CompletedGame, error) {
	f.record("GetCompletedGames")
	if f.GetCompletedGamesFunc != nil {
		return f.GetCompletedGamesFunc(ctx, username)
	}
	return nil, nil
}

func (f *FakeProgressService) PrepareCompletedGamesCacheValue(ctx context.Context, username string) (string, error) {
	f.record("PrepareCompletedGamesCacheValue")
	if f.PrepareCompletedGamesCacheValueFunc != nil {
		return f.PrepareCompletedGamesCacheValueFunc(ctx, username)
	}
	return "", nil
}

func (f *FakeProgressService) GetLightweightCompletedGames(ctx context.Context, username string, cachedValue string) ([]progressdomain.CompletedGame, error) {
	f.record("GetLightweightCompletedGames")
	if f.GetLightweightCompletedGamesFunc != nil {
		return f.GetLightweightCompletedGamesFunc(ctx, username, cachedValue)
	}
	return nil, nil
}

func (f *FakeProgressService) ExportCompletedGames(ctx context.Context, username string, w io.Writer) error {
	f.record("ExportCompletedGames")
	if f.ExportCompletedGamesFunc != nil {
		return f.ExportCompletedGamesFunc(ctx, username, w)
	}
	return nil
}

func (f *FakeProgressService) GetUnlocksForGame(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (map[progressdomain.AchievementID]progressdomain.UnlockDates, error) {
	f.record("GetUnlocksForGame")
	if f.GetUnlocksForGameFunc != nil {
		return f.GetUnlocksForGameFunc(ctx, player, gameID)
	}
	return nil, nil
}

func (f *FakeProgressService) GetConsoleProgress(ctx context.Context, player progressdomain.Player, systemID progressdomain.SystemID) ([]progressdomain.ConsoleGameProgress, error) {
	f.record("GetConsoleProgress")
	if f.GetConsoleProgressFunc != nil {
		return f.GetConsoleProgressFunc(ctx, player, systemID)
	}
	return nil, nil
}

func (f *FakeProgressService) GetPlayedGames(ctx context.Context, player progressdomain.Player) ([]progressdomain.PlayedGame, error) {
	f.record("GetPlayedGames")
	if f.GetPlayedGamesFunc != nil {
		return f.GetPlayedGamesFunc(ctx, player)
	}
	return nil, nil
}

func (f *FakeProgressService) GetGameRecentPlayers(ctx context.Context, gameID progressdomain.GameID, limit int) ([]progressdomain.RecentPlayer, error) {
	f.record("GetGameRecentPlayers")
	if f.GetGameRecentPlayersFunc != nil {
		return f.GetGameRecentPlayersFunc(ctx, gameID, limit)
	}
	return nil, nil
}

func (f *FakeProgressService) RecomputePlayerGame(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (progressdomain.SummaryCheck, error) {
	f.record("RecomputePlayerGame")
	if f.RecomputePlayerGameFunc != nil {
		return f.RecomputePlayerGameFunc(ctx, player, gameID)
	}
	return progressdomain.SummaryCheck{}, nil
}

// --- Accessors for assertions ---

func (f *FakeProgressService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ progressservice.Service = (*FakeProgressService)(nil)
