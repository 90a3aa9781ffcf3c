package progressservice

import (
	"context"
	"io"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
)

// Service defines the operations of the progress engine.
type Service interface {
	// FindPlayer resolves a username. Unknown names return ErrPlayerNotFound.
	FindPlayer(ctx context.Context, username string) (progressdomain.Player, error)

	// EvaluateBeaten reports whether the player has beaten the game in softcore and hardcore.
	EvaluateBeaten(ctx context.Context, gameID progressdomain.GameID, userID progressdomain.UserID) (progressdomain.BeatenStatus, error)

	// GetGameRank returns the player's position on the game's points leaderboard.
	GetGameRank(ctx context.Context, gameID progressdomain.GameID, player progressdomain.Player) (progressdomain.GameRank, error)

	// GetUserProgress aggregates the player's progress over the given games.
	GetUserProgress(ctx context.Context, player progressdomain.Player, gameIDs []progressdomain.GameID, opts progressdomain.ProgressOptions) (progressdomain.UserProgress, error)

	// GetTopAchievers returns the game's hardcore high scores and latest masters.
	GetTopAchievers(ctx context.Context, gameID progressdomain.GameID) (progressdomain.TopAchievers, error)

	// ExpireTopAchievers drops the game's cached top achievers.
	ExpireTopAchievers(ctx context.Context, gameID progressdomain.GameID) error

	// GetCompletedGames lists the player's completion per game.
	GetCompletedGames(ctx context.Context, username string) ([]progressdomain.CompletedGame, error)

	// PrepareCompletedGamesCacheValue renders the player's completed games in the
	// legacy compact encoding.
	PrepareCompletedGamesCacheValue(ctx context.Context, username string) (string, error)

	// GetLightweightCompletedGames merges a compact cache value into the player's
	// game list. An empty cachedValue is computed on the fly.
	GetLightweightCompletedGames(ctx context.Context, username string, cachedValue string) ([]progressdomain.CompletedGame, error)

	// ExportCompletedGames writes the completed-games list as an xlsx workbook.
	ExportCompletedGames(ctx context.Context, username string, w io.Writer) error

	// GetUnlocksForGame returns the player's earn dates per official achievement.
	GetUnlocksForGame(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (map[progressdomain.AchievementID]progressdomain.UnlockDates, error)

	// GetConsoleProgress lists every game of a console with the player's counts.
	GetConsoleProgress(ctx context.Context, player progressdomain.Player, systemID progressdomain.SystemID) ([]progressdomain.ConsoleGameProgress, error)

	// GetPlayedGames lists the games the player has unlocked anything in.
	GetPlayedGames(ctx context.Context, player progressdomain.Player) ([]progressdomain.PlayedGame, error)

	// GetGameRecentPlayers lists players recently seen in the game, newest first.
	// A limit of zero returns everyone.
	GetGameRecentPlayers(ctx context.Context, gameID progressdomain.GameID, limit int) ([]progressdomain.RecentPlayer, error)

	// RecomputePlayerGame rebuilds the player's summary of a game from raw unlocks
	// and compares it with the stored one.
	RecomputePlayerGame(ctx context.Context, player progressdomain.Player, gameID progressdomain.GameID) (progressdomain.SummaryCheck, error)
}
