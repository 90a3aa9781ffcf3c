package progressdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the read contract of the progress engine.
type Repository interface {
	// GetUserByUsername returns the account with the given username.
	GetUserByUsername(ctx context.Context, db bun.IDB, username string) (*User, error)

	// GetBeatTierCounts counts the official-core achievements of a game by type.
	GetBeatTierCounts(ctx context.Context, db bun.IDB, gameID int64) ([]TypeCountRow, error)

	// GetBeatTierUnlocks returns the player's unlocks of official-core progression
	// and win-condition achievements of a game.
	GetBeatTierUnlocks(ctx context.Context, db bun.IDB, gameID, userID int64) ([]TierUnlockRow, error)

	// GetGames returns games with their system loaded.
	GetGames(ctx context.Context, db bun.IDB, gameIDs []int64) ([]Game, error)

	// GetPlayerGames returns the summary rows of a player for the given games.
	GetPlayerGames(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]PlayerGame, error)

	// GetPlayerGame returns a single summary row.
	GetPlayerGame(ctx context.Context, db bun.IDB, userID, gameID int64) (*PlayerGame, error)

	// GetGameScores returns every summary row of a game joined with its owner.
	GetGameScores(ctx context.Context, db bun.IDB, gameID int64) ([]GameScoreRow, error)

	// CountOfficialCore counts the official-core achievements of a game.
	CountOfficialCore(ctx context.Context, db bun.IDB, gameID int64) (int, error)

	// GetHardcoreLeaders returns tracked players with hardcore progress in a game, ordered
	// by hardcore points desc, hardcore count desc, last hardcore unlock asc.
	GetHardcoreLeaders(ctx context.Context, db bun.IDB, gameID int64) ([]HardcoreLeaderRow, error)

	// GetFeedRows returns the official-core achievements of the games with the player's
	// unlock dates.
	GetFeedRows(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]FeedRow, error)

	// GetCompletedGames returns the player's summary rows for games with more than
	// minPublished published achievements.
	GetCompletedGames(ctx context.Context, db bun.IDB, userID int64, minPublished int) ([]CompletedGameRow, error)

	// GetLightGames returns games in which the player has any official-core unlock.
	GetLightGames(ctx context.Context, db bun.IDB, userID int64) ([]LightGameRow, error)

	// GetGameAchievements returns the achievements of a game with the given flag.
	GetGameAchievements(ctx context.Context, db bun.IDB, gameID int64, flags int) ([]Achievement, error)

	// GetPlayerUnlocksForGame returns the player's raw unlock events for a game.
	GetPlayerUnlocksForGame(ctx context.Context, db bun.IDB, userID, gameID int64) ([]PlayerAchievement, error)

	// GetConsoleProgress returns every game of a console with published achievements and
	// the player's counts in each.
	GetConsoleProgress(ctx context.Context, db bun.IDB, userID, systemID int64) ([]ConsoleProgressRow, error)

	// GetPlayedGames returns the games in which the player has at least one unlock.
	GetPlayedGames(ctx context.Context, db bun.IDB, userID int64) ([]PlayedGameRow, error)

	// GetSessionPlayers returns the players with a rich presence session in a game, one
	// row per player with their latest message, most recent first. limit <= 0 is unbounded.
	GetSessionPlayers(ctx context.Context, db bun.IDB, gameID int64, limit int) ([]RecentPlayerRow, error)

	// GetLastPlayedPlayers returns players whose last game is gameID and whose rich
	// presence is newer than since, most recent first, skipping excludeUserIDs.
	GetLastPlayedPlayers(ctx context.Context, db bun.IDB, gameID int64, since time.Time, excludeUserIDs []int64, limit int) ([]RecentPlayerRow, error)
}

// CacheRepository persists cache entries.
type CacheRepository interface {
	GetCacheEntry(ctx context.Context, db bun.IDB, key string, now time.Time) (*CacheEntry, error)
	UpsertCacheEntry(ctx context.Context, db bun.IDB, entry *CacheEntry) error
	DeleteCacheEntry(ctx context.Context, db bun.IDB, key string) error
	DeleteExpiredCacheEntries(ctx context.Context, db bun.IDB, now time.Time) (int64, error)
}
