package progressdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

var beatTierTypes = []string{
	string(progressdomain.AchievementTypeProgression),
	string(progressdomain.AchievementTypeWinCondition),
}

const officialCore = int(progressdomain.AchievementFlagOfficialCore)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new progress repository.
func NewRepository(db bun.IDB) *Impl {
	return &Impl{db: db}
}

var (
	_ Repository      = (*Impl)(nil)
	_ CacheRepository = (*Impl)(nil)
)

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetUserByUsername returns the account with the given username.
func (r *Impl) GetUserByUsername(ctx context.Context, db bun.IDB, username string) (*User, error) {
	db = r.resolveDB(db)
	user := new(User)
	err := db.NewSelect().
		Model(user).
		Where("u.username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetBeatTierCounts counts the official-core achievements of a game by type.
func (r *Impl) GetBeatTierCounts(ctx context.Context, db bun.IDB, gameID int64) ([]TypeCountRow, error) {
	db = r.resolveDB(db)
	var rows []TypeCountRow
	err := db.NewSelect().
		TableExpr("achievements AS a").
		ColumnExpr("a.type AS type").
		ColumnExpr("COUNT(*) AS count").
		Where("a.game_id = ?", gameID).
		Where("a.flags = ?", officialCore).
		Where("a.type IN (?)", bun.In(beatTierTypes)).
		GroupExpr("a.type").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count beat tier achievements: %w", err)
	}
	return rows, nil
}

// GetBeatTierUnlocks returns the player's unlocks of beat-tier achievements of a game.
func (r *Impl) GetBeatTierUnlocks(ctx context.Context, db bun.IDB, gameID, userID int64) ([]TierUnlockRow, error) {
	db = r.resolveDB(db)
	var rows []TierUnlockRow
	err := db.NewSelect().
		TableExpr("player_achievements AS pa").
		Join("JOIN achievements AS a ON a.id = pa.achievement_id").
		ColumnExpr("pa.achievement_id, a.type, pa.unlocked_at, pa.unlocked_hardcore_at").
		Where("pa.user_id = ?", userID).
		Where("a.game_id = ?", gameID).
		Where("a.flags = ?", officialCore).
		Where("a.type IN (?)", bun.In(beatTierTypes)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get beat tier unlocks: %w", err)
	}
	return rows, nil
}

// GetGames returns games with their system loaded.
func (r *Impl) GetGames(ctx context.Context, db bun.IDB, gameIDs []int64) ([]Game, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var games []Game
	err := db.NewSelect().
		Model(&games).
		Relation("System").
		Where("g.id IN (?)", bun.In(gameIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	return games, nil
}

// GetPlayerGames returns the summary rows of a player for the given games.
func (r *Impl) GetPlayerGames(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]PlayerGame, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var rows []PlayerGame
	err := db.NewSelect().
		Model(&rows).
		Where("pg.user_id = ?", userID).
		Where("pg.game_id IN (?)", bun.In(gameIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player games: %w", err)
	}
	return rows, nil
}

// GetPlayerGame returns a single summary row.
func (r *Impl) GetPlayerGame(ctx context.Context, db bun.IDB, userID, gameID int64) (*PlayerGame, error) {
	db = r.resolveDB(db)
	row := new(PlayerGame)
	err := db.NewSelect().
		Model(row).
		Where("pg.user_id = ?", userID).
		Where("pg.game_id = ?", gameID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player game: %w", err)
	}
	return row, nil
}

// GetGameScores returns every summary row of a game joined with its owner.
func (r *Impl) GetGameScores(ctx context.Context, db bun.IDB, gameID int64) ([]GameScoreRow, error) {
	db = r.resolveDB(db)
	var rows []GameScoreRow
	err := db.NewSelect().
		TableExpr("player_games AS pg").
		Join("JOIN users AS u ON u.id = pg.user_id").
		ColumnExpr("pg.user_id, u.username, u.untracked, pg.points, pg.last_unlock_at, pg.last_unlock_hardcore_at").
		Where("pg.game_id = ?", gameID).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get game scores: %w", err)
	}
	return rows, nil
}

// CountOfficialCore counts the official-core achievements of a game.
func (r *Impl) CountOfficialCore(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*Achievement)(nil)).
		Where("a.game_id = ?", gameID).
		Where("a.flags = ?", officialCore).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count official core achievements: %w", err)
	}
	return count, nil
}

// GetHardcoreLeaders returns tracked players with hardcore progress in a game.
func (r *Impl) GetHardcoreLeaders(ctx context.Context, db bun.IDB, gameID int64) ([]HardcoreLeaderRow, error) {
	db = r.resolveDB(db)
	var rows []HardcoreLeaderRow
	err := db.NewSelect().
		TableExpr("player_games AS pg").
		Join("JOIN users AS u ON u.id = pg.user_id").
		ColumnExpr("pg.user_id, u.username").
		ColumnExpr("pg.achievements_unlocked_hardcore AS num_achievements").
		ColumnExpr("pg.points_hardcore AS total_score").
		ColumnExpr("pg.last_unlock_hardcore_at AS last_award").
		Where("pg.game_id = ?", gameID).
		Where("u.untracked = FALSE").
		Where("pg.achievements_unlocked_hardcore > 0").
		OrderExpr("pg.points_hardcore DESC").
		OrderExpr("pg.achievements_unlocked_hardcore DESC").
		OrderExpr("pg.last_unlock_hardcore_at ASC NULLS LAST").
		OrderExpr("u.username ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get hardcore leaders: %w", err)
	}
	return rows, nil
}

// GetFeedRows returns the official-core achievements of the games with the player's
// unlock dates. The player filter lives in the join so locked achievements survive.
func (r *Impl) GetFeedRows(ctx context.Context, db bun.IDB, userID int64, gameIDs []int64) ([]FeedRow, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var rows []FeedRow
	err := db.NewSelect().
		TableExpr("achievements AS a").
		Join("JOIN games AS g ON g.id = a.game_id").
		Join("LEFT JOIN player_achievements AS pa ON pa.achievement_id = a.id AND pa.user_id = ?", userID).
		ColumnExpr("a.id AS achievement_id, a.game_id, g.title AS game_title").
		ColumnExpr("a.title, a.description, a.points, a.badge_name").
		ColumnExpr("pa.unlocked_at, pa.unlocked_hardcore_at").
		Where("a.game_id IN (?)", bun.In(gameIDs)).
		Where("a.flags = ?", officialCore).
		OrderExpr("a.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed rows: %w", err)
	}
	return rows, nil
}

// GetCompletedGames returns the player's summary rows for sufficiently large sets.
func (r *Impl) GetCompletedGames(ctx context.Context, db bun.IDB, userID int64, minPublished int) ([]CompletedGameRow, error) {
	db = r.resolveDB(db)
	var rows []CompletedGameRow
	err := db.NewSelect().
		TableExpr("player_games AS pg").
		Join("JOIN games AS g ON g.id = pg.game_id").
		Join("LEFT JOIN systems AS s ON s.id = g.system_id").
		ColumnExpr("g.id AS game_id, g.system_id AS console_id, COALESCE(s.name, '') AS console_name").
		ColumnExpr("g.image_icon, g.title, g.achievements_published AS max_possible").
		ColumnExpr("pg.achievements_unlocked AS num_awarded, pg.achievements_unlocked_hardcore AS num_awarded_hc").
		ColumnExpr("pg.first_unlock_at AS first_won_date, pg.last_unlock_at AS most_recent_won_date").
		Where("pg.user_id = ?", userID).
		Where("g.achievements_published > ?", minPublished).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed games: %w", err)
	}
	return rows, nil
}

// GetLightGames returns games in which the player has any official-core unlock.
func (r *Impl) GetLightGames(ctx context.Context, db bun.IDB, userID int64) ([]LightGameRow, error) {
	db = r.resolveDB(db)
	unlockedGames := db.NewSelect().
		TableExpr("player_achievements AS pa").
		Join("JOIN achievements AS a ON a.id = pa.achievement_id").
		ColumnExpr("DISTINCT a.game_id").
		Where("pa.user_id = ?", userID).
		Where("a.flags = ?", officialCore)

	var rows []LightGameRow
	err := db.NewSelect().
		TableExpr("games AS g").
		Join("LEFT JOIN systems AS s ON s.id = g.system_id").
		ColumnExpr("g.id AS game_id, g.system_id AS console_id, COALESCE(s.name, '') AS console_name").
		ColumnExpr("g.image_icon, g.title").
		Where("g.id IN (?)", unlockedGames).
		OrderExpr("g.title ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get light games: %w", err)
	}
	return rows, nil
}

// GetGameAchievements returns the achievements of a game with the given flag.
func (r *Impl) GetGameAchievements(ctx context.Context, db bun.IDB, gameID int64, flags int) ([]Achievement, error) {
	db = r.resolveDB(db)
	var rows []Achievement
	err := db.NewSelect().
		Model(&rows).
		Where("a.game_id = ?", gameID).
		Where("a.flags = ?", flags).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get game achievements: %w", err)
	}
	return rows, nil
}

// GetPlayerUnlocksForGame returns the player's raw unlock events for a game.
func (r *Impl) GetPlayerUnlocksForGame(ctx context.Context, db bun.IDB, userID, gameID int64) ([]PlayerAchievement, error) {
	db = r.resolveDB(db)
	var rows []PlayerAchievement
	err := db.NewSelect().
		Model(&rows).
		Join("JOIN achievements AS a ON a.id = pa.achievement_id").
		Where("pa.user_id = ?", userID).
		Where("a.game_id = ?", gameID).
		Order("pa.achievement_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get player unlocks: %w", err)
	}
	return rows, nil
}

// GetConsoleProgress returns every game of a console with published achievements.
func (r *Impl) GetConsoleProgress(ctx context.Context, db bun.IDB, userID, systemID int64) ([]ConsoleProgressRow, error) {
	db = r.resolveDB(db)
	var rows []ConsoleProgressRow
	err := db.NewSelect().
		TableExpr("games AS g").
		Join("LEFT JOIN player_games AS pg ON pg.game_id = g.id AND pg.user_id = ?", userID).
		ColumnExpr("g.id AS game_id, g.achievements_published AS num_ach").
		ColumnExpr("COALESCE(pg.achievements_unlocked, 0) AS earned").
		ColumnExpr("COALESCE(pg.achievements_unlocked_hardcore, 0) AS hc_earned").
		Where("g.system_id = ?", systemID).
		Where("g.achievements_published > 0").
		OrderExpr("g.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get console progress: %w", err)
	}
	return rows, nil
}

// GetPlayedGames returns the games in which the player has at least one unlock.
func (r *Impl) GetPlayedGames(ctx context.Context, db bun.IDB, userID int64) ([]PlayedGameRow, error) {
	db = r.resolveDB(db)
	var rows []PlayedGameRow
	err := db.NewSelect().
		TableExpr("player_games AS pg").
		Join("JOIN games AS g ON g.id = pg.game_id").
		Join("LEFT JOIN systems AS s ON s.id = g.system_id").
		ColumnExpr("g.id AS game_id, g.title, COALESCE(s.name, '') AS console_name").
		ColumnExpr("g.achievements_published AS num_achievements").
		ColumnExpr("pg.achievements_unlocked AS num_achieved").
		Where("pg.user_id = ?", userID).
		Where("pg.achievements_unlocked > 0").
		OrderExpr("g.title ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get played games: %w", err)
	}
	return rows, nil
}

// GetSessionPlayers returns the players with a rich presence session in a game, one row
// per player with their latest message, most recent first. limit <= 0 is unbounded.
func (r *Impl) GetSessionPlayers(ctx context.Context, db bun.IDB, gameID int64, limit int) ([]RecentPlayerRow, error) {
	db = r.resolveDB(db)
	var rows []RecentPlayerRow
	q := db.NewSelect().
		TableExpr("player_sessions AS ps").
		Join("JOIN users AS u ON u.id = ps.user_id").
		ColumnExpr("ps.user_id, u.username").
		ColumnExpr("MAX(ps.rich_presence_updated_at) AS seen_at").
		ColumnExpr("(ARRAY_AGG(ps.rich_presence ORDER BY ps.rich_presence_updated_at DESC NULLS LAST))[1] AS activity").
		Where("ps.game_id = ?", gameID).
		Where("ps.rich_presence IS NOT NULL").
		GroupExpr("ps.user_id, u.username").
		OrderExpr("seen_at DESC NULLS LAST").
		OrderExpr("u.username ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to get session players: %w", err)
	}
	return rows, nil
}

// GetLastPlayedPlayers returns players whose last game is gameID and whose rich presence
// is newer than since, most recent first, skipping excludeUserIDs.
func (r *Impl) GetLastPlayedPlayers(ctx context.Context, db bun.IDB, gameID int64, since time.Time, excludeUserIDs []int64, limit int) ([]RecentPlayerRow, error) {
	db = r.resolveDB(db)
	var rows []RecentPlayerRow
	q := db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.id AS user_id, u.username").
		ColumnExpr("u.rich_presence_msg_date AS seen_at").
		ColumnExpr("u.rich_presence_msg AS activity").
		Where("u.last_game_id = ?", gameID).
		Where("u.rich_presence_msg_date > ?", since).
		OrderExpr("u.rich_presence_msg_date DESC").
		OrderExpr("u.username ASC")
	if len(excludeUserIDs) > 0 {
		q = q.Where("u.id NOT IN (?)", bun.In(excludeUserIDs))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to get last played players: %w", err)
	}
	return rows, nil
}
