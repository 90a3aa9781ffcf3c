package progressdb

import (
	"time"

	"github.com/uptrace/bun"
)

// System is a console.
type System struct {
	bun.BaseModel `bun:"table:systems,alias:s"`
	ID            int64  `bun:"id,pk" json:"id"`
	Name          string `bun:"name,notnull" json:"name"`
}

// Game holds game metadata and the published-set aggregates.
type Game struct {
	bun.BaseModel         `bun:"table:games,alias:g"`
	ID                    int64     `bun:"id,pk" json:"id"`
	Title                 string    `bun:"title,notnull" json:"title"`
	SystemID              int64     `bun:"system_id,notnull" json:"system_id"`
	ForumTopicID          int64     `bun:"forum_topic_id,notnull,default:0" json:"forum_topic_id"`
	Flags                 int       `bun:"flags,notnull,default:0" json:"flags"`
	ImageIcon             string    `bun:"image_icon,notnull,default:''" json:"image_icon"`
	ImageTitle            string    `bun:"image_title,notnull,default:''" json:"image_title"`
	ImageIngame           string    `bun:"image_ingame,notnull,default:''" json:"image_ingame"`
	ImageBoxArt           string    `bun:"image_box_art,notnull,default:''" json:"image_box_art"`
	Publisher             string    `bun:"publisher,notnull,default:''" json:"publisher"`
	Developer             string    `bun:"developer,notnull,default:''" json:"developer"`
	Genre                 string    `bun:"genre,notnull,default:''" json:"genre"`
	Released              string    `bun:"released,notnull,default:''" json:"released"`
	IsFinal               bool      `bun:"is_final,notnull,default:false" json:"is_final"`
	AchievementsPublished int       `bun:"achievements_published,notnull,default:0" json:"achievements_published"`
	PointsTotal           int       `bun:"points_total,notnull,default:0" json:"points_total"`
	CreatedAt             time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	System *System `bun:"rel:belongs-to,join:system_id=id" json:"system,omitempty"`
}

// User is the account subset read by the engine.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Username      string    `bun:"username,unique,notnull" json:"username"`
	Untracked     bool      `bun:"untracked,notnull,default:false" json:"untracked"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	LastGameID          int64      `bun:"last_game_id,notnull,default:0" json:"last_game_id"`
	RichPresenceMsg     string     `bun:"rich_presence_msg,notnull,default:''" json:"rich_presence_msg"`
	RichPresenceMsgDate *time.Time `bun:"rich_presence_msg_date,nullzero" json:"rich_presence_msg_date,omitempty"`
}

// Achievement is a single achievement of a game.
type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:a"`
	ID            int64   `bun:"id,pk" json:"id"`
	GameID        int64   `bun:"game_id,notnull" json:"game_id"`
	Title         string  `bun:"title,notnull" json:"title"`
	Description   string  `bun:"description,notnull,default:''" json:"description"`
	Points        int     `bun:"points,notnull,default:0" json:"points"`
	Type          *string `bun:"type,nullzero" json:"type,omitempty"`
	Flags         int     `bun:"flags,notnull" json:"flags"`
	BadgeName     string  `bun:"badge_name,notnull,default:''" json:"badge_name"`
}

// PlayerAchievement is a raw unlock event.
type PlayerAchievement struct {
	bun.BaseModel      `bun:"table:player_achievements,alias:pa"`
	ID                 int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID             int64      `bun:"user_id,notnull" json:"user_id"`
	AchievementID      int64      `bun:"achievement_id,notnull" json:"achievement_id"`
	UnlockedAt         *time.Time `bun:"unlocked_at,nullzero" json:"unlocked_at,omitempty"`
	UnlockedHardcoreAt *time.Time `bun:"unlocked_hardcore_at,nullzero" json:"unlocked_hardcore_at,omitempty"`
}

// PlayerGame is the precomputed per (user, game) summary.
type PlayerGame struct {
	bun.BaseModel                `bun:"table:player_games,alias:pg"`
	ID                           int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID                       int64      `bun:"user_id,notnull" json:"user_id"`
	GameID                       int64      `bun:"game_id,notnull" json:"game_id"`
	AchievementsUnlocked         int        `bun:"achievements_unlocked,notnull,default:0" json:"achievements_unlocked"`
	AchievementsUnlockedHardcore int        `bun:"achievements_unlocked_hardcore,notnull,default:0" json:"achievements_unlocked_hardcore"`
	Points                       int        `bun:"points,notnull,default:0" json:"points"`
	PointsHardcore               int        `bun:"points_hardcore,notnull,default:0" json:"points_hardcore"`
	FirstUnlockAt                *time.Time `bun:"first_unlock_at,nullzero" json:"first_unlock_at,omitempty"`
	LastUnlockAt                 *time.Time `bun:"last_unlock_at,nullzero" json:"last_unlock_at,omitempty"`
	FirstUnlockHardcoreAt        *time.Time `bun:"first_unlock_hardcore_at,nullzero" json:"first_unlock_hardcore_at,omitempty"`
	LastUnlockHardcoreAt         *time.Time `bun:"last_unlock_hardcore_at,nullzero" json:"last_unlock_hardcore_at,omitempty"`
	BeatenAt                     *time.Time `bun:"beaten_at,nullzero" json:"beaten_at,omitempty"`
	BeatenHardcoreAt             *time.Time `bun:"beaten_hardcore_at,nullzero" json:"beaten_hardcore_at,omitempty"`
}

// PlayerSession is a play session with its latest rich presence message.
type PlayerSession struct {
	bun.BaseModel         `bun:"table:player_sessions,alias:ps"`
	ID                    int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID                int64      `bun:"user_id,notnull" json:"user_id"`
	GameID                int64      `bun:"game_id,notnull" json:"game_id"`
	RichPresence          *string    `bun:"rich_presence,nullzero" json:"rich_presence,omitempty"`
	RichPresenceUpdatedAt *time.Time `bun:"rich_presence_updated_at,nullzero" json:"rich_presence_updated_at,omitempty"`
	CreatedAt             time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// CacheEntry backs the Postgres cache store.
type CacheEntry struct {
	bun.BaseModel `bun:"table:cache_entries,alias:ce"`
	Key           string    `bun:"cache_key,pk" json:"key"`
	Value         []byte    `bun:"value,type:bytea,notnull" json:"value"`
	ExpiresAt     time.Time `bun:"expires_at,notnull" json:"expires_at"`
}

// TierUnlockRow is an unlock of an official-core progression or win-condition achievement.
type TierUnlockRow struct {
	AchievementID      int64      `bun:"achievement_id"`
	Type               string     `bun:"type"`
	UnlockedAt         *time.Time `bun:"unlocked_at"`
	UnlockedHardcoreAt *time.Time `bun:"unlocked_hardcore_at"`
}

// TypeCountRow is a per-type achievement count.
type TypeCountRow struct {
	Type  string `bun:"type"`
	Count int    `bun:"count"`
}

// GameScoreRow is a summary row of a game joined with its owner.
type GameScoreRow struct {
	UserID               int64      `bun:"user_id"`
	Username             string     `bun:"username"`
	Untracked            bool       `bun:"untracked"`
	Points               int        `bun:"points"`
	LastUnlockAt         *time.Time `bun:"last_unlock_at"`
	LastUnlockHardcoreAt *time.Time `bun:"last_unlock_hardcore_at"`
}

// HardcoreLeaderRow is a tracked player's hardcore totals in one game.
type HardcoreLeaderRow struct {
	UserID          int64      `bun:"user_id"`
	Username        string     `bun:"username"`
	NumAchievements int        `bun:"num_achievements"`
	TotalScore      int        `bun:"total_score"`
	LastAward       *time.Time `bun:"last_award"`
}

// FeedRow is an official-core achievement with the player's unlock dates, if any.
type FeedRow struct {
	AchievementID      int64      `bun:"achievement_id"`
	GameID             int64      `bun:"game_id"`
	GameTitle          string     `bun:"game_title"`
	Title              string     `bun:"title"`
	Description        string     `bun:"description"`
	Points             int        `bun:"points"`
	BadgeName          string     `bun:"badge_name"`
	UnlockedAt         *time.Time `bun:"unlocked_at"`
	UnlockedHardcoreAt *time.Time `bun:"unlocked_hardcore_at"`
}

// CompletedGameRow is a summary row joined with game and console metadata.
type CompletedGameRow struct {
	GameID            int64      `bun:"game_id"`
	ConsoleID         int64      `bun:"console_id"`
	ConsoleName       string     `bun:"console_name"`
	ImageIcon         string     `bun:"image_icon"`
	Title             string     `bun:"title"`
	MaxPossible       int        `bun:"max_possible"`
	NumAwarded        int        `bun:"num_awarded"`
	NumAwardedHC      int        `bun:"num_awarded_hc"`
	FirstWonDate      *time.Time `bun:"first_won_date"`
	MostRecentWonDate *time.Time `bun:"most_recent_won_date"`
}

// LightGameRow is a game the player has any official-core unlock in.
type LightGameRow struct {
	GameID      int64  `bun:"game_id"`
	ConsoleID   int64  `bun:"console_id"`
	ConsoleName string `bun:"console_name"`
	ImageIcon   string `bun:"image_icon"`
	Title       string `bun:"title"`
}

// ConsoleProgressRow is the player's counts in one game of a console.
type ConsoleProgressRow struct {
	GameID   int64 `bun:"game_id"`
	NumAch   int   `bun:"num_ach"`
	Earned   int   `bun:"earned"`
	HCEarned int   `bun:"hc_earned"`
}

// PlayedGameRow is a played game with set size and unlocked count.
type PlayedGameRow struct {
	GameID          int64  `bun:"game_id"`
	Title           string `bun:"title"`
	ConsoleName     string `bun:"console_name"`
	NumAchievements int    `bun:"num_achievements"`
	NumAchieved     int    `bun:"num_achieved"`
}

// RecentPlayerRow is a player seen in a game with their latest activity.
type RecentPlayerRow struct {
	UserID   int64      `bun:"user_id"`
	Username string     `bun:"username"`
	Date     *time.Time `bun:"seen_at"`
	Activity string     `bun:"activity"`
}
