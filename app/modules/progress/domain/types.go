package progressdomain

import "time"

// GameID identifies a game.
type GameID int64

// UserID identifies a player account.
type UserID int64

// AchievementID identifies an achievement.
type AchievementID int64

// SystemID identifies a console.
type SystemID int64

// AchievementType classifies an achievement's role in beating a game.
type AchievementType string

const (
	AchievementTypeProgression  AchievementType = "progression"
	AchievementTypeWinCondition AchievementType = "win_condition"
	AchievementTypeMissable     AchievementType = "missable"
)

// AchievementFlag is the publication state of an achievement.
type AchievementFlag int

const (
	AchievementFlagOfficialCore AchievementFlag = 3
	AchievementFlagUnofficial   AchievementFlag = 5
)

// Player is the subset of an account the engine needs.
type Player struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	Untracked bool   `json:"untracked"`
}

// Achievement is a single published or unofficial achievement.
type Achievement struct {
	ID          AchievementID   `json:"id"`
	GameID      GameID          `json:"game_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Points      int             `json:"points"`
	Type        AchievementType `json:"type,omitempty"`
	Flags       AchievementFlag `json:"flags"`
	BadgeName   string          `json:"badge_name"`
}

// UnlockEvent records a player's unlock of one achievement.
// UnlockedHardcoreAt, when set, implies UnlockedAt is set and not later.
type UnlockEvent struct {
	UserID             UserID        `json:"user_id"`
	AchievementID      AchievementID `json:"achievement_id"`
	UnlockedAt         *time.Time    `json:"unlocked_at,omitempty"`
	UnlockedHardcoreAt *time.Time    `json:"unlocked_hardcore_at,omitempty"`
}

// TierUnlock is an unlock of a beat-tier achievement tagged with its type.
type TierUnlock struct {
	AchievementID      AchievementID   `json:"achievement_id"`
	Type               AchievementType `json:"type"`
	UnlockedAt         *time.Time      `json:"unlocked_at,omitempty"`
	UnlockedHardcoreAt *time.Time      `json:"unlocked_hardcore_at,omitempty"`
}

// AchievementUnlock pairs a published achievement with the player's unlock dates,
// both nil when the achievement is still locked.
type AchievementUnlock struct {
	Achievement        Achievement `json:"achievement"`
	UnlockedAt         *time.Time  `json:"unlocked_at,omitempty"`
	UnlockedHardcoreAt *time.Time  `json:"unlocked_hardcore_at,omitempty"`
}

// Game is the descriptive metadata of a game.
type Game struct {
	ID                    GameID   `json:"id"`
	Title                 string   `json:"title"`
	ConsoleID             SystemID `json:"console_id"`
	ConsoleName           string   `json:"console_name"`
	ForumTopicID          int64    `json:"forum_topic_id"`
	Flags                 int      `json:"flags"`
	ImageIcon             string   `json:"image_icon"`
	ImageTitle            string   `json:"image_title"`
	ImageIngame           string   `json:"image_ingame"`
	ImageBoxArt           string   `json:"image_box_art"`
	Publisher             string   `json:"publisher"`
	Developer             string   `json:"developer"`
	Genre                 string   `json:"genre"`
	Released              string   `json:"released"`
	IsFinal               bool     `json:"is_final"`
	AchievementsPublished int      `json:"achievements_published"`
	PointsTotal           int      `json:"points_total"`
}

// PlayerGameSummary is the per (player, game) projection over unlock events.
type PlayerGameSummary struct {
	UserID                       UserID     `json:"user_id"`
	GameID                       GameID     `json:"game_id"`
	AchievementsUnlocked         int        `json:"achievements_unlocked"`
	AchievementsUnlockedHardcore int        `json:"achievements_unlocked_hardcore"`
	Points                       int        `json:"points"`
	PointsHardcore               int        `json:"points_hardcore"`
	FirstUnlockAt                *time.Time `json:"first_unlock_at,omitempty"`
	LastUnlockAt                 *time.Time `json:"last_unlock_at,omitempty"`
	FirstUnlockHardcoreAt        *time.Time `json:"first_unlock_hardcore_at,omitempty"`
	LastUnlockHardcoreAt         *time.Time `json:"last_unlock_hardcore_at,omitempty"`
	BeatenSoftcore               bool       `json:"beaten_softcore"`
	BeatenHardcore               bool       `json:"beaten_hardcore"`
}

// PlayerGameScore is a summary row joined with its owner, used for ranking.
type PlayerGameScore struct {
	UserID               UserID     `json:"user_id"`
	Username             string     `json:"username"`
	Untracked            bool       `json:"untracked"`
	Points               int        `json:"points"`
	LastUnlockAt         *time.Time `json:"last_unlock_at,omitempty"`
	LastUnlockHardcoreAt *time.Time `json:"last_unlock_hardcore_at,omitempty"`
}

// HardcoreScore is a tracked player's hardcore progress in one game.
type HardcoreScore struct {
	UserID          UserID     `json:"user_id"`
	Username        string     `json:"username"`
	NumAchievements int        `json:"num_achievements"`
	TotalScore      int        `json:"total_score"`
	LastAward       *time.Time `json:"last_award,omitempty"`
}

// UnlockDates are the earn dates of one achievement for one player.
type UnlockDates struct {
	DateEarned         *time.Time `json:"date_earned,omitempty"`
	DateEarnedHardcore *time.Time `json:"date_earned_hardcore,omitempty"`
}

// ConsoleGameProgress is a player's progress in one game of a console.
type ConsoleGameProgress struct {
	GameID   GameID `json:"game_id"`
	NumAch   int    `json:"num_ach"`
	Earned   int    `json:"earned"`
	HCEarned int    `json:"hc_earned"`
}

// PlayedGame is a game the player has at least one unlock in.
type PlayedGame struct {
	GameID          GameID `json:"game_id"`
	Title           string `json:"title"`
	ConsoleName     string `json:"console_name"`
	NumAchievements int    `json:"num_achievements"`
	NumAchieved     int    `json:"num_achieved"`
}
