package progressdomain

import (
	"sort"
	"time"
)

// Recent feed modes for ProgressOptions.RecentAchievements.
const (
	RecentFeedOff = -1
	RecentFeedAll = 0
)

// ProgressOptions controls the optional parts of a progress request.
type ProgressOptions struct {
	RecentAchievements int  `json:"recent_achievements"`
	WithGameInfo       bool `json:"with_game_info"`
}

// GameProgress is a player's aggregate progress in one game.
type GameProgress struct {
	NumPossibleAchievements int   `json:"num_possible_achievements"`
	PossibleScore           int   `json:"possible_score"`
	NumAchieved             int   `json:"num_achieved"`
	ScoreAchieved           int   `json:"score_achieved"`
	NumAchievedHardcore     int   `json:"num_achieved_hardcore"`
	ScoreAchievedHardcore   int   `json:"score_achieved_hardcore"`
	GameInfo                *Game `json:"game_info,omitempty"`
}

// NewGameProgress builds the aggregate for one game. A missing game yields zeros even
// when a summary row exists for it; a missing summary yields zero achieved counts.
func NewGameProgress(game *Game, summary *PlayerGameSummary) GameProgress {
	var p GameProgress
	if game == nil {
		return p
	}
	p.NumPossibleAchievements = game.AchievementsPublished
	p.PossibleScore = game.PointsTotal
	if summary != nil {
		p.NumAchieved = summary.AchievementsUnlocked
		p.ScoreAchieved = summary.Points
		p.NumAchievedHardcore = summary.AchievementsUnlockedHardcore
		p.ScoreAchievedHardcore = summary.PointsHardcore
	}
	return p
}

// RecentAchievement is an entry of the recent-achievements feed.
// Locked achievements carry a nil DateAwarded and a nil HardcoreAchieved.
type RecentAchievement struct {
	ID               AchievementID `json:"id"`
	GameID           GameID        `json:"game_id"`
	GameTitle        string        `json:"game_title"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Points           int           `json:"points"`
	BadgeName        string        `json:"badge_name"`
	IsAwarded        bool          `json:"is_awarded"`
	DateAwarded      *time.Time    `json:"date_awarded"`
	HardcoreAchieved *bool         `json:"hardcore_achieved"`
}

// RecentGameGroup holds the feed entries of one game in achievement id order.
type RecentGameGroup struct {
	GameID       GameID              `json:"game_id"`
	Achievements []RecentAchievement `json:"achievements"`
}

// UserProgress is the result of a progress request.
type UserProgress struct {
	Games  map[GameID]GameProgress `json:"games"`
	Order  []GameID                `json:"order"`
	Recent []RecentGameGroup       `json:"recent,omitempty"`
}

// FeedRow is an achievement of a requested game with the player's unlock dates.
type FeedRow struct {
	Achievement        Achievement
	GameTitle          string
	UnlockedAt         *time.Time
	UnlockedHardcoreAt *time.Time
}

func (r FeedRow) unlocked() bool {
	return r.UnlockedAt != nil || r.UnlockedHardcoreAt != nil
}

func (r FeedRow) toRecent() RecentAchievement {
	entry := RecentAchievement{
		ID:          r.Achievement.ID,
		GameID:      r.Achievement.GameID,
		GameTitle:   r.GameTitle,
		Title:       r.Achievement.Title,
		Description: r.Achievement.Description,
		Points:      r.Achievement.Points,
		BadgeName:   r.Achievement.BadgeName,
	}
	if !r.unlocked() {
		return entry
	}

	hardcore := r.UnlockedHardcoreAt != nil
	entry.IsAwarded = true
	entry.HardcoreAchieved = &hardcore
	if hardcore {
		entry.DateAwarded = r.UnlockedHardcoreAt
	} else {
		entry.DateAwarded = r.UnlockedAt
	}
	return entry
}

// BuildRecentFeed assembles the recent-achievements feed from the achievements of the
// requested games. limit is RecentFeedOff, RecentFeedAll or a positive count of unlocks.
// Unlocks sort by date desc then achievement id asc; with RecentFeedAll the locked
// achievements follow. Entries are then grouped by game in first-appearance order and
// by achievement id inside each group.
func BuildRecentFeed(rows []FeedRow, limit int) []RecentGameGroup {
	if limit < RecentFeedAll {
		return nil
	}

	var unlocked, locked []RecentAchievement
	for _, r := range rows {
		if r.unlocked() {
			unlocked = append(unlocked, r.toRecent())
		} else if limit == RecentFeedAll {
			locked = append(locked, r.toRecent())
		}
	}

	sort.SliceStable(unlocked, func(i, j int) bool {
		a, b := unlocked[i], unlocked[j]
		if !a.DateAwarded.Equal(*b.DateAwarded) {
			return a.DateAwarded.After(*b.DateAwarded)
		}
		return a.ID < b.ID
	})
	sort.SliceStable(locked, func(i, j int) bool {
		return locked[i].ID < locked[j].ID
	})

	if limit > 0 && len(unlocked) > limit {
		unlocked = unlocked[:limit]
	}

	return groupByGame(append(unlocked, locked...))
}

func groupByGame(entries []RecentAchievement) []RecentGameGroup {
	groups := []RecentGameGroup{}
	index := make(map[GameID]int)
	for _, e := range entries {
		i, ok := index[e.GameID]
		if !ok {
			i = len(groups)
			index[e.GameID] = i
			groups = append(groups, RecentGameGroup{GameID: e.GameID})
		}
		groups[i].Achievements = append(groups[i].Achievements, e)
	}
	for i := range groups {
		achievements := groups[i].Achievements
		sort.SliceStable(achievements, func(a, b int) bool {
			return achievements[a].ID < achievements[b].ID
		})
	}
	return groups
}
