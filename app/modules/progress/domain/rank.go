package progressdomain

import (
	"sort"
	"time"
)

// GameRank is a player's leaderboard position in one game.
// Rank is nil when the player is untracked or has no progress in the game.
type GameRank struct {
	Rank       *int       `json:"rank"`
	TotalScore int        `json:"total_score"`
	LastAward  *time.Time `json:"last_award,omitempty"`
}

// LastAward returns the later of the softcore and hardcore last-unlock dates.
func (s PlayerGameScore) LastAward() *time.Time {
	return laterOf(s.LastUnlockAt, s.LastUnlockHardcoreAt)
}

func laterOf(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}

// earlierFirst orders dated values before undated ones.
func earlierFirst(a, b *time.Time) (less, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case a.Equal(*b):
		return false, false
	default:
		return a.Before(*b), true
	}
}

// RankPlayers orders the tracked rows of a game: points descending, then the
// later of the two last-unlock dates ascending, then username ascending.
// Untracked rows are dropped. The input slice is not modified.
func RankPlayers(rows []PlayerGameScore) []PlayerGameScore {
	ranked := make([]PlayerGameScore, 0, len(rows))
	for _, r := range rows {
		if !r.Untracked {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if less, ok := earlierFirst(a.LastAward(), b.LastAward()); ok {
			return less
		}
		return a.Username < b.Username
	})

	return ranked
}

// RankOf computes the GameRank for userID among rows. Rows belonging to untracked
// players never count towards anyone's position. An untracked requester still
// receives score and date with a nil rank.
func RankOf(rows []PlayerGameScore, userID UserID) GameRank {
	var own *PlayerGameScore
	for i := range rows {
		if rows[i].UserID == userID {
			own = &rows[i]
			break
		}
	}
	if own == nil {
		return GameRank{}
	}

	result := GameRank{
		TotalScore: own.Points,
		LastAward:  own.LastAward(),
	}
	if own.Untracked {
		return result
	}

	for i, r := range RankPlayers(rows) {
		if r.UserID == userID {
			rank := i + 1
			result.Rank = &rank
			break
		}
	}
	return result
}
