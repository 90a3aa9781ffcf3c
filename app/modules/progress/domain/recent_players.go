package progressdomain

import "time"

// RecentPlayersLimit is the default size of a game's recent players list.
const RecentPlayersLimit = 10

// RecentPlayersWindowMonths bounds, in calendar months, how old a player's last rich
// presence may be for the last-played fallback.
const RecentPlayersWindowMonths = 6

// RecentPlayer is a player recently seen in a game with their latest activity.
type RecentPlayer struct {
	UserID   UserID     `json:"user_id"`
	Username string     `json:"username"`
	Date     *time.Time `json:"date,omitempty"`
	Activity string     `json:"activity"`
}

// MergeRecentPlayers appends fallback players not already listed in sessions, up to
// limit entries in total. A limit of zero keeps everything.
func MergeRecentPlayers(sessions, fallback []RecentPlayer, limit int) []RecentPlayer {
	out := make([]RecentPlayer, 0, len(sessions)+len(fallback))
	seen := make(map[UserID]struct{}, len(sessions))
	for _, group := range [][]RecentPlayer{sessions, fallback} {
		for _, p := range group {
			if limit > 0 && len(out) == limit {
				return out
			}
			if _, ok := seen[p.UserID]; ok {
				continue
			}
			seen[p.UserID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
