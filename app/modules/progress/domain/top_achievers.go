package progressdomain

import "time"

// TopAchieversLimit is the size of both the high-score and the masters lists.
const TopAchieversLimit = 10

// TopAchiever is an entry of either top-achiever list. Rank is set only for masters
// and is the 1-based order in which mastery was encountered during the scan.
type TopAchiever struct {
	UserID          UserID     `json:"user_id"`
	Username        string     `json:"username"`
	NumAchievements int        `json:"num_achievements"`
	TotalScore      int        `json:"total_score"`
	LastAward       *time.Time `json:"last_award,omitempty"`
	Rank            int        `json:"rank,omitempty"`
}

// TopAchievers is the leaderboard pair of a game.
type TopAchievers struct {
	HighScores []TopAchiever `json:"high_scores"`
	Masters    []TopAchiever `json:"masters"`
}

// MastersFull reports whether the masters list reached capacity, the only
// condition under which a result may be cached.
func (t TopAchievers) MastersFull() bool {
	return len(t.Masters) == TopAchieversLimit
}

// MasterRing is a fixed-capacity circular buffer that keeps the most recent insertions.
type MasterRing struct {
	buf   []TopAchiever
	start int
	size  int
}

// NewMasterRing returns an empty ring with the given capacity.
func NewMasterRing(capacity int) *MasterRing {
	if capacity < 1 {
		capacity = 1
	}
	return &MasterRing{buf: make([]TopAchiever, capacity)}
}

// Push appends entry, evicting the oldest entry when full.
func (r *MasterRing) Push(entry TopAchiever) {
	capacity := len(r.buf)
	if r.size < capacity {
		r.buf[(r.start+r.size)%capacity] = entry
		r.size++
		return
	}
	r.buf[r.start] = entry
	r.start = (r.start + 1) % capacity
}

// Len returns the number of retained entries.
func (r *MasterRing) Len() int {
	return r.size
}

// Full reports whether the ring is at capacity.
func (r *MasterRing) Full() bool {
	return r.size == len(r.buf)
}

// Items returns the retained entries oldest first.
func (r *MasterRing) Items() []TopAchiever {
	out := make([]TopAchiever, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// BuildTopAchievers computes both lists in one pass over rows, which must be ordered by
// hardcore points desc, hardcore count desc, last hardcore unlock asc. A row is a master
// when its hardcore count equals numInSet. With earlyExit the scan stops at the first
// non-master row after the high-score list is full. The two modes agree only while no
// player's hardcore count exceeds numInSet; after an achievement is demoted such a row
// can sort ahead of the masters and hide them from an early-exit scan, so the flag
// stays off by default.
func BuildTopAchievers(rows []HardcoreScore, numInSet int, earlyExit bool) TopAchievers {
	result := TopAchievers{
		HighScores: []TopAchiever{},
		Masters:    []TopAchiever{},
	}
	ring := NewMasterRing(TopAchieversLimit)
	masteryRank := 0

	for _, row := range rows {
		entry := TopAchiever{
			UserID:          row.UserID,
			Username:        row.Username,
			NumAchievements: row.NumAchievements,
			TotalScore:      row.TotalScore,
			LastAward:       row.LastAward,
		}

		highScoresFull := len(result.HighScores) >= TopAchieversLimit
		if !highScoresFull {
			result.HighScores = append(result.HighScores, entry)
		}

		isMaster := numInSet > 0 && row.NumAchievements == numInSet
		if isMaster {
			masteryRank++
			entry.Rank = masteryRank
			ring.Push(entry)
			continue
		}

		if earlyExit && highScoresFull {
			break
		}
	}

	result.Masters = ring.Items()
	return result
}
