package progressdomain

import (
	"sort"
	"time"
	"unicode"
)

// MinAchievementsForCompletion is the published-achievement count a game must exceed
// to appear in completed-games views.
const MinAchievementsForCompletion = 5

// CompletedGame is one row of a player's completed-games view.
type CompletedGame struct {
	GameID            GameID     `json:"game_id"`
	ConsoleID         SystemID   `json:"console_id"`
	ConsoleName       string     `json:"console_name"`
	ImageIcon         string     `json:"image_icon"`
	Title             string     `json:"title"`
	MaxPossible       int        `json:"max_possible"`
	NumAwarded        int        `json:"num_awarded"`
	NumAwardedHC      int        `json:"num_awarded_hc"`
	PctWon            float64    `json:"pct_won"`
	PctWonHC          float64    `json:"pct_won_hc"`
	FirstWonDate      *time.Time `json:"first_won_date,omitempty"`
	MostRecentWonDate *time.Time `json:"most_recent_won_date,omitempty"`
}

// Ratio returns awarded/possible, or zero when nothing is possible.
func Ratio(awarded, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return float64(awarded) / float64(possible)
}

// WithPercentages fills PctWon and PctWonHC from the counts.
func (g CompletedGame) WithPercentages() CompletedGame {
	g.PctWon = Ratio(g.NumAwarded, g.MaxPossible)
	g.PctWonHC = Ratio(g.NumAwardedHC, g.MaxPossible)
	return g
}

func completedLess(a, b CompletedGame) bool {
	if a.PctWon != b.PctWon {
		return a.PctWon > b.PctWon
	}
	if a.PctWonHC != b.PctWonHC {
		return a.PctWonHC > b.PctWonHC
	}
	if a.MaxPossible != b.MaxPossible {
		return a.MaxPossible > b.MaxPossible
	}
	return a.Title < b.Title
}

// SortCompletedGames orders games by softcore percent desc, hardcore percent desc,
// max possible desc and title asc.
func SortCompletedGames(games []CompletedGame) {
	sort.SliceStable(games, func(i, j int) bool {
		return completedLess(games[i], games[j])
	})
}

// SortLightweightCompletedGames puts fully completed games first, then applies the
// standard completed-games order.
func SortLightweightCompletedGames(games []CompletedGame) {
	sort.SliceStable(games, func(i, j int) bool {
		aFull, bFull := games[i].PctWon == 1.0, games[j].PctWon == 1.0
		if aFull != bFull {
			return aFull
		}
		return completedLess(games[i], games[j])
	})
}

// EligibleForCompletion reports whether a game's set is large enough to be listed.
func EligibleForCompletion(published int) bool {
	return published > MinAchievementsForCompletion
}

// MergeCompletedAwards overlays cached award data onto the light game list. Games
// without a cached row keep zero counts and percentages.
func MergeCompletedAwards(light []CompletedGame, awards []CompletedGameAward) []CompletedGame {
	byGame := make(map[GameID]CompletedGameAward, len(awards))
	for _, a := range awards {
		byGame[a.GameID] = a
	}

	out := make([]CompletedGame, len(light))
	for i, g := range light {
		if a, ok := byGame[g.GameID]; ok {
			g.MaxPossible = a.MaxPossible
			g.NumAwarded = a.NumAwarded
			g.NumAwardedHC = a.NumAwardedHC
			g.MostRecentWonDate = a.MostRecentWonDate
			g.FirstWonDate = a.FirstWonDate
		}
		out[i] = g.WithPercentages()
	}
	return out
}

// ValidUsername reports whether name is 2 to 20 ASCII letters or digits.
func ValidUsername(name string) bool {
	if len(name) < 2 || len(name) > 20 {
		return false
	}
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
