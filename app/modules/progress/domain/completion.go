package progressdomain

// SetClassification holds the official-core beat-tier achievement counts of a game.
type SetClassification struct {
	Progression  int `json:"progression"`
	WinCondition int `json:"win_condition"`
}

// ClassifyCounts builds a SetClassification from per-type counts.
// Types other than progression and win condition are ignored.
func ClassifyCounts(counts map[AchievementType]int) SetClassification {
	return SetClassification{
		Progression:  counts[AchievementTypeProgression],
		WinCondition: counts[AchievementTypeWinCondition],
	}
}

// IsBeatable reports whether the set has any beat-tier achievement.
func (c SetClassification) IsBeatable() bool {
	return c.Progression > 0 || c.WinCondition > 0
}

// NeededWinConditions is the number of win-condition unlocks required to beat the game.
// Any single win condition suffices.
func (c SetClassification) NeededWinConditions() int {
	if c.WinCondition >= 1 {
		return 1
	}
	return 0
}

// BeatenStatus is the outcome of a beaten check.
type BeatenStatus struct {
	IsBeatenSoftcore bool `json:"is_beaten_softcore"`
	IsBeatenHardcore bool `json:"is_beaten_hardcore"`
	IsBeatable       bool `json:"is_beatable"`
}

// NotBeatable is returned for games without beat-tier achievements.
var NotBeatable = BeatenStatus{}

type tierCounts struct {
	progressionSoftcore  int
	progressionHardcore  int
	winConditionSoftcore int
	winConditionHardcore int
}

func countTierUnlocks(unlocks []TierUnlock) tierCounts {
	var c tierCounts
	for _, u := range unlocks {
		switch u.Type {
		case AchievementTypeProgression:
			if u.UnlockedAt != nil {
				c.progressionSoftcore++
			}
			if u.UnlockedHardcoreAt != nil {
				c.progressionHardcore++
			}
		case AchievementTypeWinCondition:
			if u.UnlockedAt != nil {
				c.winConditionSoftcore++
			}
			if u.UnlockedHardcoreAt != nil {
				c.winConditionHardcore++
			}
		}
	}
	return c
}

// EvaluateCompletion decides the beaten status of a classified set given the player's
// beat-tier unlocks. Unlocks must already be restricted to the game's official-core
// progression and win-condition achievements.
func EvaluateCompletion(set SetClassification, unlocks []TierUnlock) BeatenStatus {
	if !set.IsBeatable() {
		return NotBeatable
	}

	c := countTierUnlocks(unlocks)
	needed := set.NeededWinConditions()

	return BeatenStatus{
		IsBeatenSoftcore: c.progressionSoftcore == set.Progression && c.winConditionSoftcore >= needed,
		IsBeatenHardcore: c.progressionHardcore == set.Progression && c.winConditionHardcore >= needed,
		IsBeatable:       true,
	}
}
