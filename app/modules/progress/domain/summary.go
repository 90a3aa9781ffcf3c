package progressdomain

import "time"

// SummaryCheck is the outcome of recomputing a summary from raw unlocks.
type SummaryCheck struct {
	Stored     *PlayerGameSummary `json:"stored,omitempty"`
	Recomputed PlayerGameSummary  `json:"recomputed"`
	Agrees     bool               `json:"agrees"`
}

// SummarizePlayerGame rebuilds a summary from the official-core achievements of a game
// and the player's unlock events. Unlocks of achievements outside the list are ignored.
func SummarizePlayerGame(userID UserID, gameID GameID, achievements []Achievement, unlocks []UnlockEvent) PlayerGameSummary {
	summary := PlayerGameSummary{UserID: userID, GameID: gameID}

	byID := make(map[AchievementID]Achievement, len(achievements))
	counts := make(map[AchievementType]int)
	for _, a := range achievements {
		if a.Flags != AchievementFlagOfficialCore {
			continue
		}
		byID[a.ID] = a
		counts[a.Type]++
	}

	var tier []TierUnlock
	for _, u := range unlocks {
		a, ok := byID[u.AchievementID]
		if !ok || u.UserID != userID {
			continue
		}
		if u.UnlockedAt != nil {
			summary.AchievementsUnlocked++
			summary.Points += a.Points
			summary.FirstUnlockAt = earliest(summary.FirstUnlockAt, u.UnlockedAt)
			summary.LastUnlockAt = latest(summary.LastUnlockAt, u.UnlockedAt)
		}
		if u.UnlockedHardcoreAt != nil {
			summary.AchievementsUnlockedHardcore++
			summary.PointsHardcore += a.Points
			summary.FirstUnlockHardcoreAt = earliest(summary.FirstUnlockHardcoreAt, u.UnlockedHardcoreAt)
			summary.LastUnlockHardcoreAt = latest(summary.LastUnlockHardcoreAt, u.UnlockedHardcoreAt)
		}
		if a.Type == AchievementTypeProgression || a.Type == AchievementTypeWinCondition {
			tier = append(tier, TierUnlock{
				AchievementID:      a.ID,
				Type:               a.Type,
				UnlockedAt:         u.UnlockedAt,
				UnlockedHardcoreAt: u.UnlockedHardcoreAt,
			})
		}
	}

	status := EvaluateCompletion(ClassifyCounts(counts), tier)
	summary.BeatenSoftcore = status.IsBeatenSoftcore
	summary.BeatenHardcore = status.IsBeatenHardcore
	return summary
}

// SummariesAgree compares the fields both projections maintain.
func SummariesAgree(a, b PlayerGameSummary) bool {
	return a.UserID == b.UserID &&
		a.GameID == b.GameID &&
		a.AchievementsUnlocked == b.AchievementsUnlocked &&
		a.AchievementsUnlockedHardcore == b.AchievementsUnlockedHardcore &&
		a.Points == b.Points &&
		a.PointsHardcore == b.PointsHardcore &&
		sameInstant(a.FirstUnlockAt, b.FirstUnlockAt) &&
		sameInstant(a.LastUnlockAt, b.LastUnlockAt) &&
		sameInstant(a.FirstUnlockHardcoreAt, b.FirstUnlockHardcoreAt) &&
		sameInstant(a.LastUnlockHardcoreAt, b.LastUnlockHardcoreAt) &&
		a.BeatenSoftcore == b.BeatenSoftcore &&
		a.BeatenHardcore == b.BeatenHardcore
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func earliest(current, candidate *time.Time) *time.Time {
	if current == nil || candidate.Before(*current) {
		return candidate
	}
	return current
}

func latest(current, candidate *time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		return candidate
	}
	return current
}
