package progressservice

import (
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
)

func toPlayer(u *progressdb.User) progressdomain.Player {
	return progressdomain.Player{
		ID:        progressdomain.UserID(u.ID),
		Username:  u.Username,
		Untracked: u.Untracked,
	}
}

func toTypeCounts(rows []progressdb.TypeCountRow) map[progressdomain.AchievementType]int {
	counts := make(map[progressdomain.AchievementType]int, len(rows))
	for _, r := range rows {
		counts[progressdomain.AchievementType(r.Type)] += r.Count
	}
	return counts
}

func toTierUnlocks(rows []progressdb.TierUnlockRow) []progressdomain.TierUnlock {
	out := make([]progressdomain.TierUnlock, len(rows))
	for i, r := range rows {
		out[i] = progressdomain.TierUnlock{
			AchievementID:      progressdomain.AchievementID(r.AchievementID),
			Type:               progressdomain.AchievementType(r.Type),
			UnlockedAt:         r.UnlockedAt,
			UnlockedHardcoreAt: r.UnlockedHardcoreAt,
		}
	}
	return out
}

func toGame(g progressdb.Game) progressdomain.Game {
	game := progressdomain.Game{
		ID:                    progressdomain.GameID(g.ID),
		Title:                 g.Title,
		ConsoleID:             progressdomain.SystemID(g.SystemID),
		ForumTopicID:          g.ForumTopicID,
		Flags:                 g.Flags,
		ImageIcon:             g.ImageIcon,
		ImageTitle:            g.ImageTitle,
		ImageIngame:           g.ImageIngame,
		ImageBoxArt:           g.ImageBoxArt,
		Publisher:             g.Publisher,
		Developer:             g.Developer,
		Genre:                 g.Genre,
		Released:              g.Released,
		IsFinal:               g.IsFinal,
		AchievementsPublished: g.AchievementsPublished,
		PointsTotal:           g.PointsTotal,
	}
	if g.System != nil {
		game.ConsoleName = g.System.Name
	}
	return game
}

func toSummary(pg progressdb.PlayerGame) progressdomain.PlayerGameSummary {
	return progressdomain.PlayerGameSummary{
		UserID:                       progressdomain.UserID(pg.UserID),
		GameID:                       progressdomain.GameID(pg.GameID),
		AchievementsUnlocked:         pg.AchievementsUnlocked,
		AchievementsUnlockedHardcore: pg.AchievementsUnlockedHardcore,
		Points:                       pg.Points,
		PointsHardcore:               pg.PointsHardcore,
		FirstUnlockAt:                pg.FirstUnlockAt,
		LastUnlockAt:                 pg.LastUnlockAt,
		FirstUnlockHardcoreAt:        pg.FirstUnlockHardcoreAt,
		LastUnlockHardcoreAt:         pg.LastUnlockHardcoreAt,
		BeatenSoftcore:               pg.BeatenAt != nil,
		BeatenHardcore:               pg.BeatenHardcoreAt != nil,
	}
}

func toScores(rows []progressdb.GameScoreRow) []progressdomain.PlayerGameScore {
	out := make([]progressdomain.PlayerGameScore, len(rows))
	for i, r := range rows {
		out[i] = progressdomain.PlayerGameScore{
			UserID:               progressdomain.UserID(r.UserID),
			Username:             r.Username,
			Untracked:            r.Untracked,
			Points:               r.Points,
			LastUnlockAt:         r.LastUnlockAt,
			LastUnlockHardcoreAt: r.LastUnlockHardcoreAt,
		}
	}
	return out
}

func toHardcoreScores(rows []progressdb.HardcoreLeaderRow) []progressdomain.HardcoreScore {
	out := make([]progressdomain.HardcoreScore, len(rows))
	for i, r := range rows {
		out[i] = progressdomain.HardcoreScore{
			UserID:          progressdomain.UserID(r.UserID),
			Username:        r.Username,
			NumAchievements: r.NumAchievements,
			TotalScore:      r.TotalScore,
			LastAward:       r.LastAward,
		}
	}
	return out
}

func toFeedRows(rows []progressdb.FeedRow) []progressdomain.FeedRow {
	out := make([]progressdomain.FeedRow, len(rows))
	for i, r := range rows {
		out[i] = progressdomain.FeedRow{
			Achievement: progressdomain.Achievement{
				ID:          progressdomain.AchievementID(r.AchievementID),
				GameID:      progressdomain.GameID(r.GameID),
				Title:       r.Title,
				Description: r.Description,
				Points:      r.Points,
				Flags:       progressdomain.AchievementFlagOfficialCore,
				BadgeName:   r.BadgeName,
			},
			GameTitle:          r.GameTitle,
			UnlockedAt:         r.UnlockedAt,
			UnlockedHardcoreAt: r.UnlockedHardcoreAt,
		}
	}
	return out
}

func toCompletedGame(r progressdb.CompletedGameRow) progressdomain.CompletedGame {
	return progressdomain.CompletedGame{
		GameID:            progressdomain.GameID(r.GameID),
		ConsoleID:         progressdomain.SystemID(r.ConsoleID),
		ConsoleName:       r.ConsoleName,
		ImageIcon:         r.ImageIcon,
		Title:             r.Title,
		MaxPossible:       r.MaxPossible,
		NumAwarded:        r.NumAwarded,
		NumAwardedHC:      r.NumAwardedHC,
		FirstWonDate:      progressdomain.CompactTime(r.FirstWonDate),
		MostRecentWonDate: progressdomain.CompactTime(r.MostRecentWonDate),
	}.WithPercentages()
}

func toLightGame(r progressdb.LightGameRow) progressdomain.CompletedGame {
	return progressdomain.CompletedGame{
		GameID:      progressdomain.GameID(r.GameID),
		ConsoleID:   progressdomain.SystemID(r.ConsoleID),
		ConsoleName: r.ConsoleName,
		ImageIcon:   r.ImageIcon,
		Title:       r.Title,
	}
}

func toAchievement(a progressdb.Achievement) progressdomain.Achievement {
	out := progressdomain.Achievement{
		ID:          progressdomain.AchievementID(a.ID),
		GameID:      progressdomain.GameID(a.GameID),
		Title:       a.Title,
		Description: a.Description,
		Points:      a.Points,
		Flags:       progressdomain.AchievementFlag(a.Flags),
		BadgeName:   a.BadgeName,
	}
	if a.Type != nil {
		out.Type = progressdomain.AchievementType(*a.Type)
	}
	return out
}

func toUnlockEvent(pa progressdb.PlayerAchievement) progressdomain.UnlockEvent {
	return progressdomain.UnlockEvent{
		UserID:             progressdomain.UserID(pa.UserID),
		AchievementID:      progressdomain.AchievementID(pa.AchievementID),
		UnlockedAt:         pa.UnlockedAt,
		UnlockedHardcoreAt: pa.UnlockedHardcoreAt,
	}
}

func toConsoleProgress(r progressdb.ConsoleProgressRow) progressdomain.ConsoleGameProgress {
	return progressdomain.ConsoleGameProgress{
		GameID:   progressdomain.GameID(r.GameID),
		NumAch:   r.NumAch,
		Earned:   r.Earned,
		HCEarned: r.HCEarned,
	}
}

func toPlayedGame(r progressdb.PlayedGameRow) progressdomain.PlayedGame {
	return progressdomain.PlayedGame{
		GameID:          progressdomain.GameID(r.GameID),
		Title:           r.Title,
		ConsoleName:     r.ConsoleName,
		NumAchievements: r.NumAchievements,
		NumAchieved:     r.NumAchieved,
	}
}

// uniqueGameIDs drops duplicates, keeping first-seen order.
func uniqueGameIDs(ids []progressdomain.GameID) []progressdomain.GameID {
	seen := make(map[progressdomain.GameID]struct{}, len(ids))
	out := make([]progressdomain.GameID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toInt64s(ids []progressdomain.GameID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func toRecentPlayers(rows []progressdb.RecentPlayerRow) []progressdomain.RecentPlayer {
	out := make([]progressdomain.RecentPlayer, len(rows))
	for i, r := range rows {
		out[i] = progressdomain.RecentPlayer{
			UserID:   progressdomain.UserID(r.UserID),
			Username: r.Username,
			Date:     r.Date,
			Activity: r.Activity,
		}
	}
	return out
}
