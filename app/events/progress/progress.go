// Package progressevents defines the topics and payloads exchanged by the progress module.
package progressevents

// Stream carrying every progress topic.
const (
	StreamName    = "progress"
	StreamSubject = "progress.>"
)

const (
	// MasteryAchievedV1 is published when a player unlocks every achievement of a game.
	MasteryAchievedV1 = "progress.mastery.achieved.v1"

	// AchievementFlagChangedV1 is published when an achievement moves between
	// the official and unofficial sets.
	AchievementFlagChangedV1 = "progress.achievement.flag.changed.v1"

	// TopAchieversExpiredV1 is emitted after a game's cached top achievers were purged.
	TopAchieversExpiredV1 = "progress.top_achievers.expired.v1"
)

// MasteryAchievedPayloadV1 is the payload of MasteryAchievedV1.
type MasteryAchievedPayloadV1 struct {
	GameID   int64 `json:"game_id"`
	UserID   int64 `json:"user_id"`
	Hardcore bool  `json:"hardcore"`
}

// AchievementFlagChangedPayloadV1 is the payload of AchievementFlagChangedV1.
type AchievementFlagChangedPayloadV1 struct {
	AchievementID int64 `json:"achievement_id"`
	GameID        int64 `json:"game_id"`
	OldFlags      int   `json:"old_flags"`
	NewFlags      int   `json:"new_flags"`
}

// TopAchieversExpiredPayloadV1 is the payload of TopAchieversExpiredV1.
type TopAchieversExpiredPayloadV1 struct {
	GameID int64  `json:"game_id"`
	Reason string `json:"reason"`
}
