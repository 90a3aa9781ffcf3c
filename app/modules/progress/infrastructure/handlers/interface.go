package progresshandlers

import (
	"context"

	progressevents "github.com/Black-And-White-Club/progress-engine/app/events/progress"
	"github.com/Black-And-White-Club/progress-engine/app/shared/handlerwrapper"
)

// Handlers defines the interface for progress event handlers.
type Handlers interface {
	// HandleMasteryAchieved purges the game's top achievers after a hardcore mastery.
	HandleMasteryAchieved(ctx context.Context, payload *progressevents.MasteryAchievedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleAchievementFlagChanged purges the game's top achievers when the official set changed.
	HandleAchievementFlagChanged(ctx context.Context, payload *progressevents.AchievementFlagChangedPayloadV1) ([]handlerwrapper.Result, error)
}
