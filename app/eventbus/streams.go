package eventbus

import (
	"context"
	"fmt"
	"log/slog"

	progressevents "github.com/Black-And-White-Club/progress-engine/app/events/progress"
)

// StreamDefinition binds a stream to the subject it captures.
type StreamDefinition struct {
	Name    string
	Subject string
}

// Streams lists the streams the application needs at startup.
var Streams = []StreamDefinition{
	{Name: progressevents.StreamName, Subject: progressevents.StreamSubject},
}

// InitializeStreams provisions every stream in defs.
func InitializeStreams(ctx context.Context, bus EventBus, defs []StreamDefinition, logger *slog.Logger) error {
	for _, def := range defs {
		if err := bus.CreateStream(ctx, def.Name, def.Subject); err != nil {
			logger.ErrorContext(ctx, "Failed to create stream", slog.String("stream", def.Name), slog.Any("error", err))
			return fmt.Errorf("failed to create stream %s: %w", def.Name, err)
		}
		logger.InfoContext(ctx, "Stream ready", slog.String("stream", def.Name), slog.String("subject", def.Subject))
	}
	return nil
}
