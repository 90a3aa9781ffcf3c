package progresshandlers

import (
	"context"
	"log/slog"

	progressevents "github.com/Black-And-White-Club/progress-engine/app/events/progress"
	progressservice "github.com/Black-And-White-Club/progress-engine/app/modules/progress/application"
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	progressmetrics "github.com/Black-And-White-Club/progress-engine/app/observability/metrics/progress"
	"github.com/Black-And-White-Club/progress-engine/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// ProgressHandlers implements the Handlers interface.
type ProgressHandlers struct {
	service progressservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics progressmetrics.ProgressMetrics
}

// NewProgressHandlers creates a new ProgressHandlers instance.
func NewProgressHandlers(
	service progressservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics progressmetrics.ProgressMetrics,
) Handlers {
	return &ProgressHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}

func (h *ProgressHandlers) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if h.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return h.tracer.Start(ctx, name)
}

// HandleMasteryAchieved handles mastery events. Softcore masteries never reach the
// hardcore leaderboards, so only hardcore ones purge.
func (h *ProgressHandlers) HandleMasteryAchieved(ctx context.Context, payload *progressevents.MasteryAchievedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.startSpan(ctx, "ProgressHandlers.HandleMasteryAchieved")
	defer span.End()

	if h.metrics != nil {
		h.metrics.RecordInvalidationEvent(ctx, progressevents.MasteryAchievedV1)
	}

	if !payload.Hardcore || payload.GameID <= 0 {
		h.logger.DebugContext(ctx, "Mastery does not affect top achievers",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("game_id", payload.GameID),
			attr.Bool("hardcore", payload.Hardcore),
		)
		return nil, nil
	}

	return h.expire(ctx, payload.GameID, "mastery")
}

// HandleAchievementFlagChanged handles promotions and demotions of achievements. Any
// move into or out of the official set changes its size, and with it who is a master.
func (h *ProgressHandlers) HandleAchievementFlagChanged(ctx context.Context, payload *progressevents.AchievementFlagChangedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.startSpan(ctx, "ProgressHandlers.HandleAchievementFlagChanged")
	defer span.End()

	if h.metrics != nil {
		h.metrics.RecordInvalidationEvent(ctx, progressevents.AchievementFlagChangedV1)
	}

	official := int(progressdomain.AchievementFlagOfficialCore)
	touchesOfficial := payload.OldFlags == official || payload.NewFlags == official
	if payload.OldFlags == payload.NewFlags || !touchesOfficial || payload.GameID <= 0 {
		return nil, nil
	}

	return h.expire(ctx, payload.GameID, "flag_changed")
}

func (h *ProgressHandlers) expire(ctx context.Context, gameID int64, reason string) ([]handlerwrapper.Result, error) {
	if err := h.service.ExpireTopAchievers(ctx, progressdomain.GameID(gameID)); err != nil {
		h.logger.ErrorContext(ctx, "Failed to expire top achievers",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("game_id", gameID),
			attr.Error(err),
		)
		return nil, err
	}

	h.logger.InfoContext(ctx, "Top achievers expired",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("game_id", gameID),
		attr.String("reason", reason),
	)

	return []handlerwrapper.Result{{
		Topic: progressevents.TopAchieversExpiredV1,
		Payload: &progressevents.TopAchieversExpiredPayloadV1{
			GameID: gameID,
			Reason: reason,
		},
	}}, nil
}
