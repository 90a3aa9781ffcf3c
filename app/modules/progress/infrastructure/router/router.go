package progressrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/progress-engine/app/eventbus"
	progressevents "github.com/Black-And-White-Club/progress-engine/app/events/progress"
	progresshandlers "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/handlers"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/Black-And-White-Club/progress-engine/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// ProgressRouter handles Watermill handler registration for progress events.
type ProgressRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	publisher      eventbus.EventBus
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewProgressRouter creates a new ProgressRouter.
func NewProgressRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *ProgressRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &ProgressRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure adds middleware and registers the progress handlers.
func (r *ProgressRouter) Configure(_ context.Context, handlers progresshandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
	)

	r.registerHandlers(handlers)
	return nil
}

func (r *ProgressRouter) registerHandlers(handlers progresshandlers.Handlers) {
	r.logger.Info("Registering progress module handlers",
		attr.String("mastery_subject", progressevents.MasteryAchievedV1),
		attr.String("flag_changed_subject", progressevents.AchievementFlagChangedV1),
	)

	registerHandler(r, progressevents.MasteryAchievedV1, handlers.HandleMasteryAchieved)
	registerHandler(r, progressevents.AchievementFlagChangedV1, handlers.HandleAchievementFlagChanged)
}

// registerHandler is a generic function for type-safe Watermill handler registration.
// Messages a handler returns are published to the topic in their metadata.
func registerHandler[T any](
	r *ProgressRouter,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "progress." + topic
	wrapped := handlerwrapper.WrapTransformingTyped(handlerName, r.logger, r.tracer, handler)

	r.Router.AddHandler(
		handlerName,
		topic,
		r.subscriber,
		"",
		nil,
		func(msg *message.Message) ([]*message.Message, error) {
			messages, err := wrapped(msg)
			if err != nil {
				r.logger.ErrorContext(msg.Context(), "Error processing message",
					attr.String("message_id", msg.UUID),
					attr.CorrelationIDFromMsg(msg),
					attr.Error(err),
				)
				return nil, err
			}
			for _, m := range messages {
				publishTopic := m.Metadata.Get(handlerwrapper.TopicMetadataKey)
				if publishTopic == "" {
					r.logger.Error("router failed to resolve publish topic - MESSAGE DROPPED",
						attr.String("handler", handlerName),
						attr.String("msg_uuid", m.UUID),
					)
					continue
				}
				if err := r.publisher.Publish(publishTopic, m); err != nil {
					return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
				}
			}
			return nil, nil
		},
	)
}

func (r *ProgressRouter) Close() error {
	return r.Router.Close()
}
