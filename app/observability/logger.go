// Package observability builds the process-wide logger, tracer and metrics registry.
package observability

import (
	"io"
	"log/slog"
	"strings"

	progressmetrics "github.com/Black-And-White-Club/progress-engine/app/observability/metrics/progress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const ServiceName = "progress-engine"

// Observability bundles the collaborators every module receives.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  progressmetrics.ProgressMetrics
}

// Config selects log format and level.
type Config struct {
	Environment string
	LogLevel    string
}

// Init creates the logger, a tracer from the global otel provider and a
// Prometheus registry with the Go and process collectors.
func Init(cfg Config, w io.Writer) (Observability, error) {
	logger := NewLogger(cfg, w)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := progressmetrics.NewPrometheus(registry, "")
	if err != nil {
		return Observability{}, err
	}

	return Observability{
		Logger:   logger,
		Tracer:   otel.Tracer(ServiceName),
		Registry: registry,
		Metrics:  metrics,
	}, nil
}

// NewLogger returns a JSON logger, or a text logger when Environment is "development" or "local".
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Environment) {
	case "development", "local":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", ServiceName))
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
