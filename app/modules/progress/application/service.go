package progressservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	progressmetrics "github.com/Black-And-White-Club/progress-engine/app/observability/metrics/progress"
	"github.com/Black-And-White-Club/progress-engine/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ProgressService"

// ErrPlayerNotFound is returned when a username does not resolve to an account.
var ErrPlayerNotFound = errors.New("player not found")

// Options tunes the engine.
type Options struct {
	// TopAchieversTTL is how long a full top achievers result stays cached.
	TopAchieversTTL time.Duration
	// EarlyExitScan stops the leaders scan once nothing more can change.
	EarlyExitScan bool
	// MaxFanOut bounds the concurrent queries of a progress request.
	MaxFanOut int
}

const (
	defaultTopAchieversTTL = 30 * 24 * time.Hour
	defaultMaxFanOut       = 8
)

func (o Options) withDefaults() Options {
	if o.TopAchieversTTL <= 0 {
		o.TopAchieversTTL = defaultTopAchieversTTL
	}
	if o.MaxFanOut <= 0 {
		o.MaxFanOut = defaultMaxFanOut
	}
	return o
}

// ProgressService implements the Service interface.
type ProgressService struct {
	repo    progressdb.Repository
	cache   progresscache.Store
	logger  *slog.Logger
	metrics progressmetrics.ProgressMetrics
	tracer  trace.Tracer
	db      *bun.DB
	opts    Options
	now     func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	repo progressdb.Repository,
	cache progresscache.Store,
	logger *slog.Logger,
	metrics progressmetrics.ProgressMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *ProgressService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressService{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		opts:    opts.withDefaults(),
		now:     time.Now,
	}
}

var _ Service = (*ProgressService)(nil)

// pool returns the shared connection pool, or nil so repositories use their own.
func (s *ProgressService) pool() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}

func gameIdentifier(gameID int64) string {
	return "game:" + strconv.FormatInt(gameID, 10)
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ProgressService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ProgressService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// unwrap turns an operation outcome into the public (value, error) pair.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}
