package progress

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/progress-engine/app/eventbus"
	progressservice "github.com/Black-And-White-Club/progress-engine/app/modules/progress/application"
	progressapi "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/api"
	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	progresshandlers "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/handlers"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	progressrouter "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/router"
	"github.com/Black-And-White-Club/progress-engine/app/observability"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/Black-And-White-Club/progress-engine/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// SweepInterval is how often expired cache entries are dropped.
const SweepInterval = 10 * time.Minute

// sweepFunc removes expired cache entries and reports how many were dropped.
type sweepFunc func(ctx context.Context) (int64, error)

// Module represents the progress module.
type Module struct {
	EventBus        eventbus.EventBus
	ProgressService progressservice.Service
	ProgressRouter  *progressrouter.ProgressRouter
	HTTPHandler     http.Handler
	logger          *slog.Logger
	config          *config.Config
	sweep           sweepFunc
	observability   observability.Observability

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	closed     bool
}

// NewProgressModule creates a new instance of the progress module.
func NewProgressModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.Info("progress.NewProgressModule called")

	repo := progressdb.NewRepository(db)

	cache, sweep, err := newCacheStore(cfg.Progress.CacheBackend, repo, db)
	if err != nil {
		return nil, err
	}

	progressService := progressservice.NewProgressService(repo, cache, logger, obs.Metrics, obs.Tracer, db, progressservice.Options{
		TopAchieversTTL: cfg.Progress.TopAchieversTTL,
		EarlyExitScan:   cfg.Progress.EarlyExitScan,
		MaxFanOut:       cfg.Progress.MaxFanOut,
	})

	handlers := progresshandlers.NewProgressHandlers(progressService, logger, obs.Tracer, obs.Metrics)

	progressRouter := progressrouter.NewProgressRouter(logger, router, eventBus, eventBus, obs.Tracer, obs.Registry)
	if err := progressRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure progress router: %w", err)
	}

	httpHandler := progressapi.NewRouter(progressService, logger, obs.Registry, progressapi.Config{
		Address:        cfg.HTTP.Address,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	})

	return &Module{
		EventBus:        eventBus,
		ProgressService: progressService,
		ProgressRouter:  progressRouter,
		HTTPHandler:     httpHandler,
		logger:          logger,
		config:          cfg,
		sweep:           sweep,
		observability:   obs,
	}, nil
}

// newCacheStore selects the cache backend.
func newCacheStore(backend string, repo progressdb.CacheRepository, db bun.IDB) (progresscache.Store, sweepFunc, error) {
	switch backend {
	case "", config.CacheBackendMemory:
		store := progresscache.NewMemoryStore(nil)
		return store, func(context.Context) (int64, error) {
			return int64(store.Sweep()), nil
		}, nil
	case config.CacheBackendPostgres:
		store := progresscache.NewPostgresStore(repo, db, nil)
		return store, store.Sweep, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// Run sweeps expired cache entries until ctx is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("Starting progress module")

	if wg != nil {
		defer wg.Done()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.logger.Info("Progress module already closed")
		return
	}
	m.cancelFunc = cancel
	m.mu.Unlock()

	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Progress module goroutine stopped")
			return
		case <-ticker.C:
			m.runSweep(ctx)
		}
	}
}

func (m *Module) runSweep(ctx context.Context) {
	if m.sweep == nil {
		return
	}
	n, err := m.sweep(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "Cache sweep failed", attr.Error(err))
		return
	}
	if n > 0 {
		m.logger.DebugContext(ctx, "Swept expired cache entries", attr.Int64("count", n))
	}
}

func (m *Module) Close() error {
	m.logger.Info("Stopping progress module")

	m.mu.Lock()
	m.closed = true
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.mu.Unlock()

	m.logger.Info("Progress module stopped")
	return nil
}
