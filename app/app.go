package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/progress-engine/app/eventbus"
	"github.com/Black-And-White-Club/progress-engine/app/modules/progress"
	progressapi "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/api"
	"github.com/Black-And-White-Club/progress-engine/app/observability"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/Black-And-White-Club/progress-engine/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// App holds the process-wide collaborators.
type App struct {
	Config         *config.Config
	Observability  observability.Observability
	DB             *bun.DB
	EventBus       eventbus.EventBus
	Router         *message.Router
	ProgressModule *progress.Module
	server         *progressapi.Server
	metricsServer  *http.Server
}

// NewApp initializes the application from cfg. Logs go to logOut.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	obs, err := observability.Init(observability.Config{
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	}, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	db, err := openDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established")

	bus, err := newEventBus(ctx, cfg, obs)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := eventbus.InitializeStreams(ctx, bus, eventbus.Streams, logger); err != nil {
		bus.Close()
		db.Close()
		return nil, err
	}

	router, err := newMessageRouter(logger)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, err
	}

	module, err := progress.NewProgressModule(ctx, cfg, obs, db, bus, router)
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize progress module: %w", err)
	}

	a := &App{
		Config:         cfg,
		Observability:  obs,
		DB:             db,
		EventBus:       bus,
		Router:         router,
		ProgressModule: module,
		server:         progressapi.NewServer(cfg.HTTP.Address, module.HTTPHandler, logger),
	}
	if addr := cfg.Observability.MetricsAddress; addr != "" && addr != cfg.HTTP.Address {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{Registry: obs.Registry}))
		a.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}
	return a, nil
}

func openDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newEventBus connects to NATS, or falls back to the in-process bus when no URL is configured.
func newEventBus(ctx context.Context, cfg *config.Config, obs observability.Observability) (eventbus.EventBus, error) {
	if cfg.NATS.URL == "" {
		obs.Logger.Warn("NATS URL not configured, using in-process event bus")
		return eventbus.NewInMemoryEventBus(obs.Logger), nil
	}
	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, obs.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	obs.Logger.Info("Connected to NATS", attr.String("url", cfg.NATS.URL))
	return bus, nil
}

// Close releases every collaborator, reporting the first failure.
func (a *App) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.ProgressModule != nil {
		record(a.ProgressModule.Close())
	}
	if a.Router != nil {
		record(a.Router.Close())
	}
	if a.EventBus != nil {
		record(a.EventBus.Close())
	}
	if a.DB != nil {
		record(a.DB.Close())
	}
	return firstErr
}
