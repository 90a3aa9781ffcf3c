package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
)

// ShutdownTimeout bounds the graceful stop of the HTTP listeners.
const ShutdownTimeout = 15 * time.Second

// Run starts the message router, the module and the HTTP listeners, and blocks until
// ctx is canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)

	var wg sync.WaitGroup
	wg.Add(1)
	go a.ProgressModule.Run(ctx, &wg)

	go func() {
		if err := a.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router stopped: %w", err)
		}
	}()

	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server stopped: %w", err)
		}
	}()

	if a.metricsServer != nil {
		go func() {
			logger.Info("Starting metrics server", attr.String("address", a.metricsServer.Addr))
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server stopped: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case runErr = <-errCh:
		logger.Error("Component failed, shutting down", attr.Error(runErr))
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown failed", attr.Error(err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", attr.Error(err))
		}
	}

	wg.Wait()
	return runErr
}
