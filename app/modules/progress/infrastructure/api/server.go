package progressapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	progressservice "github.com/Black-And-White-Club/progress-engine/app/modules/progress/application"
	"github.com/Black-And-White-Club/progress-engine/app/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Config holds the listener and rate limit settings.
type Config struct {
	Address        string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the HTTP routes of the progress engine. A nil registry omits /metrics.
func NewRouter(service progressservice.Service, logger *slog.Logger, registry *prometheus.Registry, cfg Config) http.Handler {
	h := NewProgressHandler(service, logger)
	limiter := NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(CorrelationMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		success(w, map[string]string{"status": "ok"})
	})
	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter))

		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/players/{username}/beaten", h.GetBeaten)
			r.Get("/players/{username}/rank", h.GetRank)
			r.Get("/top-achievers", h.GetTopAchievers)
			r.Delete("/top-achievers", h.ExpireTopAchievers)
			r.Get("/recent-players", h.GetRecentPlayers)
		})

		r.Route("/players/{username}", func(r chi.Router) {
			r.Get("/progress", h.GetProgress)
			r.Get("/completed-games", h.GetCompletedGames)
			r.Get("/completed-games.xlsx", h.ExportCompletedGames)
			r.Get("/completed-games/cache-value", h.GetCompletedGamesCacheValue)
			r.Get("/games", h.GetPlayedGames)
			r.Get("/games/{gameID}/unlocks", h.GetUnlocks)
			r.Get("/games/{gameID}/summary", h.GetSummary)
			r.Get("/consoles/{consoleID}/progress", h.GetConsoleProgress)
		})
	})

	return r
}

// Server is the HTTP listener of the API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wraps handler in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", attr.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
