package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yndnr/rosso/internal/server/httpserver/handler"
	"github.com/yndnr/rosso/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Stats reports keyspace statistics for /v1/info.
	Stats handler.StatsSource

	// Conns reports open Redis connections for /v1/info (optional).
	Conns handler.ConnCounter

	// Metrics is exposed on /metrics (optional).
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the admin router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := handler.New(cfg.Stats, cfg.Conns, log)

	r := chi.NewRouter()
	// Order: RequestID -> Recover -> AccessLog -> Handler
	r.Use(RequestID(log), Recover(), AccessLog())
	r.Use(middleware.NoCache)

	r.Get("/healthz", h.HandleHealth)
	r.Get("/v1/info", h.HandleInfo)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	return r
}
