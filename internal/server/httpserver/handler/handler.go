package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/rosso/internal/storage/memory"
	"github.com/yndnr/rosso/internal/telemetry/logger"
)

// StatsSource reports keyspace statistics.
type StatsSource interface {
	Stats() memory.Stats
}

// ConnCounter reports the number of open client connections.
type ConnCounter interface {
	ConnCount() int
}

// Handler serves the admin endpoints.
type Handler struct {
	stats  StatsSource
	conns  ConnCounter
	logger *slog.Logger
}

// New creates a Handler. conns may be nil when the Redis server is not running.
func New(stats StatsSource, conns ConnCounter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		stats:  stats,
		conns:  conns,
		logger: log,
	}
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}
