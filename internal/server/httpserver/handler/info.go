package handler

import (
	"net/http"

	"github.com/yndnr/rosso/internal/infra/buildinfo"
)

// HandleInfo handles GET /v1/info.
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	bi := buildinfo.Get()
	stats := h.stats.Stats()

	resp := InfoResponse{
		Version:       bi.Version,
		Commit:        bi.Commit,
		GoVersion:     bi.GoVersion,
		UptimeSeconds: int64(buildinfo.Uptime().Seconds()),
		Keys:          stats.Keys,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		ExpiredKeys:   stats.ExpiredLazy + stats.ExpiredSwept,
	}
	if h.conns != nil {
		resp.Connections = h.conns.ConnCount()
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
