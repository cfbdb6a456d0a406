package handler

import (
	"log/slog"
	"net/http"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/infrastructure/redis"
	"github.com/Monchel-Emmy/SmartRent360-backend/pkg/database"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	pool   *database.ConnectionPool
	cache  *redis.Client
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(pool *database.ConnectionPool, cache *redis.Client, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		pool:   pool,
		cache:  cache,
		logger: logger,
	}
}

// Health handles GET /health. Liveness only: the process is up.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, "ok", map[string]string{"status": "healthy"})
}

// Ready handles GET /ready. Readiness requires a reachable database; the
// cache is reported but never fails the probe, stats just run uncached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}

	if err := h.pool.Health(r.Context()); err != nil {
		h.logger.Error("readiness check failed", slog.String("error", err.Error()))
		checks["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, apiResponse{
			Status:  "error",
			Message: "Service not ready",
			Data:    checks,
		})
		return
	}

	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(r.Context()); err != nil {
			h.logger.Warn("cache unreachable", slog.String("error", err.Error()))
			checks["cache"] = "unreachable"
		}
	}

	sendSuccess(w, http.StatusOK, "ready", checks)
}
