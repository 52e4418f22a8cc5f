package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// HealthHandler answers the liveness probe
type HealthHandler struct {
	db      HealthChecker
	version string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health handles GET /health. A failed database ping is a 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
			"version":  h.version,
		})
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
		"version":  h.version,
	})
}

// NotFound answers unknown routes with the regular error body
func NotFound(w http.ResponseWriter, _ *http.Request) {
	utils.NotFound(w, constants.MsgResourceNotFound)
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	utils.MethodNotAllowed(w)
}
