package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness including database reachability.
type HealthHandler struct {
	db     Pinger
	logger zerolog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Check handles GET /health requests.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "unreachable"})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "ok"})
}
