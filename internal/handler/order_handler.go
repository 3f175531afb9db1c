package handler

import (
	"net/http"

	"hirdavat/internal/model"
	"hirdavat/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderHandler handles the token-authenticated order requests.
type OrderHandler struct {
	tracking     service.TrackingService
	cancellation service.CancellationService
	errors       errorWriter
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(tracking service.TrackingService, cancellation service.CancellationService, debug bool, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		tracking:     tracking,
		cancellation: cancellation,
		errors:       errorWriter{debug: debug, logger: logger.With().Str("handler", "order").Logger()},
	}
}

// Track handles GET /api/orders/track/{token} requests.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	view, err := h.tracking.GetByToken(r.Context(), token)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, view)
}

// Cancel handles POST /api/orders/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req model.CancelRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.errors.badRequest(w, r, err)
		return
	}

	resp, err := h.cancellation.Cancel(r.Context(), &req)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
