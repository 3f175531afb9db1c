package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"hirdavat/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errorWriter renders errors in the shared response envelope.
type errorWriter struct {
	debug  bool
	logger zerolog.Logger
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to do.
		return
	}
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(r *http.Request, w http.ResponseWriter, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// statusFor maps an error to its HTTP status and public code and message.
func statusFor(err error) (int, string, string) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, model.ErrCodeValidation, model.ErrValidation.Message
	}

	var derr *model.DomainError
	if !errors.As(err, &derr) {
		return http.StatusInternalServerError, model.ErrCodeInternalError, "An unexpected error occurred"
	}

	switch derr.Kind {
	case model.KindValidation:
		return http.StatusBadRequest, derr.Code, derr.Message
	case model.KindBusiness:
		return http.StatusUnprocessableEntity, derr.Code, derr.Message
	case model.KindPrecondition:
		if derr.Code == model.ErrCodeOrderNotFound {
			return http.StatusNotFound, derr.Code, derr.Message
		}
		return http.StatusConflict, derr.Code, derr.Message
	case model.KindGateway:
		return http.StatusBadGateway, derr.Code, derr.Message
	default:
		return http.StatusInternalServerError, model.ErrCodeInternalError, "An unexpected error occurred"
	}
}

// write sends err as a failure envelope.
func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)

	resp := model.ErrorResponse{
		Status:        model.StatusFailure,
		Code:          code,
		ErrorMessage:  message,
		CorrelationID: chimw.GetReqID(r.Context()),
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	if ew.debug {
		resp.Details = err.Error()
	}

	event := ew.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = ew.logger.Error()
	}
	event.Err(err).
		Str("code", code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request failed")

	writeJSON(w, status, resp)
}

// badRequest reports a body that could not be decoded.
func (ew errorWriter) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	ew.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid request body")

	resp := model.ErrorResponse{
		Status:        model.StatusFailure,
		Code:          model.ErrCodeInvalidJSON,
		ErrorMessage:  "Request body is not valid JSON",
		CorrelationID: chimw.GetReqID(r.Context()),
	}
	if ew.debug {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
