package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"belekbox/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Success: false, Error: message})
}

// writeFailure reports a rejected request with 200 OK and success=false.
func writeFailure(w http.ResponseWriter, message string, logger zerolog.Logger) {
	logger.Warn().Str("error", message).Msg("request rejected")
	writeJSON(w, http.StatusOK, model.ErrorResponse{Success: false, Error: message})
}

// writeDomainError maps err onto a status code. Domain errors keep their
// message, anything else is reported as fallback.
func writeDomainError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg(fallback)
		writeError(w, http.StatusInternalServerError, fallback, logger)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidForm):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrAuth):
		status = http.StatusUnauthorized
	}

	writeError(w, status, domainErr.Message, logger)
}
