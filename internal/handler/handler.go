package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonasHenriqueDev/order-mananger-crud/internal/model"

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

// writeError writes a standardised error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto an HTTP response. Domain errors
// carry their own code and a caller-fault status; anything else is a 500 with
// the detail kept out of the body.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, domainStatus(domainErr), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("internal error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "An unexpected error occurred", logger)
}

func domainStatus(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeOrderNotCancellable, model.ErrCodeOrderNotDeletable, model.ErrCodeInvalidTransition:
		return http.StatusConflict
	case model.ErrCodeProductInactive, model.ErrCodeInsufficientStock, model.ErrCodeInvalidQuantity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
