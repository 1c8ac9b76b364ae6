package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message describing which precondition failed
	// default: insufficient funds
	Error string `json:"error"`
}

// statusForError maps ledger errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidTransactionType),
		errors.Is(err, models.ErrMissingAmount),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidTransactionID),
		errors.Is(err, models.ErrMissingName),
		errors.Is(err, models.ErrMissingUserID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrDuplicateAccount),
		errors.Is(err, models.ErrIdempotencyMismatch),
		errors.Is(err, models.ErrStoreConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Internal errors are not exposed.
func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Log.Errorw("internal server error", "error", err)
		msg = "Internal server error"
	case http.StatusServiceUnavailable:
		logger.Log.Errorw("store unavailable", "error", err)
		msg = models.ErrStoreUnavailable.Error()
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
