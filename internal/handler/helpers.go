package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smokemoha/mortgage-calc-api/internal/domain"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to the HTTP response contract:
// validation and calculation failures are client errors, anything else is
// reported as a generic 500 so internals never leak.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validationErr *domain.ErrValidation
	var calculationErr *domain.ErrCalculation

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("validation failed", zap.Strings("details", validationErr.Details))
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: validationErr.Details,
		})
	case errors.As(err, &calculationErr):
		logger.Error("calculation error", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Calculation error occurred")
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
