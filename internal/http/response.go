package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/repo"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/scoring"
	"github.com/jack3sommer3-blip/enkrateia-sub000/internal/service"
)

const maxBodyBytes = 1 << 20

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}

// writeServiceError maps service and store sentinels onto the error
// envelope. Anything unrecognised is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, scoring.ErrDeprecatedCategory):
		writeError(w, http.StatusBadRequest, "DEPRECATED_CATEGORY", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
	case errors.Is(err, service.ErrUnknownPreset):
		writeError(w, http.StatusNotFound, "UNKNOWN_PRESET", err.Error())
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, repo.ErrDuplicate):
		writeError(w, http.StatusConflict, "CONFLICT", "Already exists")
	default:
		log.Printf("%s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid payload")
		return false
	}
	return true
}
