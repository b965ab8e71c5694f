package http

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// envelope is the body of every JSON response.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int32       `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeOK(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// writeError renders a service error. Messages of unexpected errors are not
// passed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "route", routeName(r), "error", err)
		var inconsistent *domain.InconsistencyError
		if !errors.As(err, &inconsistent) {
			msg = "internal server error"
		}
	}
	writeFailure(w, status, msg)
}

func statusForError(err error) int {
	switch {
	case domain.IsInconsistency(err):
		return http.StatusInternalServerError
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrRequestNotPending),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrRentalExists),
		errors.Is(err, domain.ErrCarUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return domain.NewValidationError("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return domain.NewValidationError("malformed request body")
	}
	return nil
}
