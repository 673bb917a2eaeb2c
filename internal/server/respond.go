package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"filedepot/internal/depot"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON writes a JSON response with the given status code.
// It marshals first, so an encoding failure never produces a partial
// response after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes an error response as {"error": ..., "details": ...}.
func RespondError(w http.ResponseWriter, status int, message, details string) {
	payload, err := json.Marshal(ErrorBody{Error: message, Details: details})
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// ParseJSON decodes JSON from the request body into the given destination.
// The body is capped at 10MB.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// handleError maps a service error onto an HTTP status and writes the body.
func handleError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, depot.ErrValidation):
		RespondError(w, http.StatusBadRequest, message, err.Error())
	case errors.Is(err, depot.ErrNotFound):
		RespondError(w, http.StatusNotFound, message, err.Error())
	case errors.Is(err, depot.ErrConflict):
		RespondError(w, http.StatusConflict, message, err.Error())
	default:
		RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}
