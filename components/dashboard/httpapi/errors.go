package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case dashboard.IsValidation(err), errors.Is(err, dashboard.ErrNoChanges):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrUnauthorized), errors.Is(err, dashboard.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// Message returns the client-facing text for err.
func Message(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrNotFound):
		return "Item not found"
	case errors.Is(err, dashboard.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, dashboard.ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, dashboard.ErrNoChanges):
		return "No valid fields to update"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), ErrorBody{Error: Message(err)})
}
