package api

import (
	"encoding/json"
	"net/http"

	"github.com/chris/referral-investments/pkg/models"
)

// Kinds that only the HTTP layer produces.
const (
	KindUnauthenticated = "UNAUTHENTICATED"
	KindRateLimited     = "RATE_LIMITED"
	KindBadRequest      = "BAD_REQUEST"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind string) int {
	switch kind {
	case models.KindValidation, models.KindInsufficient:
		return http.StatusUnprocessableEntity
	case models.KindNotAuthorized:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes a successful envelope around data.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// WriteError writes a failed envelope with an explicit kind.
func WriteError(w http.ResponseWriter, kind, message string) {
	write(w, StatusFor(kind), Envelope{Error: kind, Message: message})
}

// WriteDomainError classifies err and writes it. Internal errors are not
// echoed back to the caller.
func WriteDomainError(w http.ResponseWriter, err error) {
	kind := models.ErrorKind(err)
	message := err.Error()
	if kind == models.KindInternal {
		message = "internal error"
	}
	WriteError(w, kind, message)
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}
