package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/posting"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: "success", Message: msg, Data: data})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Status: "error", Message: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, accounts.ErrInvalidAccountNumber),
		errors.Is(err, accounts.ErrInvalidAccountType),
		errors.Is(err, accounts.ErrInvalidAmount),
		errors.Is(err, posting.ErrSameAccount),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, accounts.ErrAccountNotFound),
		errors.Is(err, accounts.ErrUnknownStandardAccount):
		return http.StatusNotFound
	case errors.Is(err, accounts.ErrDuplicateAccount):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	writeErrorMessage(w, status, msg)
}
