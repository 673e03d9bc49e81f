package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/13x54n/thamelbar/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AccountPayload is the public view of an account. Password hash, provider
// internals and the push target are never serialized.
type AccountPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Points   int64  `json:"points"`
}

func toAccountPayload(a *domain.Account) *AccountPayload {
	if a == nil {
		return nil
	}
	return &AccountPayload{
		ID:       a.AccountID,
		Name:     a.Name,
		Email:    a.Email,
		Verified: a.Verified,
		Points:   a.Points,
	}
}

// AuthEnvelope wraps every successful identity resolution.
type AuthEnvelope struct {
	Token   string          `json:"token"`
	Account *AccountPayload `json:"account"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps domain sentinels to HTTP statuses. Anything else is
// an internal fault: logged server-side, generic message to the caller.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
