package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-fanout-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// EventEnvelope wraps event submission and lookup responses.
type EventEnvelope struct {
	Event   *domain.Event `json:"event,omitempty"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NotificationItem is a notification decorated with its relative age.
type NotificationItem struct {
	domain.Notification
	Age string `json:"age"`
}

// NotificationListEnvelope wraps paginated notification list responses.
type NotificationListEnvelope struct {
	Limit int                `json:"limit"`
	Skip  int                `json:"skip"`
	Data  []NotificationItem `json:"data"`
	Error string             `json:"error,omitempty"`
}

// CountEnvelope wraps count-style responses (unread count, sweep results).
type CountEnvelope struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors onto HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
