package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-fanout-api/internal/application/notification"
	"github.com/go-fanout-api/internal/domain"
)

// NotificationHandler handles the reader-side notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns a page of the user's notifications, newest first, optionally
// filtered by ?status= and ?type=, paged with ?limit= and ?skip=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	skip, _ := strconv.Atoi(q.Get("skip"))

	notifications, err := h.svc.List(r.Context(), userID,
		domain.NotificationStatus(q.Get("status")),
		domain.EventType(q.Get("type")),
		limit, skip)
	if err != nil {
		httpError(w, err)
		return
	}

	now := time.Now()
	items := make([]NotificationItem, len(notifications))
	for i, n := range notifications {
		items[i] = NotificationItem{Notification: n, Age: n.Age(now)}
	}
	writeJSON(w, http.StatusOK, NotificationListEnvelope{
		Limit: limit,
		Skip:  skip,
		Data:  items,
	})
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.UnreadCount(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.MarkAllRead(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: count})
}

// Dismiss soft-deletes a notification. The record stays readable until the
// retention sweep or the storage TTL removes it.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Dismiss(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
