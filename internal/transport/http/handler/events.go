package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-fanout-api/internal/application/event"
	"github.com/go-fanout-api/internal/domain"
)

// EventHandler handles event submission and lookup endpoints.
type EventHandler struct {
	svc event.Service
}

func NewEventHandler(svc event.Service) *EventHandler { return &EventHandler{svc: svc} }

// Submit accepts a fully-formed event and enqueues it for fan-out. The 202
// acknowledges acceptance, not completion; poll Get for the processed flag.
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ev, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, EventEnvelope{Event: ev, Message: "accepted"})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventEnvelope{Event: ev})
}
