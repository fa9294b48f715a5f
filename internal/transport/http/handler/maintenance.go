package handler

import (
	"context"
	"net/http"
)

// Sweeper is one maintenance routine (recovery or retention) runnable on demand.
type Sweeper interface {
	Run(ctx context.Context) (int, error)
}

// MaintenanceHandler exposes the recovery and retention sweeps for operators.
type MaintenanceHandler struct {
	recovery  Sweeper
	retention Sweeper
}

func NewMaintenanceHandler(recovery, retention Sweeper) *MaintenanceHandler {
	return &MaintenanceHandler{recovery: recovery, retention: retention}
}

// RunRecovery resubmits unprocessed events for fan-out and reports how many.
func (h *MaintenanceHandler) RunRecovery(w http.ResponseWriter, r *http.Request) {
	count, err := h.recovery.Run(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: count})
}

// RunRetention purges aged-out read/dismissed notifications and reports how many.
func (h *MaintenanceHandler) RunRetention(w http.ResponseWriter, r *http.Request) {
	count, err := h.retention.Run(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: count})
}
