package handlers

import (
	"net/http"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
)

// SignalHandler serves the emitted-signal query surface.
type SignalHandler struct {
	store  contracts.SignalStore
	cfg    config.EmissionConfig
	logger *logger.Logger
}

// NewSignalHandler creates a signal handler.
func NewSignalHandler(store contracts.SignalStore, cfg config.EmissionConfig, log *logger.Logger) *SignalHandler {
	return &SignalHandler{
		store:  store,
		cfg:    cfg,
		logger: log,
	}
}

// GetRecent returns the most recently emitted signals.
// GET /api/signals/recent?limit=20
func (h *SignalHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, h.cfg.RecentLimit, 200)

	signals, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent signals")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve signals")
		return
	}
	if signals == nil {
		signals = []contracts.EmittedSignal{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(signals),
		"signals": signals,
	})
}
