package handlers

import (
	"net/http"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/logger"
	"tokenpulse/pkg/redis"
)

// avgWindowCycles is the window for the rolling average duration.
const avgWindowCycles = 20

// MetricsHandler serves frozen cycle metrics. The latest cycle is read
// through the cache when available, persistence is the fallback.
type MetricsHandler struct {
	store  contracts.MetricsStore
	cache  *redis.Cache // nil skips the cache lookup
	logger *logger.Logger
}

// NewMetricsHandler creates a metrics handler.
func NewMetricsHandler(store contracts.MetricsStore, cache *redis.Cache, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// GetLatest returns the most recent frozen cycle.
// GET /api/metrics/latest
func (h *MetricsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		var cached contracts.CycleMetrics
		if hit, err := h.cache.Get(ctx, redis.LatestMetricsKey(), &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	latest, err := h.store.Latest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest cycle metrics")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve cycle metrics")
		return
	}
	if latest == nil {
		respondError(w, http.StatusNotFound, "No cycles recorded yet")
		return
	}

	respondJSON(w, http.StatusOK, latest)
}

// GetHistory returns the most recent frozen cycles, newest first.
// GET /api/metrics/history?limit=50
func (h *MetricsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 500)

	history, err := h.store.History(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get cycle history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve cycle history")
		return
	}
	if history == nil {
		history = []contracts.CycleMetrics{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(history),
		"cycles": history,
	})
}

// GetSummary returns trend figures over the recent cycle window.
// GET /api/metrics/summary
func (h *MetricsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	avgMs, err := h.store.AvgDurationMs(ctx, avgWindowCycles)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get average cycle duration")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve cycle summary")
		return
	}

	latest, err := h.store.Latest(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest cycle metrics")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve cycle summary")
		return
	}

	summary := map[string]interface{}{
		"avg_duration_ms": avgMs,
		"window_cycles":   avgWindowCycles,
	}
	if latest != nil {
		summary["latest_cycle_id"] = latest.CycleID
		summary["latest_started_at"] = latest.StartedAt
		summary["latest_emitted"] = latest.Emitted
	}

	respondJSON(w, http.StatusOK, summary)
}
