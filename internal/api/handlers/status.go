package handlers

import (
	"net/http"
	"time"

	"tokenpulse/internal/scheduler"
	"tokenpulse/pkg/database"
	"tokenpulse/pkg/logger"
)

// StatusHandler serves the operational status surface: scheduler job
// stats and database pool health.
type StatusHandler struct {
	scheduler *scheduler.Scheduler // nil when running API-only
	db        *database.DB
	startedAt time.Time
	logger    *logger.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(sched *scheduler.Scheduler, db *database.DB, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		scheduler: sched,
		db:        db,
		startedAt: time.Now().UTC(),
		logger:    log,
	}
}

// GetStatus returns process status.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"started_at":     h.startedAt,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}

	if h.scheduler != nil {
		status["jobs"] = h.scheduler.Stats()
	}

	if h.db != nil {
		dbStatus := "ok"
		if err := h.db.Ping(r.Context()); err != nil {
			dbStatus = "unreachable"
		}
		status["database"] = map[string]interface{}{
			"status": dbStatus,
			"pool":   h.db.Stats(),
		}
	}

	respondJSON(w, http.StatusOK, status)
}
