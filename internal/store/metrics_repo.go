package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenpulse/internal/contracts"
)

// MetricsRepository persists frozen cycle metrics, one row per cycle.
// The per-reason rejection breakdown lives in a jsonb column so adding
// a guard never needs a migration.
type MetricsRepository struct {
	db *pgxpool.Pool
}

// NewMetricsRepository creates a MetricsRepository instance.
func NewMetricsRepository(db *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// Insert appends one frozen cycle.
func (r *MetricsRepository) Insert(ctx context.Context, m contracts.CycleMetrics) error {
	rejectionsJSON, err := json.Marshal(m.Rejections)
	if err != nil {
		return fmt.Errorf("marshal rejections: %w", err)
	}

	query := `
		INSERT INTO signals.cycle_metrics (
			cycle_id,
			started_at,
			finished_at,
			duration_ms,
			discovered,
			after_dedup,
			empty_cycle,
			sweep_pages_ok,
			sweep_pages_failed,
			sweep_tokens_added,
			accepted,
			accepted_relaxed,
			suppressed,
			emitted,
			rejections
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.Exec(ctx, query,
		m.CycleID,
		m.StartedAt,
		m.FinishedAt,
		m.DurationMs,
		m.Discovered,
		m.AfterDedup,
		m.EmptyCycle,
		m.SweepPagesOK,
		m.SweepPagesFailed,
		m.SweepTokensAdded,
		m.Accepted,
		m.AcceptedRelaxed,
		m.Suppressed,
		m.Emitted,
		rejectionsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert cycle metrics: %w", err)
	}

	return nil
}

const cycleColumns = `
	cycle_id,
	started_at,
	finished_at,
	duration_ms,
	discovered,
	after_dedup,
	empty_cycle,
	sweep_pages_ok,
	sweep_pages_failed,
	sweep_tokens_added,
	accepted,
	accepted_relaxed,
	suppressed,
	emitted,
	rejections
`

// Latest returns the most recent frozen cycle, or nil when none exist.
func (r *MetricsRepository) Latest(ctx context.Context) (*contracts.CycleMetrics, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM signals.cycle_metrics
		ORDER BY started_at DESC
		LIMIT 1
	`

	m, err := scanCycle(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest cycle: %w", err)
	}
	return m, nil
}

// History returns the most recent frozen cycles, newest first.
func (r *MetricsRepository) History(ctx context.Context, limit int) ([]contracts.CycleMetrics, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM signals.cycle_metrics
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycle history: %w", err)
	}
	defer rows.Close()

	var history []contracts.CycleMetrics
	for rows.Next() {
		m, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		history = append(history, *m)
	}

	return history, rows.Err()
}

// AvgDurationMs returns the rolling average cycle duration over the
// last n cycles.
func (r *MetricsRepository) AvgDurationMs(ctx context.Context, lastN int) (float64, error) {
	query := `
		SELECT COALESCE(AVG(duration_ms), 0)
		FROM (
			SELECT duration_ms
			FROM signals.cycle_metrics
			ORDER BY started_at DESC
			LIMIT $1
		) recent
	`

	var avg float64
	if err := r.db.QueryRow(ctx, query, lastN).Scan(&avg); err != nil {
		return 0, fmt.Errorf("query avg duration: %w", err)
	}
	return avg, nil
}

// scanCycle reads one cycle row.
func scanCycle(row pgx.Row) (*contracts.CycleMetrics, error) {
	var m contracts.CycleMetrics
	var rejectionsJSON []byte

	err := row.Scan(
		&m.CycleID,
		&m.StartedAt,
		&m.FinishedAt,
		&m.DurationMs,
		&m.Discovered,
		&m.AfterDedup,
		&m.EmptyCycle,
		&m.SweepPagesOK,
		&m.SweepPagesFailed,
		&m.SweepTokensAdded,
		&m.Accepted,
		&m.AcceptedRelaxed,
		&m.Suppressed,
		&m.Emitted,
		&rejectionsJSON,
	)
	if err != nil {
		return nil, err
	}

	m.Rejections = make(map[contracts.RejectionReason]int)
	if len(rejectionsJSON) > 0 {
		if err := json.Unmarshal(rejectionsJSON, &m.Rejections); err != nil {
			return nil, fmt.Errorf("unmarshal rejections: %w", err)
		}
	}

	return &m, nil
}
