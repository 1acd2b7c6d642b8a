package contracts

import "time"

// CycleMetrics aggregates counters for one pipeline cycle. It is
// created zeroed at cycle start, incremented during the cycle and
// frozen at cycle close; external consumers only ever see frozen
// copies.
type CycleMetrics struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`

	// Aggregation
	Discovered int  `json:"discovered"`  // raw records before dedup
	AfterDedup int  `json:"after_dedup"` // unique candidates processed
	EmptyCycle bool `json:"empty_cycle"` // every strategy and the sweep came back empty

	// Sweep
	SweepPagesOK     int `json:"sweep_pages_ok"`
	SweepPagesFailed int `json:"sweep_pages_failed"`
	SweepTokensAdded int `json:"sweep_tokens_added"`

	// Gating and emission
	Accepted        int                     `json:"accepted"`
	AcceptedRelaxed int                     `json:"accepted_relaxed"`
	Suppressed      int                     `json:"suppressed"` // dedup-window hits
	Emitted         int                     `json:"emitted"`
	Rejections      map[RejectionReason]int `json:"rejections"`
}

// NewCycleMetrics creates a zeroed metrics record for a starting cycle.
func NewCycleMetrics(cycleID string, startedAt time.Time) *CycleMetrics {
	return &CycleMetrics{
		CycleID:    cycleID,
		StartedAt:  startedAt,
		Rejections: make(map[RejectionReason]int),
	}
}

// AddRejection increments the counter for one named guard.
func (m *CycleMetrics) AddRejection(reason RejectionReason) {
	m.Rejections[reason]++
}

// TotalRejected sums every per-reason counter.
func (m *CycleMetrics) TotalRejected() int {
	total := 0
	for _, n := range m.Rejections {
		total += n
	}
	return total
}

// ConservationOK verifies that no candidate was dropped without being
// counted: afterDedup == accepted + sum(rejections).
func (m *CycleMetrics) ConservationOK() bool {
	return m.AfterDedup == m.Accepted+m.TotalRejected()
}

// Finish stamps the cycle end and duration.
func (m *CycleMetrics) Finish(at time.Time) {
	m.FinishedAt = at
	m.DurationMs = at.Sub(m.StartedAt).Milliseconds()
}
