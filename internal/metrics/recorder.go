package metrics

import (
	"context"
	"time"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/logger"
	"tokenpulse/pkg/redis"
)

// Recorder owns the live metrics record for the cycle in flight. Stage
// results are folded in sequentially by the pipeline runner; once the
// cycle closes the record is frozen and published to the metrics store,
// the cache and the Prometheus collectors. External readers only ever
// see frozen cycles.
type Recorder struct {
	store      contracts.MetricsStore
	cache      *redis.Cache // nil disables the latest-cycle snapshot
	collectors *Collectors  // nil disables Prometheus export
	logger     *logger.Logger

	live *contracts.CycleMetrics
}

// NewRecorder creates a recorder. Cache and collectors are optional.
func NewRecorder(store contracts.MetricsStore, cache *redis.Cache, collectors *Collectors, log *logger.Logger) *Recorder {
	return &Recorder{
		store:      store,
		cache:      cache,
		collectors: collectors,
		logger:     log,
	}
}

// StartCycle opens a fresh zeroed record. Any unfinished previous
// record is discarded; the runner guarantees cycles do not overlap.
func (r *Recorder) StartCycle(cycleID string, at time.Time) {
	r.live = contracts.NewCycleMetrics(cycleID, at)
}

// RecordAggregation folds the discovery counters in.
func (r *Recorder) RecordAggregation(discovered, afterDedup, sweepOK, sweepFailed, sweepAdded int) {
	r.live.Discovered = discovered
	r.live.AfterDedup = afterDedup
	r.live.SweepPagesOK = sweepOK
	r.live.SweepPagesFailed = sweepFailed
	r.live.SweepTokensAdded = sweepAdded
}

// RecordEmptyCycle marks a cycle where every source came back empty.
func (r *Recorder) RecordEmptyCycle() {
	r.live.EmptyCycle = true
}

// RecordOutcome folds one gate decision in.
func (r *Recorder) RecordOutcome(out contracts.GateOutcome) {
	if out.Accepted {
		r.live.Accepted++
		if out.Path == contracts.PathRelaxed {
			r.live.AcceptedRelaxed++
		}
		return
	}
	r.live.AddRejection(out.Reason)
}

// RecordEmission folds the emission stage counters in.
func (r *Recorder) RecordEmission(emitted, suppressed int) {
	r.live.Emitted = emitted
	r.live.Suppressed = suppressed
}

// Finish freezes the live record, verifies counter conservation and
// publishes it. Publication failures are logged, never fatal: metrics
// must not take the pipeline down.
func (r *Recorder) Finish(ctx context.Context, at time.Time) contracts.CycleMetrics {
	r.live.Finish(at)
	frozen := *r.live

	if !frozen.ConservationOK() {
		// Every deduped candidate must land in exactly one terminal
		// counter. A mismatch means an accounting bug, not bad data.
		r.logger.WithFields(map[string]interface{}{
			"cycle_id":    frozen.CycleID,
			"after_dedup": frozen.AfterDedup,
			"accepted":    frozen.Accepted,
			"rejected":    frozen.TotalRejected(),
		}).Error("Cycle counter conservation violated")
	}

	if err := r.store.Insert(ctx, frozen); err != nil {
		r.logger.WithError(err).Error("Cycle metrics persistence failed")
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, redis.LatestMetricsKey(), frozen, redis.TTLCycle); err != nil {
			r.logger.WithError(err).Debug("Cycle metrics cache write failed")
		}
	}

	if r.collectors != nil {
		r.collectors.Observe(frozen)
	}

	r.live = nil
	return frozen
}
