package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"tokenpulse/internal/aggregator"
	"tokenpulse/internal/contracts"
	"tokenpulse/internal/emit"
	"tokenpulse/internal/enrich"
	"tokenpulse/internal/gate"
	"tokenpulse/internal/metrics"
	"tokenpulse/internal/scoring"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
)

// ErrCycleInProgress is returned when a cycle is triggered while the
// previous one is still running. The trigger is skipped, never queued.
var ErrCycleInProgress = errors.New("scan cycle already in progress")

// Runner executes one full scan cycle: aggregate, enrich, score, gate,
// emit, freeze metrics. Cycles never overlap; an overlapping trigger is
// skipped so a slow cycle cannot pile up work behind itself.
type Runner struct {
	aggregator *aggregator.Aggregator
	enricher   *enrich.Enricher
	scorer     *scoring.Engine
	gate       *gate.Engine
	emitter    *emit.Controller
	recorder   *metrics.Recorder
	cfg        config.PipelineConfig
	logger     *logger.Logger

	mu sync.Mutex
}

// NewRunner wires the pipeline stages together.
func NewRunner(
	agg *aggregator.Aggregator,
	enricher *enrich.Enricher,
	scorer *scoring.Engine,
	gateEngine *gate.Engine,
	emitter *emit.Controller,
	recorder *metrics.Recorder,
	cfg config.PipelineConfig,
	log *logger.Logger,
) *Runner {
	return &Runner{
		aggregator: agg,
		enricher:   enricher,
		scorer:     scorer,
		gate:       gateEngine,
		emitter:    emitter,
		recorder:   recorder,
		cfg:        cfg,
		logger:     log,
	}
}

// RunCycle executes one scan cycle and returns its frozen metrics.
// An empty cycle is a normal outcome recorded as a data point, not an
// error; only an overlapping trigger fails.
func (r *Runner) RunCycle(ctx context.Context) (contracts.CycleMetrics, error) {
	if !r.mu.TryLock() {
		r.logger.Warn("Scan cycle skipped: previous cycle still running")
		return contracts.CycleMetrics{}, ErrCycleInProgress
	}
	defer r.mu.Unlock()

	cycleID := uuid.New().String()
	startedAt := time.Now().UTC()
	r.recorder.StartCycle(cycleID, startedAt)

	log := r.logger.WithField("cycle_id", cycleID)
	log.Info("Scan cycle started")

	agg, err := r.aggregator.Aggregate(ctx)
	r.recorder.RecordAggregation(agg.Discovered, len(agg.Candidates), agg.SweepPagesOK, agg.SweepPagesFailed, agg.SweepTokensAdded)
	if err != nil {
		if errors.Is(err, aggregator.ErrEmptyCycle) {
			r.recorder.RecordEmptyCycle()
			log.Warn("Scan cycle empty: no candidates from any source")
			return r.recorder.Finish(ctx, time.Now().UTC()), nil
		}
		r.recorder.RecordEmptyCycle()
		log.WithError(err).Error("Aggregation failed")
		return r.recorder.Finish(ctx, time.Now().UTC()), err
	}

	r.enricher.Enrich(ctx, agg.Candidates, startedAt)

	outcomes, accepted := r.evaluate(ctx, agg.Candidates, startedAt)

	// Single sequential accumulation pass: every deduped candidate lands
	// in exactly one terminal counter.
	for _, out := range outcomes {
		r.recorder.RecordOutcome(out)
	}

	emitRes := r.emitter.Emit(ctx, accepted, cycleID, startedAt)
	r.recorder.RecordEmission(len(emitRes.Emitted), emitRes.Suppressed)

	frozen := r.recorder.Finish(ctx, time.Now().UTC())

	log.WithFields(map[string]interface{}{
		"after_dedup": frozen.AfterDedup,
		"accepted":    frozen.Accepted,
		"rejected":    frozen.TotalRejected(),
		"emitted":     frozen.Emitted,
		"suppressed":  frozen.Suppressed,
		"duration_ms": frozen.DurationMs,
	}).Info("Scan cycle completed")

	return frozen, nil
}

// evaluate scores and gates every candidate with bounded concurrency.
// Outcomes come back in candidate order so the metrics fold and the
// accepted set are deterministic for identical inputs. A panicking
// candidate is counted under the error reason instead of taking the
// cycle down.
func (r *Runner) evaluate(ctx context.Context, candidates []contracts.Candidate, asOf time.Time) ([]contracts.GateOutcome, []emit.Accepted) {
	outcomes := make([]contracts.GateOutcome, len(candidates))
	scored := make([]contracts.ScoredCandidate, len(candidates))

	sem := semaphore.NewWeighted(int64(r.cfg.GateConcurrency))
	for i := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled mid-cycle: remaining candidates count as errors
			// so conservation still holds.
			for j := i; j < len(candidates); j++ {
				outcomes[j] = contracts.RejectedOutcome(candidates[j].Mint, contracts.ReasonError)
			}
			break
		}
		go func(idx int) {
			defer sem.Release(1)
			outcomes[idx], scored[idx] = r.evaluateOne(candidates[idx], asOf)
		}(i)
	}
	_ = sem.Acquire(context.Background(), int64(r.cfg.GateConcurrency))

	var accepted []emit.Accepted
	for i, out := range outcomes {
		if out.Accepted {
			accepted = append(accepted, emit.Accepted{Scored: scored[i], Path: out.Path})
		}
	}
	return outcomes, accepted
}

// evaluateOne scores and gates a single candidate behind a panic guard.
func (r *Runner) evaluateOne(c contracts.Candidate, asOf time.Time) (out contracts.GateOutcome, sc contracts.ScoredCandidate) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(map[string]interface{}{
				"mint":  c.Mint,
				"panic": rec,
			}).Error("Candidate evaluation panicked")
			out = contracts.RejectedOutcome(c.Mint, contracts.ReasonError)
		}
	}()

	sc = r.scorer.Score(c)
	out = r.gate.Evaluate(sc, asOf)
	return out, sc
}
