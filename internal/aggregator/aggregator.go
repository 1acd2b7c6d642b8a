package aggregator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
)

// ErrEmptyCycle signals that every discovery strategy and the sweep
// produced zero candidates. It is reported upward as a metrics data
// point, never as a process failure.
var ErrEmptyCycle = errors.New("no candidates from any source")

// Aggregator merges discovery strategy results and the overflow sweep
// into one deduplicated candidate set bounded by the per-cycle cap.
type Aggregator struct {
	strategies []contracts.StrategyFetcher
	sweep      contracts.SweepFetcher
	cfg        config.PipelineConfig
	logger     *logger.Logger
}

// Result carries the candidate set plus the counters the cycle metrics
// recorder folds in.
type Result struct {
	Candidates []contracts.Candidate
	Discovered int // raw records before dedup

	SweepPagesOK     int
	SweepPagesFailed int
	SweepTokensAdded int
}

// New creates an aggregator. The sweep fetcher may be nil, in which
// case under-production simply yields a smaller cycle.
func New(strategies []contracts.StrategyFetcher, sweep contracts.SweepFetcher, cfg config.PipelineConfig, log *logger.Logger) *Aggregator {
	return &Aggregator{
		strategies: strategies,
		sweep:      sweep,
		cfg:        cfg,
		logger:     log,
	}
}

// Aggregate runs all discovery strategies concurrently, dedups by mint
// and tops up from the sweep when the primaries under-produce. A failed
// strategy contributes an empty list; only a fully empty cycle is
// reported, via ErrEmptyCycle.
func (a *Aggregator) Aggregate(ctx context.Context) (Result, error) {
	var res Result

	lists := a.fetchStrategies(ctx)

	// Merge sequentially in strategy order so dedup and cap truncation
	// are deterministic for identical inputs.
	seen := make(map[string]int) // mint -> index into res.Candidates
	for _, records := range lists {
		res.Discovered += len(records)
		a.merge(&res, seen, records)
	}

	if len(res.Candidates) < a.cfg.MinCandidateTarget && a.sweep != nil {
		a.runSweep(ctx, &res, seen)
	}

	if len(res.Candidates) > a.cfg.MaxCandidatesPerCycle {
		res.Candidates = res.Candidates[:a.cfg.MaxCandidatesPerCycle]
	}

	if len(res.Candidates) == 0 {
		return res, ErrEmptyCycle
	}

	a.logger.WithFields(map[string]interface{}{
		"discovered":   res.Discovered,
		"after_dedup":  len(res.Candidates),
		"sweep_added":  res.SweepTokensAdded,
		"sweep_ok":     res.SweepPagesOK,
		"sweep_failed": res.SweepPagesFailed,
	}).Info("Aggregation completed")

	return res, nil
}

// fetchStrategies fans out one call per strategy with an individual
// timeout. Failures are isolated: a failed strategy is logged and
// contributes nothing.
func (a *Aggregator) fetchStrategies(ctx context.Context) [][]contracts.RawCandidate {
	lists := make([][]contracts.RawCandidate, len(a.strategies))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range a.strategies {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.cfg.StrategyTimeout)
			defer cancel()

			records, err := s.Fetch(callCtx)
			if err != nil {
				a.logger.WithFields(map[string]interface{}{
					"strategy": s.Strategy(),
					"error":    err.Error(),
				}).Warn("Discovery strategy failed")
				return nil
			}

			if len(records) > a.cfg.PerStrategyCap {
				records = records[:a.cfg.PerStrategyCap]
			}
			lists[i] = records
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return lists
}

// merge dedups records into the result. The first-seen record wins for
// data fields; later duplicates only accumulate provenance. Returns how
// many new mints were added.
func (a *Aggregator) merge(res *Result, seen map[string]int, records []contracts.RawCandidate) int {
	added := 0
	for _, r := range records {
		if r.Mint == "" {
			continue
		}
		if idx, ok := seen[r.Mint]; ok {
			res.Candidates[idx].AddProvenance(r.Strategy)
			continue
		}
		seen[r.Mint] = len(res.Candidates)
		res.Candidates = append(res.Candidates, contracts.FromRaw(r))
		added++
	}
	return added
}
