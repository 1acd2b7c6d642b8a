package aggregator

import (
	"context"
	"time"

	"tokenpulse/internal/contracts"
)

// runSweep pages through the overflow provider until the candidate set
// reaches the per-cycle cap, the provider runs dry or the page bound is
// hit. A failed or timed-out page is counted and skipped; the sweep
// never aborts on a single bad page.
func (a *Aggregator) runSweep(ctx context.Context, res *Result, seen map[string]int) {
	for page := 0; page < a.cfg.SweepMaxPages; page++ {
		if ctx.Err() != nil {
			return
		}

		records, hasMore, err := a.fetchSweepPage(ctx, page)
		if err != nil {
			res.SweepPagesFailed++
			a.logger.WithFields(map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			}).Warn("Sweep page failed")
			continue
		}

		res.SweepPagesOK++
		res.Discovered += len(records)
		res.SweepTokensAdded += a.merge(res, seen, records)

		if len(res.Candidates) >= a.cfg.MaxCandidatesPerCycle {
			a.logger.WithField("page", page).Debug("Sweep reached candidate cap")
			return
		}
		if !hasMore {
			return
		}
	}
}

// fetchSweepPage wraps one page fetch with its own timeout and the
// slow-page warning.
func (a *Aggregator) fetchSweepPage(ctx context.Context, page int) ([]contracts.RawCandidate, bool, error) {
	pageCtx, cancel := context.WithTimeout(ctx, a.cfg.SweepPageTimeout)
	defer cancel()

	start := time.Now()
	records, hasMore, err := a.sweep.FetchPage(pageCtx, page)
	elapsed := time.Since(start)

	if err == nil && elapsed > a.cfg.SweepPageWarnAfter {
		a.logger.WithFields(map[string]interface{}{
			"page":     page,
			"duration": elapsed,
		}).Warn("Sweep page slow")
	}

	return records, hasMore, err
}
