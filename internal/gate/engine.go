package gate

import (
	"time"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
)

// Engine applies the ordered guard set plus the strict and relaxed
// acceptance tests. Evaluate is a pure function: given the same scored
// candidate, the same asOf and the same configuration it always returns
// the same outcome. The caller folds outcomes into cycle metrics; the
// engine keeps no stats of its own.
type Engine struct {
	cfg config.GateConfig
}

// NewEngine creates a gate engine from validated configuration.
func NewEngine(cfg config.GateConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate decides the terminal outcome for one candidate. asOf is the
// cycle timestamp used for trade-age comparison, so evaluation stays
// reproducible regardless of when it actually runs.
//
// Guard order is fixed; the first failing guard names the rejection:
//
//	1. scam_keyword
//	2. major_token
//	3. holder_count
//	4. low_dominance_buyers
//	5. insufficient_buyers
//	6. stale_trade
//	7. low_momentum
//	8. low_helius_volume
//
// Guards 1-5 are never relaxable. A candidate whose only failures are
// stale_trade and/or low_helius_volume may still be accepted through
// the relaxed path, which exists to compensate for stale secondary
// data, not to lower the bar generally.
func (e *Engine) Evaluate(sc contracts.ScoredCandidate, asOf time.Time) contracts.GateOutcome {
	// Hard guards: reject immediately, relaxation never applies.
	if sc.ScamMatch {
		return contracts.RejectedOutcome(sc.Mint, contracts.ReasonScamKeyword)
	}
	if sc.MajorToken {
		return contracts.RejectedOutcome(sc.Mint, contracts.ReasonMajorToken)
	}
	if sc.Holders < e.cfg.MinHolderCount {
		return contracts.RejectedOutcome(sc.Mint, contracts.ReasonHolderCount)
	}
	if sc.BuyerDominance() < e.cfg.MinBuyerDominance && sc.Buys24h < e.cfg.MinBuysWithDominance {
		return contracts.RejectedOutcome(sc.Mint, contracts.ReasonLowDominanceBuyers)
	}
	if sc.Buys24h < e.cfg.MinBuysFloor {
		return contracts.RejectedOutcome(sc.Mint, contracts.ReasonInsufficientBuyers)
	}

	// Soft guards: collect failures in guard order so the first one
	// names the rejection if the relaxed path does not rescue it.
	var failures []contracts.RejectionReason

	staleTrade := !sc.LastTradeAt.IsZero() && asOf.Sub(sc.LastTradeAt) > e.cfg.MaxTradeAge
	if staleTrade {
		failures = append(failures, contracts.ReasonStaleTrade)
	}

	// The primary threshold covers both the momentum floor and the
	// quality validation; a shortfall in either counts as low_momentum.
	if sc.MomentumScore < e.cfg.StrictMomentumThreshold ||
		sc.QualityScore < e.cfg.StrictQualityThreshold {
		failures = append(failures, contracts.ReasonLowMomentum)
	}

	// Secondary-provider volume floor is only meaningful on fresh data.
	if !sc.ActivityStale && sc.ActivityVolume24h < e.cfg.HeliusVolumeFloor {
		failures = append(failures, contracts.ReasonLowHeliusVolume)
	}

	if len(failures) == 0 {
		return contracts.StrictOutcome(sc.Mint)
	}

	if e.relaxedEligible(failures) && e.passesRelaxed(sc) {
		return contracts.RelaxedOutcome(sc.Mint)
	}

	return contracts.RejectedOutcome(sc.Mint, failures[0])
}

// relaxedEligible reports whether every failure is one the relaxed path
// may rescue. low_momentum disqualifies outright: the relaxed momentum
// threshold is at least the strict one, so a candidate below strict can
// never clear it.
func (e *Engine) relaxedEligible(failures []contracts.RejectionReason) bool {
	for _, f := range failures {
		if f != contracts.ReasonStaleTrade && f != contracts.ReasonLowHeliusVolume {
			return false
		}
	}
	return true
}

// passesRelaxed applies the narrow fallback test. It requires the
// secondary data to actually be flagged stale: this path compensates
// for a stale provider, it is not a general discount.
func (e *Engine) passesRelaxed(sc contracts.ScoredCandidate) bool {
	if !sc.ActivityStale {
		return false
	}
	if sc.MomentumScore < e.cfg.RelaxedMomentumThreshold {
		return false
	}
	if sc.PriceChange1h < e.cfg.RelaxedMinPriceChange1h {
		return false
	}
	if sc.VolumeRatio() < e.cfg.RelaxedMinVolumeRatio {
		return false
	}
	if sc.BuyerDominance() <= e.cfg.RelaxedMinDominance {
		return false
	}
	if sc.Buys24h < e.cfg.RelaxedMinBuys {
		return false
	}
	return true
}
