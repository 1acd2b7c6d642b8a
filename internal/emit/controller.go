package emit

import (
	"context"
	"sort"
	"sync"
	"time"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
)

// Accepted pairs a gate-accepted candidate with the path it came in on.
type Accepted struct {
	Scored contracts.ScoredCandidate
	Path   contracts.GatePath
}

// Result carries what one cycle actually put on the wire.
type Result struct {
	Emitted    []contracts.EmittedSignal
	Suppressed int // dedup-window hits
}

// Controller ranks accepted candidates, suppresses recent re-emissions
// and fans the survivors out to the persistence and notification sinks.
// The sinks are independent: a store failure does not block the
// notifier and vice versa, both are logged and the cycle continues.
type Controller struct {
	store    contracts.SignalStore
	notifier contracts.Notifier // nil disables notifications
	cfg      config.EmissionConfig
	logger   *logger.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time
	warmed   bool
}

// NewController creates an emission controller with an empty dedup
// window. Call Warm before the first cycle to rebuild the window from
// persistence, otherwise a restart forgets recent emissions.
func NewController(store contracts.SignalStore, notifier contracts.Notifier, cfg config.EmissionConfig, log *logger.Logger) *Controller {
	return &Controller{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
		lastSeen: make(map[string]time.Time),
	}
}

// Warm rebuilds the dedup window from signals persisted inside it.
// Safe to call more than once; only the first call loads.
func (c *Controller) Warm(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return nil
	}

	seen, err := c.store.EmittedSince(ctx, now.Add(-c.cfg.DedupWindow))
	if err != nil {
		return err
	}
	for mint, at := range seen {
		c.lastSeen[mint] = at
	}
	c.warmed = true

	c.logger.WithField("window_entries", len(seen)).Info("Emission dedup window rebuilt")
	return nil
}

// Emit ranks the accepted set, drops dedup-window hits, applies the
// per-cycle cap and sends the rest to both sinks.
func (c *Controller) Emit(ctx context.Context, accepted []Accepted, cycleID string, now time.Time) Result {
	var res Result

	rank(accepted)

	c.mu.Lock()
	c.prune(now)
	toEmit := make([]Accepted, 0, c.cfg.MaxPerCycle)
	for _, a := range accepted {
		if last, ok := c.lastSeen[a.Scored.Mint]; ok && now.Sub(last) < c.cfg.DedupWindow {
			res.Suppressed++
			continue
		}
		if len(toEmit) >= c.cfg.MaxPerCycle {
			// Over-cap survivors are neither emitted nor suppressed; they
			// simply wait for a later cycle.
			continue
		}
		c.lastSeen[a.Scored.Mint] = now
		toEmit = append(toEmit, a)
	}
	c.mu.Unlock()

	for _, a := range toEmit {
		sig := contracts.NewEmittedSignal(a.Scored, a.Path, cycleID, now)
		c.deliver(ctx, sig)
		res.Emitted = append(res.Emitted, sig)
	}

	return res
}

// deliver pushes one signal to both sinks, tolerating either failing.
func (c *Controller) deliver(ctx context.Context, sig contracts.EmittedSignal) {
	if err := c.store.Insert(ctx, sig); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"mint":  sig.Mint,
			"error": err.Error(),
		}).Error("Signal persistence failed")
	}

	if c.notifier != nil {
		if err := c.notifier.Notify(ctx, sig); err != nil {
			c.logger.WithFields(map[string]interface{}{
				"mint":  sig.Mint,
				"error": err.Error(),
			}).Warn("Signal notification failed")
		}
	}
}

// prune drops window entries that have aged out. Caller holds the lock.
func (c *Controller) prune(now time.Time) {
	for mint, at := range c.lastSeen {
		if now.Sub(at) >= c.cfg.DedupWindow {
			delete(c.lastSeen, mint)
		}
	}
}

// rank orders candidates momentum-descending with quality as the
// tiebreak and the mint string as the final, total tiebreak so equal
// scores never reorder between runs.
func rank(accepted []Accepted) {
	sort.Slice(accepted, func(i, j int) bool {
		a, b := accepted[i].Scored, accepted[j].Scored
		if a.MomentumScore != b.MomentumScore {
			return a.MomentumScore > b.MomentumScore
		}
		if a.QualityScore != b.QualityScore {
			return a.QualityScore > b.QualityScore
		}
		return a.Mint < b.Mint
	})
}
