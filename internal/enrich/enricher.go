package enrich

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
	"tokenpulse/pkg/redis"
)

// Enricher attaches secondary activity data (holders, buys/sells,
// provider-side volume) to candidates. Enrichment is best-effort: a
// failed or aged-out lookup marks the candidate stale instead of
// dropping it, and the relaxed gate path consumes that flag downstream.
type Enricher struct {
	fetcher contracts.ActivityFetcher
	cache   *redis.Cache // nil disables the fallback cache
	cfg     config.PipelineConfig
	logger  *logger.Logger
}

// New creates an enricher. The cache is optional; without it a failed
// lookup goes straight to stale defaults.
func New(fetcher contracts.ActivityFetcher, cache *redis.Cache, cfg config.PipelineConfig, log *logger.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		logger:  log,
	}
}

// Enrich looks up activity data for every candidate in place, bounded
// by the configured concurrency. asOf is the cycle timestamp used for
// the staleness cutoff.
func (e *Enricher) Enrich(ctx context.Context, candidates []contracts.Candidate, asOf time.Time) {
	sem := semaphore.NewWeighted(int64(e.cfg.EnrichConcurrency))

	for i := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cycle context cancelled; the rest stay stale.
			return
		}
		go func(c *contracts.Candidate) {
			defer sem.Release(1)
			e.enrichOne(ctx, c, asOf)
		}(&candidates[i])
	}

	// Drain: all permits back means all workers finished.
	_ = sem.Acquire(context.Background(), int64(e.cfg.EnrichConcurrency))
}

// enrichOne resolves activity data for a single candidate: live fetch
// first, cache fallback second, stale defaults last.
func (e *Enricher) enrichOne(ctx context.Context, c *contracts.Candidate, asOf time.Time) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.EnrichTimeout)
	defer cancel()

	data, err := e.fetcher.FetchActivity(callCtx, c.Mint)
	if err == nil && data != nil {
		e.apply(c, data, asOf)
		e.cacheSet(ctx, c.Mint, data)
		return
	}

	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"mint":  c.Mint,
			"error": err.Error(),
		}).Warn("Activity fetch failed")
	}

	if cached := e.cacheGet(ctx, c.Mint); cached != nil {
		e.apply(c, cached, asOf)
		return
	}
	// No data from anywhere: stale defaults set at construction stand.
}

// apply copies the activity payload onto the candidate. Data older
// than the configured maximum age still populates the guard inputs but
// keeps the stale flag set, which exempts it from the fresh-data
// volume floor.
func (e *Enricher) apply(c *contracts.Candidate, data *contracts.ActivityData, asOf time.Time) {
	c.Holders = data.Holders
	c.Buys24h = data.Buys24h
	c.Sells24h = data.Sells24h
	c.ActivityVolume24h = data.Volume24h
	c.ActivityAsOf = data.AsOf
	c.ActivityStale = data.AsOf.IsZero() || asOf.Sub(data.AsOf) > e.cfg.ActivityMaxAge
}

func (e *Enricher) cacheGet(ctx context.Context, mint string) *contracts.ActivityData {
	if e.cache == nil {
		return nil
	}
	var data contracts.ActivityData
	hit, err := e.cache.Get(ctx, redis.TokenActivityKey(mint), &data)
	if err != nil || !hit {
		return nil
	}
	return &data
}

func (e *Enricher) cacheSet(ctx context.Context, mint string, data *contracts.ActivityData) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Set(ctx, redis.TokenActivityKey(mint), data, redis.TTLLong); err != nil {
		e.logger.WithError(err).Debug("Activity cache write failed")
	}
}
