package contracts

import (
	"context"
	"time"
)

// StrategyFetcher is one discovery strategy. A failed call contributes
// an empty list upstream; it never fails the cycle.
type StrategyFetcher interface {
	// Strategy returns the provenance tag for this strategy.
	Strategy() string

	// Fetch returns up to the per-strategy cap of raw candidates.
	Fetch(ctx context.Context) ([]RawCandidate, error)
}

// SweepFetcher pages through an overflow discovery provider.
type SweepFetcher interface {
	// FetchPage returns one page of candidates and whether more pages
	// remain. Pages are zero-indexed.
	FetchPage(ctx context.Context, page int) (records []RawCandidate, hasMore bool, err error)
}

// ActivityFetcher retrieves secondary-provider activity data for one
// mint. A nil result with nil error means the provider has no data.
type ActivityFetcher interface {
	FetchActivity(ctx context.Context, mint string) (*ActivityData, error)
}

// SignalStore is the append-only persistence sink for emitted signals.
type SignalStore interface {
	Insert(ctx context.Context, sig EmittedSignal) error
	Recent(ctx context.Context, limit int) ([]EmittedSignal, error)
	// EmittedSince returns mints emitted at or after the cutoff, used to
	// rebuild the dedup window on startup.
	EmittedSince(ctx context.Context, cutoff time.Time) (map[string]time.Time, error)
}

// MetricsStore persists frozen per-cycle metrics for trend analysis.
type MetricsStore interface {
	Insert(ctx context.Context, m CycleMetrics) error
	Latest(ctx context.Context) (*CycleMetrics, error)
	History(ctx context.Context, limit int) ([]CycleMetrics, error)
	AvgDurationMs(ctx context.Context, lastN int) (float64, error)
}

// Notifier is the fire-and-forget notification sink. Failures are
// logged and never abort the cycle.
type Notifier interface {
	Notify(ctx context.Context, sig EmittedSignal) error
}
