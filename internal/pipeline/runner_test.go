package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// Stub providers and sinks for full-cycle tests.

type stubStrategy struct {
	tag     string
	records []contracts.RawCandidate
}

func (s *stubStrategy) Strategy() string { return s.tag }

func (s *stubStrategy) Fetch(ctx context.Context) ([]contracts.RawCandidate, error) {
	return s.records, nil
}

type stubActivity struct {
	data map[string]*contracts.ActivityData
}

func (s *stubActivity) FetchActivity(ctx context.Context, mint string) (*contracts.ActivityData, error) {
	if d, ok := s.data[mint]; ok {
		return d, nil
	}
	return nil, context.DeadlineExceeded
}

type memSignalStore struct {
	mu       sync.Mutex
	inserted []contracts.EmittedSignal
}

func (s *memSignalStore) Insert(ctx context.Context, sig contracts.EmittedSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, sig)
	return nil
}

func (s *memSignalStore) Recent(ctx context.Context, limit int) ([]contracts.EmittedSignal, error) {
	return s.inserted, nil
}

func (s *memSignalStore) EmittedSince(ctx context.Context, cutoff time.Time) (map[string]time.Time, error) {
	return nil, nil
}

type memMetricsStore struct {
	inserted []contracts.CycleMetrics
}

func (s *memMetricsStore) Insert(ctx context.Context, m contracts.CycleMetrics) error {
	s.inserted = append(s.inserted, m)
	return nil
}

func (s *memMetricsStore) Latest(ctx context.Context) (*contracts.CycleMetrics, error) {
	return nil, nil
}

func (s *memMetricsStore) History(ctx context.Context, limit int) ([]contracts.CycleMetrics, error) {
	return nil, nil
}

func (s *memMetricsStore) AvgDurationMs(ctx context.Context, lastN int) (float64, error) {
	return 0, nil
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MaxCandidatesPerCycle: 120,
		MinCandidateTarget:    2,
		PerStrategyCap:        30,
		StrategyTimeout:       time.Second,
		SweepMaxPages:         10,
		SweepPageTimeout:      time.Second,
		SweepPageWarnAfter:    500 * time.Millisecond,
		EnrichConcurrency:     4,
		EnrichTimeout:         time.Second,
		ActivityMaxAge:        10 * time.Minute,
		GateConcurrency:       4,
	}
}

func testGateConfig() config.GateConfig {
	return config.GateConfig{
		ScamKeywords:         []string{"rug", "scam"},
		MajorTokenSymbols:    []string{"SOL", "USDC"},
		MajorTokenMarketCap:  500_000_000,
		MinHolderCount:       50,
		MinBuyerDominance:    0.30,
		MinBuysWithDominance: 8,
		MinBuysFloor:         3,
		MaxTradeAge:          30 * time.Minute,
		HeliusVolumeFloor:    1_000,

		StrictMomentumThreshold: 50,
		StrictQualityThreshold:  6.0,

		RelaxedMomentumThreshold: 55,
		RelaxedMinPriceChange1h:  8.0,
		RelaxedMinVolumeRatio:    0.35,
		RelaxedMinDominance:      0.35,
		RelaxedMinBuys:           4,
	}
}

func testWeights() config.ScoringWeights {
	return config.ScoringWeights{
		VolumeToMcap: 0.30,
		PriceChange:  0.25,
		Liquidity:    0.20,
		Holders:      0.15,
		TxCount:      0.10,
	}
}

// strongRaw produces a candidate that, with the matching activity data,
// clears every guard and both strict thresholds.
func strongRaw(mint string) contracts.RawCandidate {
	return contracts.RawCandidate{
		Mint:          mint,
		Symbol:        "PLS",
		Name:          "Pulse Token",
		PriceUSD:      0.002,
		MarketCap:     200_000,
		LiquidityUSD:  150_000,
		Volume24h:     300_000,
		Volume1h:      20_000,
		PriceChange1h: 25,
		LastTradeAt:   time.Now().UTC().Add(-time.Minute),
		Strategy:      "profiles",
	}
}

func strongActivity() *contracts.ActivityData {
	return &contracts.ActivityData{
		Holders:   1200,
		Buys24h:   200,
		Sells24h:  100,
		Volume24h: 50_000,
		AsOf:      time.Now().UTC(),
	}
}

func newTestRunner(strategies []contracts.StrategyFetcher, activity *stubActivity, signals *memSignalStore, cycles *memMetricsStore) *Runner {
	log := logger.NewNop()
	pcfg := testPipelineConfig()
	gcfg := testGateConfig()

	agg := aggregator.New(strategies, nil, pcfg, log)
	enricher := enrich.New(activity, nil, pcfg, log)
	scorer := scoring.NewEngine(testWeights(), gcfg)
	gateEngine := gate.NewEngine(gcfg)
	emitter := emit.NewController(signals, nil, config.EmissionConfig{
		MaxPerCycle: 5,
		DedupWindow: 6 * time.Hour,
		RecentLimit: 20,
	}, log)
	recorder := metrics.NewRecorder(cycles, nil, nil, log)

	return NewRunner(agg, enricher, scorer, gateEngine, emitter, recorder, pcfg, log)
}

func TestRunCycle_EndToEnd(t *testing.T) {
	activity := &stubActivity{data: map[string]*contracts.ActivityData{
		"good-mint": strongActivity(),
	}}

	scamRaw := strongRaw("scam-mint")
	scamRaw.Name = "Rug Pull Classic"

	signals := &memSignalStore{}
	cycles := &memMetricsStore{}
	r := newTestRunner([]contracts.StrategyFetcher{
		&stubStrategy{tag: "profiles", records: []contracts.RawCandidate{
			strongRaw("good-mint"),
			scamRaw,
		}},
	}, activity, signals, cycles)

	frozen, err := r.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, frozen.AfterDedup)
	assert.Equal(t, 1, frozen.Accepted)
	assert.Equal(t, 1, frozen.Rejections[contracts.ReasonScamKeyword])
	assert.Equal(t, 1, frozen.Emitted)
	assert.True(t, frozen.ConservationOK())

	require.Len(t, signals.inserted, 1)
	assert.Equal(t, "good-mint", signals.inserted[0].Mint)
	assert.Equal(t, frozen.CycleID, signals.inserted[0].CycleID)

	require.Len(t, cycles.inserted, 1)
}

func TestRunCycle_EmptyCycleIsNotAnError(t *testing.T) {
	signals := &memSignalStore{}
	cycles := &memMetricsStore{}
	r := newTestRunner([]contracts.StrategyFetcher{
		&stubStrategy{tag: "profiles"},
	}, &stubActivity{}, signals, cycles)

	frozen, err := r.RunCycle(context.Background())
	require.NoError(t, err)

	assert.True(t, frozen.EmptyCycle)
	assert.Zero(t, frozen.AfterDedup)
	assert.True(t, frozen.ConservationOK())
	require.Len(t, cycles.inserted, 1, "empty cycles still persist their metrics")
}

func TestRunCycle_FailedEnrichmentStillCounts(t *testing.T) {
	// Activity lookup fails for every mint: candidates flow through with
	// stale defaults and land in rejection counters, never vanish.
	signals := &memSignalStore{}
	cycles := &memMetricsStore{}
	r := newTestRunner([]contracts.StrategyFetcher{
		&stubStrategy{tag: "profiles", records: []contracts.RawCandidate{
			strongRaw("mint-a"),
			strongRaw("mint-b"),
		}},
	}, &stubActivity{}, signals, cycles)

	frozen, err := r.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, frozen.AfterDedup)
	assert.True(t, frozen.ConservationOK())
	// Zero holders from stale defaults trips the holder guard.
	assert.Equal(t, 2, frozen.Rejections[contracts.ReasonHolderCount])
}

func TestRunCycle_DedupAcrossCycles(t *testing.T) {
	activity := &stubActivity{data: map[string]*contracts.ActivityData{
		"good-mint": strongActivity(),
	}}
	signals := &memSignalStore{}
	cycles := &memMetricsStore{}
	r := newTestRunner([]contracts.StrategyFetcher{
		&stubStrategy{tag: "profiles", records: []contracts.RawCandidate{strongRaw("good-mint")}},
	}, activity, signals, cycles)

	first, err := r.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Emitted)

	second, err := r.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Emitted)
	assert.Equal(t, 1, second.Suppressed)
	assert.True(t, second.ConservationOK())
}

func TestRunCycle_SkipsWhenInProgress(t *testing.T) {
	signals := &memSignalStore{}
	cycles := &memMetricsStore{}
	r := newTestRunner([]contracts.StrategyFetcher{
		&stubStrategy{tag: "profiles"},
	}, &stubActivity{}, signals, cycles)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.RunCycle(context.Background())
	assert.ErrorIs(t, err, ErrCycleInProgress)
}
