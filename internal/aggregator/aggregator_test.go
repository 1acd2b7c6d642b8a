package aggregator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
)

type stubStrategy struct {
	tag     string
	records []contracts.RawCandidate
	err     error
}

func (s *stubStrategy) Strategy() string { return s.tag }

func (s *stubStrategy) Fetch(ctx context.Context) ([]contracts.RawCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubSweep struct {
	pages   [][]contracts.RawCandidate
	pageErr map[int]error
	calls   int
}

func (s *stubSweep) FetchPage(ctx context.Context, page int) ([]contracts.RawCandidate, bool, error) {
	s.calls++
	if err, ok := s.pageErr[page]; ok {
		return nil, true, err
	}
	if page >= len(s.pages) {
		return nil, false, nil
	}
	return s.pages[page], page < len(s.pages)-1, nil
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MaxCandidatesPerCycle: 120,
		MinCandidateTarget:    40,
		PerStrategyCap:        30,
		StrategyTimeout:       time.Second,
		SweepMaxPages:         10,
		SweepPageTimeout:      time.Second,
		SweepPageWarnAfter:    500 * time.Millisecond,
	}
}

func raws(tag string, n int) []contracts.RawCandidate {
	out := make([]contracts.RawCandidate, n)
	for i := range out {
		out[i] = contracts.RawCandidate{
			Mint:     fmt.Sprintf("%s-mint-%03d", tag, i),
			Strategy: tag,
		}
	}
	return out
}

func TestAggregate_DedupMergesProvenance(t *testing.T) {
	// Two strategies surfacing the same 20 identifiers yield exactly 20
	// candidates tagged with both strategies.
	a20 := raws("shared", 20)
	b20 := make([]contracts.RawCandidate, 20)
	copy(b20, a20)
	for i := range a20 {
		a20[i].Strategy = "profiles"
		b20[i].Strategy = "boosts"
	}

	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "profiles", records: a20},
			&stubStrategy{tag: "boosts", records: b20},
		},
		nil, testConfig(), logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Candidates, 20)
	assert.Equal(t, 40, res.Discovered)
	for _, c := range res.Candidates {
		assert.Equal(t, []string{"boosts", "profiles"}, c.Provenance)
	}
}

func TestAggregate_StrategyFailureIsIsolated(t *testing.T) {
	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "profiles", err: errors.New("upstream 503")},
			&stubStrategy{tag: "boosts", records: raws("boosts", 45)},
		},
		nil, testConfig(), logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	// Failed strategy contributes nothing; per-strategy cap applies.
	assert.Len(t, res.Candidates, 30)
}

func TestAggregate_PerStrategyCap(t *testing.T) {
	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "profiles", records: raws("profiles", 100)},
		},
		nil, testConfig(), logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 30)
}

func TestAggregate_SweepTriggersBelowTarget(t *testing.T) {
	sweep := &stubSweep{pages: [][]contracts.RawCandidate{raws("sweep", 12)}}
	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "profiles"},
			&stubStrategy{tag: "boosts"},
			&stubStrategy{tag: "search"},
		},
		sweep, testConfig(), logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	// All strategies empty; sweep alone produced data, so the cycle is
	// not empty (spec end-to-end scenario 5).
	assert.Len(t, res.Candidates, 12)
	assert.Equal(t, 12, res.SweepTokensAdded)
	assert.Equal(t, 1, res.SweepPagesOK)
	assert.Zero(t, res.SweepPagesFailed)
}

func TestAggregate_SweepSkippedAtTarget(t *testing.T) {
	sweep := &stubSweep{pages: [][]contracts.RawCandidate{raws("sweep", 50)}}
	cfg := testConfig()
	cfg.MinCandidateTarget = 20

	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "profiles", records: raws("profiles", 25)},
		},
		sweep, cfg, logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Len(t, res.Candidates, 25)
	assert.Zero(t, sweep.calls, "sweep must not run once the target is met")
}

func TestAggregate_SweepFailureIsolation(t *testing.T) {
	// 10 pages, 3 of them failing: the tokens from the 7 good pages
	// still land and both counters are recorded.
	pages := make([][]contracts.RawCandidate, 10)
	for i := range pages {
		pages[i] = raws(fmt.Sprintf("p%d", i), 5)
	}
	sweep := &stubSweep{
		pages:   pages,
		pageErr: map[int]error{2: errors.New("timeout"), 5: errors.New("502"), 7: errors.New("reset")},
	}

	agg := New(
		[]contracts.StrategyFetcher{&stubStrategy{tag: "profiles"}},
		sweep, testConfig(), logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, res.SweepPagesOK)
	assert.Equal(t, 3, res.SweepPagesFailed)
	assert.Equal(t, 35, res.SweepTokensAdded)
	assert.Len(t, res.Candidates, 35)
}

func TestAggregate_SweepStopsAtCap(t *testing.T) {
	pages := make([][]contracts.RawCandidate, 10)
	for i := range pages {
		pages[i] = raws(fmt.Sprintf("p%d", i), 50)
	}
	sweep := &stubSweep{pages: pages}

	cfg := testConfig()
	cfg.MaxCandidatesPerCycle = 80

	agg := New(
		[]contracts.StrategyFetcher{&stubStrategy{tag: "profiles"}},
		sweep, cfg, logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	assert.LessOrEqual(t, len(res.Candidates), 80)
	assert.Equal(t, 2, sweep.calls, "sweep must stop early once the cap is reached")
}

func TestAggregate_EmptyCycle(t *testing.T) {
	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "profiles"},
			&stubStrategy{tag: "boosts"},
		},
		&stubSweep{}, testConfig(), logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCycle)
	assert.Empty(t, res.Candidates)
}

func TestAggregate_CapRespected(t *testing.T) {
	cfg := testConfig()
	cfg.MaxCandidatesPerCycle = 50
	cfg.PerStrategyCap = 40

	agg := New(
		[]contracts.StrategyFetcher{
			&stubStrategy{tag: "a", records: raws("a", 40)},
			&stubStrategy{tag: "b", records: raws("b", 40)},
		},
		nil, cfg, logger.NewNop(),
	)

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 50)
}
