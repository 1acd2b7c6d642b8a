package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/logger"
)

var asOf = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

type stubActivity struct {
	mu      sync.Mutex
	data    map[string]*contracts.ActivityData
	errFor  map[string]error
	inUse   int32
	maxSeen int32
}

func (s *stubActivity) FetchActivity(ctx context.Context, mint string) (*contracts.ActivityData, error) {
	cur := atomic.AddInt32(&s.inUse, 1)
	defer atomic.AddInt32(&s.inUse, -1)
	for {
		prev := atomic.LoadInt32(&s.maxSeen)
		if cur <= prev || atomic.CompareAndSwapInt32(&s.maxSeen, prev, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errFor[mint]; ok {
		return nil, err
	}
	if d, ok := s.data[mint]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

func testConfig() config.PipelineConfig {
	return config.PipelineConfig{
		EnrichConcurrency: 4,
		EnrichTimeout:     time.Second,
		ActivityMaxAge:    10 * time.Minute,
	}
}

func candidates(n int) []contracts.Candidate {
	out := make([]contracts.Candidate, n)
	for i := range out {
		out[i] = contracts.FromRaw(contracts.RawCandidate{
			Mint:     fmt.Sprintf("mint-%03d", i),
			Strategy: "profiles",
		})
	}
	return out
}

func TestEnrich_AppliesFreshData(t *testing.T) {
	fetcher := &stubActivity{
		data: map[string]*contracts.ActivityData{
			"mint-000": {Holders: 250, Buys24h: 12, Sells24h: 4, Volume24h: 8_000, AsOf: asOf.Add(-time.Minute)},
		},
	}
	e := New(fetcher, nil, testConfig(), logger.NewNop())

	cs := candidates(1)
	e.Enrich(context.Background(), cs, asOf)

	assert.Equal(t, 250, cs[0].Holders)
	assert.Equal(t, 12, cs[0].Buys24h)
	assert.Equal(t, 4, cs[0].Sells24h)
	assert.Equal(t, 8_000.0, cs[0].ActivityVolume24h)
	assert.False(t, cs[0].ActivityStale)
}

func TestEnrich_FailureLeavesStaleDefaults(t *testing.T) {
	fetcher := &stubActivity{
		errFor: map[string]error{"mint-000": errors.New("429")},
	}
	e := New(fetcher, nil, testConfig(), logger.NewNop())

	cs := candidates(1)
	e.Enrich(context.Background(), cs, asOf)

	// Failed enrichment never drops the candidate.
	assert.True(t, cs[0].ActivityStale)
	assert.Zero(t, cs[0].Holders)
	assert.Zero(t, cs[0].ActivityVolume24h)
}

func TestEnrich_AgedDataKeptButMarkedStale(t *testing.T) {
	fetcher := &stubActivity{
		data: map[string]*contracts.ActivityData{
			"mint-000": {Holders: 90, Buys24h: 6, Sells24h: 2, Volume24h: 3_000, AsOf: asOf.Add(-time.Hour)},
		},
	}
	e := New(fetcher, nil, testConfig(), logger.NewNop())

	cs := candidates(1)
	e.Enrich(context.Background(), cs, asOf)

	// Aged data still feeds the guard inputs, the stale flag exempts it
	// from the fresh-data volume floor.
	assert.True(t, cs[0].ActivityStale)
	assert.Equal(t, 90, cs[0].Holders)
	assert.Equal(t, 6, cs[0].Buys24h)
}

func TestEnrich_PartialFailure(t *testing.T) {
	fetcher := &stubActivity{
		data: map[string]*contracts.ActivityData{
			"mint-000": {Holders: 100, AsOf: asOf.Add(-time.Minute)},
			"mint-002": {Holders: 300, AsOf: asOf.Add(-time.Minute)},
		},
		errFor: map[string]error{"mint-001": errors.New("timeout")},
	}
	e := New(fetcher, nil, testConfig(), logger.NewNop())

	cs := candidates(3)
	e.Enrich(context.Background(), cs, asOf)

	assert.False(t, cs[0].ActivityStale)
	assert.True(t, cs[1].ActivityStale)
	assert.False(t, cs[2].ActivityStale)
}

func TestEnrich_ConcurrencyBounded(t *testing.T) {
	fetcher := &stubActivity{data: map[string]*contracts.ActivityData{}}
	for i := 0; i < 40; i++ {
		fetcher.data[fmt.Sprintf("mint-%03d", i)] = &contracts.ActivityData{Holders: 1, AsOf: asOf}
	}

	cfg := testConfig()
	cfg.EnrichConcurrency = 4
	e := New(fetcher, nil, cfg, logger.NewNop())

	e.Enrich(context.Background(), candidates(40), asOf)

	assert.LessOrEqual(t, fetcher.maxSeen, int32(4))
}
