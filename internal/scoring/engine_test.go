package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
)

func testEngine() *Engine {
	return NewEngine(
		config.ScoringWeights{
			VolumeToMcap: 0.30,
			PriceChange:  0.25,
			Liquidity:    0.20,
			Holders:      0.15,
			TxCount:      0.10,
		},
		config.GateConfig{
			ScamKeywords:        []string{"rug", "scam", "honeypot"},
			MajorTokenSymbols:   []string{"SOL", "USDC"},
			MajorTokenMarketCap: 500_000_000,
		},
	)
}

func strongCandidate() contracts.Candidate {
	return contracts.Candidate{
		Mint:          "Mint1111",
		Symbol:        "PULSE",
		Name:          "Pulse Token",
		PriceUSD:      0.004,
		MarketCap:     250_000,
		LiquidityUSD:  150_000,
		Volume24h:     400_000, // ratio 1.6 > norm
		Volume1h:      20_000,
		PriceChange1h: 30, // above norm
		LastTradeAt:   time.Now(),
		Holders:       1200,
		Buys24h:       200,
		Sells24h:      120,
	}
}

func TestScore_Deterministic(t *testing.T) {
	e := testEngine()
	c := strongCandidate()

	first := e.Score(c)
	second := e.Score(c)

	assert.Equal(t, first, second)
}

func TestMomentum_FullMarksAtAnchors(t *testing.T) {
	e := testEngine()
	sc := e.Score(strongCandidate())

	// Every factor at or above its anchor yields the full 100.
	assert.InDelta(t, 100.0, sc.MomentumScore, 0.001)
}

func TestMomentum_UnboundedBelow(t *testing.T) {
	e := testEngine()
	c := strongCandidate()
	c.PriceChange1h = -200 // crash

	sc := e.Score(c)
	assert.Less(t, sc.MomentumScore, 0.0)
}

func TestMomentum_ZeroCandidate(t *testing.T) {
	e := testEngine()
	sc := e.Score(contracts.Candidate{Mint: "x"})
	assert.Zero(t, sc.MomentumScore)
}

func TestQuality_IndependentOfMomentumInputs(t *testing.T) {
	e := testEngine()

	// High momentum but structurally weak: thin book relative to cap,
	// volume concentrated hours ago, sell-dominated.
	weak := strongCandidate()
	weak.MarketCap = 10_000_000
	weak.LiquidityUSD = 50_000
	weak.Volume1h = 0
	weak.Buys24h = 10
	weak.Sells24h = 90
	weak.Holders = 40

	strong := strongCandidate()

	weakScored := e.Score(weak)
	strongScored := e.Score(strong)

	assert.Less(t, weakScored.QualityScore, strongScored.QualityScore)
	assert.LessOrEqual(t, strongScored.QualityScore, 10.0)
	assert.GreaterOrEqual(t, weakScored.QualityScore, 0.0)
}

func TestRisk_Penalties(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name string
		mut  func(*contracts.Candidate)
		want float64
	}{
		{
			name: "healthy token carries no risk",
			mut:  func(c *contracts.Candidate) {},
			want: 0,
		},
		{
			name: "thin liquidity",
			mut:  func(c *contracts.Candidate) { c.LiquidityUSD = 5_000 },
			want: RiskThinLiquidityPenalty,
		},
		{
			name: "low holders",
			mut:  func(c *contracts.Candidate) { c.Holders = 10 },
			want: RiskLowHolderPenalty,
		},
		{
			name: "scam keyword",
			mut:  func(c *contracts.Candidate) { c.Name = "Honeypot Classic" },
			want: RiskScamKeywordPenalty,
		},
		{
			name: "major token by mcap",
			mut:  func(c *contracts.Candidate) { c.MarketCap = 900_000_000 },
			want: RiskMajorTokenPenalty,
		},
		{
			name: "stacked penalties clamp at 100",
			mut: func(c *contracts.Candidate) {
				c.LiquidityUSD = 1_000
				c.Holders = 5
				c.Name = "free rug airdrop"
				c.Symbol = "SOL"
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := strongCandidate()
			tt.mut(&c)
			sc := e.Score(c)
			assert.InDelta(t, tt.want, sc.RiskScore, 0.001)
		})
	}
}

func TestClassifiers(t *testing.T) {
	e := testEngine()

	c := strongCandidate()
	c.Symbol = "usdc" // case-insensitive
	assert.True(t, e.Score(c).MajorToken)

	c = strongCandidate()
	c.Name = "Mega RUG Machine"
	assert.True(t, e.Score(c).ScamMatch)

	c = strongCandidate()
	assert.False(t, e.Score(c).ScamMatch)
	assert.False(t, e.Score(c).MajorToken)
}
