package contracts

import "time"

// EmittedSignal is an accepted candidate transformed into the external
// contract. Once emitted it is immutable; the same mint may be emitted
// again only after it leaves the dedup window.
type EmittedSignal struct {
	Mint          string    `json:"mint"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	CycleID       string    `json:"cycle_id"`
	Path          GatePath  `json:"path"`
	MomentumScore float64   `json:"momentum_score"`
	QualityScore  float64   `json:"quality_score"`
	RiskScore     float64   `json:"risk_score"`
	PriceUSD      float64   `json:"price_usd"`
	MarketCap     float64   `json:"market_cap"`
	LiquidityUSD  float64   `json:"liquidity_usd"`
	Volume24h     float64   `json:"volume_24h"`
	PriceChange1h float64   `json:"price_change_1h"`
	Provenance    []string  `json:"provenance"`
	EmittedAt     time.Time `json:"emitted_at"`
}

// NewEmittedSignal builds the external record from an accepted
// candidate and its gate path.
func NewEmittedSignal(sc ScoredCandidate, path GatePath, cycleID string, at time.Time) EmittedSignal {
	return EmittedSignal{
		Mint:          sc.Mint,
		Symbol:        sc.Symbol,
		Name:          sc.Name,
		CycleID:       cycleID,
		Path:          path,
		MomentumScore: sc.MomentumScore,
		QualityScore:  sc.QualityScore,
		RiskScore:     sc.RiskScore,
		PriceUSD:      sc.PriceUSD,
		MarketCap:     sc.MarketCap,
		LiquidityUSD:  sc.LiquidityUSD,
		Volume24h:     sc.Volume24h,
		PriceChange1h: sc.PriceChange1h,
		Provenance:    sc.Provenance,
		EmittedAt:     at,
	}
}
