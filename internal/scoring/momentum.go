package scoring

import "tokenpulse/internal/contracts"

// Normalization anchors for the momentum sub-factors. Each anchor is
// the raw value that earns full marks for its factor; the weights that
// combine them live in config.ScoringWeights.
const (
	// VolumeRatioNorm: 24h volume equal to 1.5x market cap earns full marks.
	VolumeRatioNorm = 1.5

	// PriceChangeNorm: +25% over 1h earns full marks. Negative moves pull
	// the factor below zero without a floor, so momentum is unbounded below.
	PriceChangeNorm = 25.0

	// LiquidityNorm: $150k pooled liquidity earns full marks.
	LiquidityNorm = 150_000.0

	// HoldersNorm: 1000 holders earn full marks.
	HoldersNorm = 1000.0

	// TxCountNorm: 300 trades over 24h earn full marks.
	TxCountNorm = 300.0
)

// momentumScore is the weighted composite on a nominal 0-100 scale.
func (e *Engine) momentumScore(c contracts.Candidate) float64 {
	volumeFactor := clamp01(c.VolumeRatio() / VolumeRatioNorm)

	// Capped above, open below.
	priceFactor := c.PriceChange1h / PriceChangeNorm
	if priceFactor > 1 {
		priceFactor = 1
	}

	liquidityFactor := clamp01(c.LiquidityUSD / LiquidityNorm)
	holderFactor := clamp01(float64(c.Holders) / HoldersNorm)
	txFactor := clamp01(float64(c.Buys24h+c.Sells24h) / TxCountNorm)

	composite := e.weights.VolumeToMcap*volumeFactor +
		e.weights.PriceChange*priceFactor +
		e.weights.Liquidity*liquidityFactor +
		e.weights.Holders*holderFactor +
		e.weights.TxCount*txFactor

	return composite * 100
}
