package scoring

import "tokenpulse/internal/contracts"

// Quality anchors and weights. Quality is a 0-10 validation signal
// computed from different factors than momentum so the strict gate's
// two tests stay independent.
const (
	// QualityLiquidityRatioNorm: pooled liquidity at 25% of market cap
	// earns full marks; thin books relative to cap score low.
	QualityLiquidityRatioNorm = 0.25

	// QualityDominanceNorm: buyer dominance of 0.6 earns full marks.
	QualityDominanceNorm = 0.6

	// QualityHoldersNorm: 500 holders earn full marks.
	QualityHoldersNorm = 500.0

	QualityWeightLiquidityRatio = 0.35
	QualityWeightVolumePace     = 0.25
	QualityWeightDominance      = 0.25
	QualityWeightHolders        = 0.15

	// QualityScale maps the 0-1 composite to the 0-10 reporting scale.
	QualityScale = 10.0
)

// qualityScore validates structural health: book depth relative to cap,
// whether the last hour keeps pace with the day's volume, buy-side
// dominance and holder base.
func (e *Engine) qualityScore(c contracts.Candidate) float64 {
	var liquidityRatio float64
	if c.MarketCap > 0 {
		liquidityRatio = c.LiquidityUSD / c.MarketCap
	}
	liquidityFactor := clamp01(liquidityRatio / QualityLiquidityRatioNorm)

	// A token trading evenly all day has pace 1.0; one whose volume all
	// happened hours ago decays toward 0.
	var paceFactor float64
	if c.Volume24h > 0 {
		paceFactor = clamp01(c.Volume1h * 24 / c.Volume24h)
	}

	dominanceFactor := clamp01(c.BuyerDominance() / QualityDominanceNorm)
	holderFactor := clamp01(float64(c.Holders) / QualityHoldersNorm)

	composite := QualityWeightLiquidityRatio*liquidityFactor +
		QualityWeightVolumePace*paceFactor +
		QualityWeightDominance*dominanceFactor +
		QualityWeightHolders*holderFactor

	return composite * QualityScale
}
