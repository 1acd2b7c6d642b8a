package scoring

import "tokenpulse/internal/contracts"

// Risk penalties (0-100 scale, higher = riskier).
const (
	RiskThinLiquidityUSD = 10_000.0
	RiskLowHolderCount   = 100

	RiskThinLiquidityPenalty = 30.0
	RiskLowHolderPenalty     = 20.0
	RiskScamKeywordPenalty   = 40.0
	RiskMajorTokenPenalty    = 25.0
)

// riskScore accumulates penalties; the gate rejects on the underlying
// classifiers directly, so this score is advisory for consumers.
func (e *Engine) riskScore(c contracts.Candidate, scamMatch, majorToken bool) float64 {
	risk := 0.0

	if c.LiquidityUSD < RiskThinLiquidityUSD {
		risk += RiskThinLiquidityPenalty
	}
	if c.Holders < RiskLowHolderCount {
		risk += RiskLowHolderPenalty
	}
	if scamMatch {
		risk += RiskScamKeywordPenalty
	}
	if majorToken {
		risk += RiskMajorTokenPenalty
	}

	if risk > 100 {
		risk = 100
	}
	return risk
}
