package scoring

import (
	"strings"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
)

// Engine computes momentum, quality and risk scores for candidates.
// Score is a pure function of the candidate's fields: no hidden state,
// no side effects, safe to call concurrently across candidates.
type Engine struct {
	weights      config.ScoringWeights
	scamKeywords []string
	majorSymbols map[string]struct{}
	majorMcap    float64
}

// NewEngine creates a scoring engine from validated configuration.
func NewEngine(weights config.ScoringWeights, gate config.GateConfig) *Engine {
	keywords := make([]string, 0, len(gate.ScamKeywords))
	for _, k := range gate.ScamKeywords {
		keywords = append(keywords, strings.ToLower(k))
	}

	majors := make(map[string]struct{}, len(gate.MajorTokenSymbols))
	for _, s := range gate.MajorTokenSymbols {
		majors[strings.ToUpper(s)] = struct{}{}
	}

	return &Engine{
		weights:      weights,
		scamKeywords: keywords,
		majorSymbols: majors,
		majorMcap:    gate.MajorTokenMarketCap,
	}
}

// Score computes all three scores plus the classifier flags.
func (e *Engine) Score(c contracts.Candidate) contracts.ScoredCandidate {
	sc := contracts.ScoredCandidate{
		Candidate:  c,
		ScamMatch:  e.matchesScamKeyword(c),
		MajorToken: e.isMajorToken(c),
	}

	sc.MomentumScore = e.momentumScore(c)
	sc.QualityScore = e.qualityScore(c)
	sc.RiskScore = e.riskScore(c, sc.ScamMatch, sc.MajorToken)

	return sc
}

// matchesScamKeyword checks name and symbol against the configured
// scam-indicator list.
func (e *Engine) matchesScamKeyword(c contracts.Candidate) bool {
	name := strings.ToLower(c.Name)
	symbol := strings.ToLower(c.Symbol)

	for _, kw := range e.scamKeywords {
		if strings.Contains(name, kw) || strings.Contains(symbol, kw) {
			return true
		}
	}
	return false
}

// isMajorToken classifies established large-cap assets that are out of
// scope for the small-cap signal flow.
func (e *Engine) isMajorToken(c contracts.Candidate) bool {
	if _, ok := e.majorSymbols[strings.ToUpper(c.Symbol)]; ok {
		return true
	}
	return e.majorMcap > 0 && c.MarketCap >= e.majorMcap
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
