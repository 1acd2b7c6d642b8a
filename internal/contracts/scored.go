package contracts

// ScoredCandidate is a Candidate plus its three scores. Scores are
// deterministic pure functions of the candidate's fields at scoring
// time; re-scoring the same candidate yields the same values.
type ScoredCandidate struct {
	Candidate

	// MomentumScore is a weighted composite, nominally 0-100 but
	// unbounded below.
	MomentumScore float64 `json:"momentum_score"`

	// QualityScore is an independent validation signal on a 0-10 scale,
	// consumed only by the strict gate path.
	QualityScore float64 `json:"quality_score"`

	// RiskScore rises with thin liquidity, low holder counts, scam
	// keyword matches and major-token classification (0-100).
	RiskScore float64 `json:"risk_score"`

	// Classifier outputs reused by the risk score and the gate guards.
	ScamMatch  bool `json:"scam_match"`
	MajorToken bool `json:"major_token"`
}
