package contracts

// GatePath is the terminal acceptance route for a candidate.
type GatePath string

const (
	PathStrict   GatePath = "strict"
	PathRelaxed  GatePath = "relaxed"
	PathRejected GatePath = "rejected"
)

// RejectionReason identifies the first guard a rejected candidate
// failed. The enumeration is operator-facing and must stay stable:
// dashboards and alerting key off these exact strings.
type RejectionReason string

const (
	ReasonScamKeyword        RejectionReason = "scam_keyword"
	ReasonMajorToken         RejectionReason = "major_token"
	ReasonHolderCount        RejectionReason = "holder_count"
	ReasonLowDominanceBuyers RejectionReason = "low_dominance_buyers"
	ReasonInsufficientBuyers RejectionReason = "insufficient_buyers"
	ReasonStaleTrade         RejectionReason = "stale_trade"
	ReasonLowMomentum        RejectionReason = "low_momentum"
	ReasonLowHeliusVolume    RejectionReason = "low_helius_volume"
	ReasonError              RejectionReason = "error"
)

// AllRejectionReasons returns every reason in guard evaluation order.
func AllRejectionReasons() []RejectionReason {
	return []RejectionReason{
		ReasonScamKeyword,
		ReasonMajorToken,
		ReasonHolderCount,
		ReasonLowDominanceBuyers,
		ReasonInsufficientBuyers,
		ReasonStaleTrade,
		ReasonLowMomentum,
		ReasonLowHeliusVolume,
		ReasonError,
	}
}

// IsValidRejectionReason checks a reason string against the enumeration.
func IsValidRejectionReason(s string) bool {
	for _, r := range AllRejectionReasons() {
		if string(r) == s {
			return true
		}
	}
	return false
}

// GateOutcome is the terminal decision for one scored candidate in one
// cycle. Exactly one of the three paths applies; Reason is set only
// when the candidate was rejected.
type GateOutcome struct {
	Mint     string          `json:"mint"`
	Accepted bool            `json:"accepted"`
	Path     GatePath        `json:"path"`
	Reason   RejectionReason `json:"reason,omitempty"`
}

// StrictOutcome builds an accepted-strict outcome.
func StrictOutcome(mint string) GateOutcome {
	return GateOutcome{Mint: mint, Accepted: true, Path: PathStrict}
}

// RelaxedOutcome builds an accepted-relaxed outcome.
func RelaxedOutcome(mint string) GateOutcome {
	return GateOutcome{Mint: mint, Accepted: true, Path: PathRelaxed}
}

// RejectedOutcome builds a rejection carrying its first failed guard.
func RejectedOutcome(mint string, reason RejectionReason) GateOutcome {
	return GateOutcome{Mint: mint, Accepted: false, Path: PathRejected, Reason: reason}
}
