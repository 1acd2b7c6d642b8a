package contracts

import (
	"sort"
	"time"
)

// RawCandidate is a provider-shaped discovery record before dedup.
// Each discovery strategy and the sweep produce these.
type RawCandidate struct {
	Mint          string    `json:"mint"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	PriceUSD      float64   `json:"price_usd"`
	MarketCap     float64   `json:"market_cap"`
	LiquidityUSD  float64   `json:"liquidity_usd"`
	Volume24h     float64   `json:"volume_24h"`
	Volume1h      float64   `json:"volume_1h"`
	PriceChange1h float64   `json:"price_change_1h"` // percent
	LastTradeAt   time.Time `json:"last_trade_at"`
	Strategy      string    `json:"strategy"` // discovery strategy that surfaced it
}

// Candidate is a tradable asset under evaluation for one cycle.
// After aggregation a mint appears at most once per cycle; duplicates
// merge provenance tags instead of creating a second record.
type Candidate struct {
	Mint   string `json:"mint"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`

	// Market fields (first-seen discovery record wins)
	PriceUSD      float64   `json:"price_usd"`
	MarketCap     float64   `json:"market_cap"`
	LiquidityUSD  float64   `json:"liquidity_usd"`
	Volume24h     float64   `json:"volume_24h"`
	Volume1h      float64   `json:"volume_1h"`
	PriceChange1h float64   `json:"price_change_1h"`
	LastTradeAt   time.Time `json:"last_trade_at"`

	// Activity fields from the secondary provider; zero defaults when stale.
	Holders           int     `json:"holders"`
	Buys24h           int     `json:"buys_24h"`
	Sells24h          int     `json:"sells_24h"`
	ActivityVolume24h float64 `json:"activity_volume_24h"`

	// ActivityStale marks missing, failed or aged-out secondary data.
	// A stale candidate is never dropped; the relaxed gate path consumes
	// this flag instead.
	ActivityStale bool      `json:"activity_stale"`
	ActivityAsOf  time.Time `json:"activity_as_of,omitempty"`

	// Provenance lists every discovery strategy that surfaced this mint,
	// sorted for determinism.
	Provenance []string `json:"provenance"`
}

// FromRaw converts a discovery record into a Candidate with one
// provenance tag and activity fields left at their stale defaults.
func FromRaw(r RawCandidate) Candidate {
	c := Candidate{
		Mint:          r.Mint,
		Symbol:        r.Symbol,
		Name:          r.Name,
		PriceUSD:      r.PriceUSD,
		MarketCap:     r.MarketCap,
		LiquidityUSD:  r.LiquidityUSD,
		Volume24h:     r.Volume24h,
		Volume1h:      r.Volume1h,
		PriceChange1h: r.PriceChange1h,
		LastTradeAt:   r.LastTradeAt,
		ActivityStale: true,
	}
	if r.Strategy != "" {
		c.Provenance = []string{r.Strategy}
	}
	return c
}

// AddProvenance records another strategy that surfaced this mint.
func (c *Candidate) AddProvenance(tag string) {
	if tag == "" {
		return
	}
	for _, existing := range c.Provenance {
		if existing == tag {
			return
		}
	}
	c.Provenance = append(c.Provenance, tag)
	sort.Strings(c.Provenance)
}

// BuyerDominance returns buys / (buys + sells), or 0 with no trades.
func (c Candidate) BuyerDominance() float64 {
	total := c.Buys24h + c.Sells24h
	if total == 0 {
		return 0
	}
	return float64(c.Buys24h) / float64(total)
}

// VolumeRatio returns 24h volume over market cap, or 0 without a cap.
func (c Candidate) VolumeRatio() float64 {
	if c.MarketCap <= 0 {
		return 0
	}
	return c.Volume24h / c.MarketCap
}

// ActivityData is the secondary-provider enrichment payload.
type ActivityData struct {
	Holders   int       `json:"holders"`
	Buys24h   int       `json:"buys_24h"`
	Sells24h  int       `json:"sells_24h"`
	Volume24h float64   `json:"volume_24h"`
	AsOf      time.Time `json:"as_of"`
}
