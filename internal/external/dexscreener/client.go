package dexscreener

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/httputil"
	"tokenpulse/pkg/logger"
)

// addressBatchSize is the maximum number of token addresses one pair
// lookup accepts.
const addressBatchSize = 30

// Client wraps the DexScreener public API. The address-list endpoints
// (profiles, boosts) only return addresses; market data comes from a
// second pair lookup, shared by every strategy through fetchPairs.
type Client struct {
	http    *httputil.Client
	baseURL string
	chain   string
	logger  *logger.Logger
}

// NewClient creates a DexScreener client.
func NewClient(httpClient *httputil.Client, cfg config.DexScreenerConfig, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		chain:   cfg.Chain,
		logger:  log,
	}
}

// pairDTO is the provider-side pair shape. Numeric fields the API sends
// as strings are parsed at the mapping boundary.
type pairDTO struct {
	ChainID   string  `json:"chainId"`
	PriceUSD  string  `json:"priceUsd"`
	MarketCap float64 `json:"marketCap"`
	FDV       float64 `json:"fdv"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
		H1  float64 `json:"h1"`
	} `json:"volume"`
	PriceChange struct {
		H1 float64 `json:"h1"`
	} `json:"priceChange"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
}

// toRaw maps a provider pair onto the internal discovery record.
func toRaw(p pairDTO, strategy string) contracts.RawCandidate {
	price, _ := strconv.ParseFloat(p.PriceUSD, 64)

	mcap := p.MarketCap
	if mcap == 0 {
		mcap = p.FDV
	}

	return contracts.RawCandidate{
		Mint:          p.BaseToken.Address,
		Symbol:        p.BaseToken.Symbol,
		Name:          p.BaseToken.Name,
		PriceUSD:      price,
		MarketCap:     mcap,
		LiquidityUSD:  p.Liquidity.USD,
		Volume24h:     p.Volume.H24,
		Volume1h:      p.Volume.H1,
		PriceChange1h: p.PriceChange.H1,
		// The pair payload carries no last-trade timestamp; the zero
		// value is treated as unknown, not stale, downstream.
		LastTradeAt: time.Time{},
		Strategy:    strategy,
	}
}

// fetchPairs resolves token addresses to pair records, batched to the
// endpoint's address limit. The best pair per address (first returned)
// wins; the aggregator dedups across strategies anyway.
func (c *Client) fetchPairs(ctx context.Context, addresses []string, strategy string) ([]contracts.RawCandidate, error) {
	var out []contracts.RawCandidate

	for start := 0; start < len(addresses); start += addressBatchSize {
		end := start + addressBatchSize
		if end > len(addresses) {
			end = len(addresses)
		}

		url := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, c.chain, strings.Join(addresses[start:end], ","))

		var pairs []pairDTO
		if err := c.http.GetJSON(ctx, url, nil, &pairs); err != nil {
			return nil, fmt.Errorf("pair lookup failed: %w", err)
		}

		seen := make(map[string]bool, len(pairs))
		for _, p := range pairs {
			if p.ChainID != c.chain || p.BaseToken.Address == "" {
				continue
			}
			if seen[p.BaseToken.Address] {
				continue
			}
			seen[p.BaseToken.Address] = true
			out = append(out, toRaw(p, strategy))
		}
	}

	return out, nil
}
