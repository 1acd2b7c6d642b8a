package birdeye

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tokenpulse/internal/contracts"
	"tokenpulse/pkg/config"
	"tokenpulse/pkg/httputil"
	"tokenpulse/pkg/logger"
)

// Client wraps the Birdeye token-list API and implements the overflow
// sweep: an offset-paginated walk down the volume-sorted token list,
// used only when the primary strategies under-produce.
type Client struct {
	http     *httputil.Client
	baseURL  string
	apiKey   string
	pageSize int
	logger   *logger.Logger
}

// NewClient creates a Birdeye sweep client.
func NewClient(httpClient *httputil.Client, cfg config.BirdeyeConfig, pageSize int, log *logger.Logger) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		logger:   log,
	}
}

// tokenListResponse is the provider-side token list shape.
type tokenListResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Tokens []tokenDTO `json:"tokens"`
	} `json:"data"`
}

type tokenDTO struct {
	Address           string  `json:"address"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	MarketCap         float64 `json:"mc"`
	Liquidity         float64 `json:"liquidity"`
	Volume24hUSD      float64 `json:"v24hUSD"`
	LastTradeUnixTime int64   `json:"lastTradeUnixTime"`
}

// FetchPage returns one volume-sorted page of tokens. hasMore is true
// while the provider keeps filling full pages.
func (c *Client) FetchPage(ctx context.Context, page int) ([]contracts.RawCandidate, bool, error) {
	url := fmt.Sprintf("%s/defi/tokenlist?sort_by=v24hUSD&sort_type=desc&offset=%d&limit=%d",
		c.baseURL, page*c.pageSize, c.pageSize)

	headers := map[string]string{
		"X-API-KEY": c.apiKey,
		"x-chain":   "solana",
	}

	var resp tokenListResponse
	if err := c.http.GetJSON(ctx, url, headers, &resp); err != nil {
		return nil, true, fmt.Errorf("token list page %d failed: %w", page, err)
	}
	if !resp.Success {
		return nil, true, fmt.Errorf("token list page %d: provider reported failure", page)
	}

	out := make([]contracts.RawCandidate, 0, len(resp.Data.Tokens))
	for _, t := range resp.Data.Tokens {
		if t.Address == "" {
			continue
		}

		var lastTrade time.Time
		if t.LastTradeUnixTime > 0 {
			lastTrade = time.Unix(t.LastTradeUnixTime, 0).UTC()
		}

		out = append(out, contracts.RawCandidate{
			Mint:         t.Address,
			Symbol:       t.Symbol,
			Name:         t.Name,
			PriceUSD:     t.Price,
			MarketCap:    t.MarketCap,
			LiquidityUSD: t.Liquidity,
			Volume24h:    t.Volume24hUSD,
			LastTradeAt:  lastTrade,
			Strategy:     "birdeye_sweep",
		})
	}

	return out, len(resp.Data.Tokens) == c.pageSize, nil
}
