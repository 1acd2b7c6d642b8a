package helius

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

// Client wraps the Helius token activity API, the secondary enrichment
// provider: holder counts, 24h buy/sell splits and provider-side volume.
type Client struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// NewClient creates a Helius enrichment client.
func NewClient(httpClient *httputil.Client, cfg config.HeliusConfig, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		logger:  log,
	}
}

// activityDTO is the provider-side activity shape.
type activityDTO struct {
	HolderCount   int     `json:"holderCount"`
	BuyCount24h   int     `json:"buyCount24h"`
	SellCount24h  int     `json:"sellCount24h"`
	VolumeUSD24h  float64 `json:"volumeUsd24h"`
	UpdatedAtUnix int64   `json:"updatedAt"`
}

// FetchActivity returns activity data for one mint. The caller decides
// staleness from AsOf; this client only reports what the provider said
// and when it said it.
func (c *Client) FetchActivity(ctx context.Context, mint string) (*contracts.ActivityData, error) {
	url := fmt.Sprintf("%s/v0/tokens/%s/activity?api-key=%s", c.baseURL, mint, c.apiKey)

	var dto activityDTO
	if err := c.http.GetJSON(ctx, url, nil, &dto); err != nil {
		return nil, fmt.Errorf("activity fetch for %s failed: %w", mint, err)
	}

	asOf := time.Now().UTC()
	if dto.UpdatedAtUnix > 0 {
		asOf = time.Unix(dto.UpdatedAtUnix, 0).UTC()
	}

	return &contracts.ActivityData{
		Holders:   dto.HolderCount,
		Buys24h:   dto.BuyCount24h,
		Sells24h:  dto.SellCount24h,
		Volume24h: dto.VolumeUSD24h,
		AsOf:      asOf,
	}, nil
}
