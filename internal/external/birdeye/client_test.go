package birdeye

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenpulse/pkg/config"
	"tokenpulse/pkg/httputil"
	"tokenpulse/pkg/logger"
)

func newTestClient(t *testing.T, pageSize int, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := httputil.New(&config.Config{}, logger.NewNop()).DisableRetry()
	return NewClient(httpClient, config.BirdeyeConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	}, pageSize, logger.NewNop())
}

func TestFetchPage_MapsTokens(t *testing.T) {
	lastTrade := time.Date(2026, 2, 1, 11, 58, 0, 0, time.UTC)

	c := newTestClient(t, 2, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/defi/tokenlist", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "solana", r.Header.Get("x-chain"))
		assert.Equal(t, "v24hUSD", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "4", r.URL.Query().Get("offset"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"success": true,
			"data": {
				"tokens": [
					{
						"address": "MintAAA",
						"symbol": "AAA",
						"name": "Token A",
						"price": 0.004,
						"mc": 90000,
						"liquidity": 30000,
						"v24hUSD": 55000,
						"lastTradeUnixTime": %d
					},
					{"address": "", "symbol": "BAD"}
				]
			}
		}`, lastTrade.Unix())
	})

	records, hasMore, err := c.FetchPage(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, records, 1, "tokens without an address are dropped")
	assert.Equal(t, "MintAAA", records[0].Mint)
	assert.Equal(t, 90000.0, records[0].MarketCap)
	assert.Equal(t, 55000.0, records[0].Volume24h)
	assert.Equal(t, lastTrade, records[0].LastTradeAt)
	assert.Equal(t, "birdeye_sweep", records[0].Strategy)
	assert.True(t, hasMore, "a full page means more may follow")
}

func TestFetchPage_ShortPageEndsSweep(t *testing.T) {
	c := newTestClient(t, 50, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {"tokens": [{"address": "MintAAA"}]}}`))
	})

	records, hasMore, err := c.FetchPage(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.False(t, hasMore)
}

func TestFetchPage_ProviderFailure(t *testing.T) {
	c := newTestClient(t, 50, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false}`))
	})

	_, hasMore, err := c.FetchPage(context.Background(), 0)
	assert.Error(t, err)
	assert.True(t, hasMore, "a failed page does not end the sweep")
}
