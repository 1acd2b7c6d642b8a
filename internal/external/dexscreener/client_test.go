package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenpulse/pkg/config"
	"tokenpulse/pkg/httputil"
	"tokenpulse/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := httputil.New(&config.Config{}, logger.NewNop()).DisableRetry()
	client := NewClient(httpClient, config.DexScreenerConfig{
		BaseURL: srv.URL,
		Chain:   "solana",
	}, logger.NewNop())
	return client, srv
}

func TestSearchStrategy_MapsAndFiltersPairs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"pairs": [
				{
					"chainId": "solana",
					"priceUsd": "0.00421",
					"marketCap": 150000,
					"liquidity": {"usd": 42000},
					"volume": {"h24": 90000, "h1": 8000},
					"priceChange": {"h1": 12.5},
					"baseToken": {"address": "MintAAA", "name": "Pulse", "symbol": "PLS"}
				},
				{
					"chainId": "ethereum",
					"priceUsd": "1.0",
					"baseToken": {"address": "0xdead", "name": "Other", "symbol": "OTH"}
				},
				{
					"chainId": "solana",
					"priceUsd": "0.005",
					"baseToken": {"address": "MintAAA", "name": "Pulse", "symbol": "PLS"}
				}
			]
		}`))
	})

	s := NewSearchStrategy(client, "")
	records, err := s.Fetch(context.Background())
	require.NoError(t, err)

	// Off-chain pairs are dropped and the first pair per address wins.
	require.Len(t, records, 1)
	assert.Equal(t, "MintAAA", records[0].Mint)
	assert.Equal(t, "PLS", records[0].Symbol)
	assert.Equal(t, 0.00421, records[0].PriceUSD)
	assert.Equal(t, 150000.0, records[0].MarketCap)
	assert.Equal(t, 42000.0, records[0].LiquidityUSD)
	assert.Equal(t, 90000.0, records[0].Volume24h)
	assert.Equal(t, 8000.0, records[0].Volume1h)
	assert.Equal(t, 12.5, records[0].PriceChange1h)
	assert.Equal(t, "search", records[0].Strategy)
	assert.True(t, records[0].LastTradeAt.IsZero())
}

func TestProfilesStrategy_ResolvesAddressesToPairs(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token-profiles/latest/v1":
			_, _ = w.Write([]byte(`[
				{"chainId": "solana", "tokenAddress": "MintAAA"},
				{"chainId": "base", "tokenAddress": "0xbeef"},
				{"chainId": "solana", "tokenAddress": "MintBBB"}
			]`))
		case "/tokens/v1/solana/MintAAA,MintBBB":
			_, _ = w.Write([]byte(`[
				{
					"chainId": "solana",
					"priceUsd": "0.01",
					"fdv": 80000,
					"baseToken": {"address": "MintAAA", "name": "A", "symbol": "AAA"}
				},
				{
					"chainId": "solana",
					"priceUsd": "0.02",
					"marketCap": 120000,
					"baseToken": {"address": "MintBBB", "name": "B", "symbol": "BBB"}
				}
			]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	s := NewProfilesStrategy(client)
	records, err := s.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "token_profiles", records[0].Strategy)
	// FDV stands in when the pair has no market cap.
	assert.Equal(t, 80000.0, records[0].MarketCap)
	assert.Equal(t, 120000.0, records[1].MarketCap)
}

func TestBoostsStrategy_EmptyFeed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	s := NewBoostsStrategy(client)
	records, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetch_UpstreamErrorPropagates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s := NewSearchStrategy(client, "")
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}
