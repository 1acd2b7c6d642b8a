package dexscreener

import (
	"context"
	"fmt"
	"net/url"

	"tokenpulse/internal/contracts"
)

// searchResponseDTO wraps the pair search result.
type searchResponseDTO struct {
	Pairs []pairDTO `json:"pairs"`
}

// SearchStrategy discovers tokens through the pair search endpoint,
// which surfaces actively traded pairs the address feeds miss.
type SearchStrategy struct {
	client *Client
	query  string
}

// NewSearchStrategy creates the search discovery strategy. The query
// defaults to the configured chain slug when empty.
func NewSearchStrategy(client *Client, query string) *SearchStrategy {
	if query == "" {
		query = client.chain
	}
	return &SearchStrategy{client: client, query: query}
}

func (s *SearchStrategy) Strategy() string {
	return "search"
}

// Fetch searches pairs and keeps those on the configured chain. Search
// results already carry market data, no second lookup needed.
func (s *SearchStrategy) Fetch(ctx context.Context) ([]contracts.RawCandidate, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/search?q=%s", s.client.baseURL, url.QueryEscape(s.query))

	var resp searchResponseDTO
	if err := s.client.http.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("pair search failed: %w", err)
	}

	seen := make(map[string]bool, len(resp.Pairs))
	out := make([]contracts.RawCandidate, 0, len(resp.Pairs))
	for _, p := range resp.Pairs {
		if p.ChainID != s.client.chain || p.BaseToken.Address == "" {
			continue
		}
		if seen[p.BaseToken.Address] {
			continue
		}
		seen[p.BaseToken.Address] = true
		out = append(out, toRaw(p, s.Strategy()))
	}

	return out, nil
}
