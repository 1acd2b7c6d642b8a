package dexscreener

import (
	"context"
	"fmt"

	"tokenpulse/internal/contracts"
)

// boostDTO is one entry from the latest token-boosts feed.
type boostDTO struct {
	ChainID      string  `json:"chainId"`
	TokenAddress string  `json:"tokenAddress"`
	Amount       float64 `json:"amount"`
}

// BoostsStrategy discovers tokens whose teams are paying for boosted
// placement, a strong self-selection signal for tokens chasing
// attention right now.
type BoostsStrategy struct {
	client *Client
}

// NewBoostsStrategy creates the boosts discovery strategy.
func NewBoostsStrategy(client *Client) *BoostsStrategy {
	return &BoostsStrategy{client: client}
}

func (s *BoostsStrategy) Strategy() string {
	return "boosts"
}

// Fetch lists currently boosted tokens on the configured chain and
// resolves their market data through the pair lookup.
func (s *BoostsStrategy) Fetch(ctx context.Context) ([]contracts.RawCandidate, error) {
	url := fmt.Sprintf("%s/token-boosts/latest/v1", s.client.baseURL)

	var boosts []boostDTO
	if err := s.client.http.GetJSON(ctx, url, nil, &boosts); err != nil {
		return nil, fmt.Errorf("token boosts fetch failed: %w", err)
	}

	addresses := make([]string, 0, len(boosts))
	for _, b := range boosts {
		if b.ChainID == s.client.chain && b.TokenAddress != "" {
			addresses = append(addresses, b.TokenAddress)
		}
	}
	if len(addresses) == 0 {
		return nil, nil
	}

	return s.client.fetchPairs(ctx, addresses, s.Strategy())
}
