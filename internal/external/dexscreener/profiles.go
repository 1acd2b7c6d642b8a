package dexscreener

import (
	"context"
	"fmt"

	"tokenpulse/internal/contracts"
)

// profileDTO is one entry from the latest token-profiles feed.
type profileDTO struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
}

// ProfilesStrategy discovers tokens from the latest token-profiles
// feed: teams actively filling out profiles correlate with launch-phase
// activity.
type ProfilesStrategy struct {
	client *Client
}

// NewProfilesStrategy creates the token-profiles discovery strategy.
func NewProfilesStrategy(client *Client) *ProfilesStrategy {
	return &ProfilesStrategy{client: client}
}

func (s *ProfilesStrategy) Strategy() string {
	return "token_profiles"
}

// Fetch lists profiled tokens on the configured chain and resolves
// their market data through the pair lookup.
func (s *ProfilesStrategy) Fetch(ctx context.Context) ([]contracts.RawCandidate, error) {
	url := fmt.Sprintf("%s/token-profiles/latest/v1", s.client.baseURL)

	var profiles []profileDTO
	if err := s.client.http.GetJSON(ctx, url, nil, &profiles); err != nil {
		return nil, fmt.Errorf("token profiles fetch failed: %w", err)
	}

	addresses := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.ChainID == s.client.chain && p.TokenAddress != "" {
			addresses = append(addresses, p.TokenAddress)
		}
	}
	if len(addresses) == 0 {
		return nil, nil
	}

	return s.client.fetchPairs(ctx, addresses, s.Strategy())
}
