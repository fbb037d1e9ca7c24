package market

import (
	"context"

	"solana-honey-bot/internal/token"
)

// FetchCoinGeckoToken is the lowest-priority per-address source. CoinGecko
// has no direct Solana mint lookup, so this always reports no data; it keeps
// its slot in the aggregator chain so the priority order is explicit.
func (c *Client) FetchCoinGeckoToken(ctx context.Context, address string) (*token.Info, error) {
	return nil, ErrNoData
}

// FetchCoinGeckoSolanaList returns every CoinGecko-listed coin with a Solana
// platform address. Used to enrich the merged discovery list, not for prices.
func (c *Client) FetchCoinGeckoSolanaList(ctx context.Context) ([]token.Info, error) {
	var payload []struct {
		ID        string            `json:"id"`
		Symbol    string            `json:"symbol"`
		Name      string            `json:"name"`
		Platforms map[string]string `json:"platforms"`
	}

	url := c.endpoints.CoinGecko + "/api/v3/coins/list?include_platform=true"
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}

	var tokens []token.Info
	for _, coin := range payload {
		addr := coin.Platforms["solana"]
		if addr == "" {
			continue
		}
		tokens = append(tokens, token.Info{
			Address: addr,
			Symbol:  coin.Symbol,
			Name:    coin.Name,
		})
	}
	return tokens, nil
}
