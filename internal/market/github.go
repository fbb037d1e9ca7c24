package market

import (
	"context"

	"solana-honey-bot/internal/token"
)

// FetchGitHubTokenList downloads the solana-labs token registry. It is the
// broadest (and slowest-moving) discovery source, so it seeds the merged
// list ahead of CoinGecko.
func (c *Client) FetchGitHubTokenList(ctx context.Context) ([]token.Info, error) {
	var payload struct {
		Tokens []struct {
			Address string `json:"address"`
			Symbol  string `json:"symbol"`
			Name    string `json:"name"`
		} `json:"tokens"`
	}

	if err := c.getJSON(ctx, c.endpoints.TokenList, nil, &payload); err != nil {
		return nil, err
	}

	tokens := make([]token.Info, 0, len(payload.Tokens))
	for _, t := range payload.Tokens {
		if t.Address == "" {
			continue
		}
		tokens = append(tokens, token.Info{
			Address: t.Address,
			Symbol:  t.Symbol,
			Name:    t.Name,
		})
	}
	return tokens, nil
}
