package market

import (
	"context"
	"fmt"

	"solana-honey-bot/internal/token"
)

// FetchBirdeyePrice returns the Birdeye spot price for a mint address.
// Birdeye is the highest-priority source in the aggregator chain because
// it answers fastest and covers the widest set of mints.
func (c *Client) FetchBirdeyePrice(ctx context.Context, address string) (*token.Info, error) {
	var payload struct {
		Data struct {
			Value any `json:"value"`
		} `json:"data"`
	}

	url := fmt.Sprintf("%s/public/price?address=%s", c.endpoints.Birdeye, address)
	if err := c.getJSON(ctx, url, c.birdeyeHeaders(), &payload); err != nil {
		return nil, err
	}

	price, ok := token.ParseNumber(payload.Data.Value)
	if !ok || price <= 0 {
		return nil, ErrNoData
	}

	return &token.Info{Address: address, Price: token.Num(price)}, nil
}

// Birdeye allows an empty key on public endpoints.
func (c *Client) birdeyeHeaders() map[string]string {
	return map[string]string{"X-API-KEY": c.birdeyeKey}
}

// FetchTrendingBirdeye returns Birdeye's token list sorted by 24h volume.
func (c *Client) FetchTrendingBirdeye(ctx context.Context) ([]token.Info, error) {
	var payload struct {
		Data struct {
			Tokens []struct {
				Address   string `json:"address"`
				Symbol    string `json:"symbol"`
				Name      string `json:"name"`
				MarketCap any    `json:"marketCap"`
				Volume24h any    `json:"volume24h"`
				Price     any    `json:"price"`
			} `json:"tokens"`
		} `json:"data"`
	}

	url := c.endpoints.Birdeye + "/public/tokenlist?sort_by=volume_24h&sort_type=desc&offset=0&limit=20"
	if err := c.getJSON(ctx, url, c.birdeyeHeaders(), &payload); err != nil {
		return nil, err
	}

	tokens := make([]token.Info, 0, len(payload.Data.Tokens))
	for _, t := range payload.Data.Tokens {
		if t.Address == "" {
			continue
		}
		info := token.Info{Address: t.Address, Symbol: t.Symbol, Name: t.Name}
		if v, ok := token.ParseNumber(t.MarketCap); ok {
			info.MarketCap = token.Num(v)
		}
		if v, ok := token.ParseNumber(t.Volume24h); ok {
			info.Volume = token.Num(v)
		}
		if v, ok := token.ParseNumber(t.Price); ok {
			info.Price = token.Num(v)
		}
		tokens = append(tokens, info)
	}
	return tokens, nil
}
