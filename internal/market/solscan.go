package market

import (
	"context"
	"fmt"

	"solana-honey-bot/internal/token"
)

// FetchSolscanMeta returns token metadata from Solscan, including holder
// count and 24h volume, which Birdeye's price endpoint does not carry.
func (c *Client) FetchSolscanMeta(ctx context.Context, address string) (*token.Info, error) {
	var payload struct {
		TokenAddress string `json:"tokenAddress"`
		Symbol       string `json:"symbol"`
		Name         string `json:"name"`
		MarketCap    any    `json:"marketCap"`
		Volume24h    any    `json:"volume24h"`
		HolderCount  any    `json:"holderCount"`
		PriceUsdt    any    `json:"priceUsdt"`
	}

	url := fmt.Sprintf("%s/token/meta?tokenAddress=%s", c.endpoints.Solscan, address)
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}
	if payload.TokenAddress == "" {
		return nil, ErrNoData
	}

	info := token.Info{
		Address: payload.TokenAddress,
		Symbol:  payload.Symbol,
		Name:    payload.Name,
	}
	if v, ok := token.ParseNumber(payload.MarketCap); ok {
		info.MarketCap = token.Num(v)
	}
	if v, ok := token.ParseNumber(payload.Volume24h); ok {
		info.Volume = token.Num(v)
	}
	if v, ok := token.ParseNumber(payload.HolderCount); ok {
		info.Holders = token.Num(v)
	}
	if v, ok := token.ParseNumber(payload.PriceUsdt); ok {
		info.Price = token.Num(v)
	}
	return &info, nil
}

// FetchSolscanPrice is the direct-price fallback used by the honey engine
// when the full aggregator chain yields nothing.
func (c *Client) FetchSolscanPrice(ctx context.Context, address string) (float64, error) {
	info, err := c.FetchSolscanMeta(ctx, address)
	if err != nil {
		return 0, err
	}
	if !info.HasPrice() {
		return 0, ErrNoData
	}
	return *info.Price, nil
}
