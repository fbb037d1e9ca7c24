package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/token"
)

type pumpFunToken struct {
	Address    string `json:"address"`
	Mint       string `json:"mint"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketCap  any    `json:"marketCap"`
	Volume     any    `json:"volume"`
	Volume24h  any    `json:"volume24h"`
	Holders    any    `json:"holders"`
	AgeMinutes any    `json:"ageMinutes"`
	LaunchedAt any    `json:"launchedAt"`
	Price      any    `json:"price"`
}

func (t *pumpFunToken) info(now time.Time) token.Info {
	addr := t.Address
	if addr == "" {
		addr = t.Mint
	}
	info := token.Info{Address: addr, Symbol: t.Symbol, Name: t.Name}
	if v, ok := token.ParseNumber(t.MarketCap); ok {
		info.MarketCap = token.Num(v)
	}
	if v, ok := token.ParseNumber(t.Volume); ok {
		info.Volume = token.Num(v)
	} else if v, ok := token.ParseNumber(t.Volume24h); ok {
		info.Volume = token.Num(v)
	}
	if v, ok := token.ParseNumber(t.Holders); ok {
		info.Holders = token.Num(v)
	}
	if v, ok := token.ParseNumber(t.AgeMinutes); ok {
		info.AgeMinutes = token.Num(v)
	} else if launched, ok := token.ParseNumber(t.LaunchedAt); ok && launched > 0 {
		age := float64(now.UnixMilli()-int64(launched)) / 60000
		if age >= 0 {
			info.AgeMinutes = token.Num(age)
		}
	}
	if v, ok := token.ParseNumber(t.Price); ok {
		info.Price = token.Num(v)
	}
	return info
}

// FetchPumpFunToken looks up a single token on the pump.fun public API.
func (c *Client) FetchPumpFunToken(ctx context.Context, address string) (*token.Info, error) {
	var payload pumpFunToken

	url := fmt.Sprintf("%s/api/v1/token/%s", c.endpoints.PumpFun, address)
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Address == "" && payload.Mint == "" {
		return nil, ErrNoData
	}

	info := payload.info(time.Now())
	return &info, nil
}

// FetchTrendingPumpFun returns pump.fun's trending token list.
func (c *Client) FetchTrendingPumpFun(ctx context.Context) ([]token.Info, error) {
	var payload struct {
		Tokens []pumpFunToken `json:"tokens"`
	}

	url := c.endpoints.PumpFun + "/api/v1/tokens/trending"
	if err := c.getJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}

	now := time.Now()
	tokens := make([]token.Info, 0, len(payload.Tokens))
	for _, t := range payload.Tokens {
		info := t.info(now)
		if info.Address == "" {
			continue
		}
		tokens = append(tokens, info)
	}
	return tokens, nil
}

type cachedCoin struct {
	Symbol     string `json:"symbol"`
	Mint       string `json:"mint"`
	MarketCap  any    `json:"marketCap"`
	Volume24h  any    `json:"volume24h"`
	Holders    any    `json:"holders"`
	LaunchedAt any    `json:"launchedAt"`
}

const (
	pumpCoinsRetries    = 2
	pumpCoinsRetryDelay = 2 * time.Second
)

// FetchPumpFunCoins returns the full pump.fun coin list. The endpoint is
// rate-limited, so results are cached for one minute and each fetch retries
// twice with a fixed delay before giving up with the cached (possibly empty)
// list.
func (c *Client) FetchPumpFunCoins(ctx context.Context) []token.Info {
	c.coinsMu.Lock()
	defer c.coinsMu.Unlock()

	now := time.Now()
	if len(c.coinsCache) > 0 && now.Sub(c.coinsFetched) < c.coinsTTL {
		return c.coinsToInfos(now)
	}

	url := c.endpoints.PumpCoins + "/api/coins"
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}

	var lastErr error
	for attempt := 0; attempt <= pumpCoinsRetries; attempt++ {
		var coins []cachedCoin
		if err := c.getJSON(ctx, url, headers, &coins); err != nil {
			lastErr = err
			if attempt < pumpCoinsRetries {
				select {
				case <-ctx.Done():
					return c.coinsToInfos(now)
				case <-time.After(pumpCoinsRetryDelay):
				}
			}
			continue
		}
		c.coinsCache = coins
		c.coinsFetched = now
		return c.coinsToInfos(now)
	}

	log.Warn().Err(lastErr).Msg("pump.fun coin list unavailable after retries")
	return c.coinsToInfos(now)
}

func (c *Client) coinsToInfos(now time.Time) []token.Info {
	tokens := make([]token.Info, 0, len(c.coinsCache))
	for _, coin := range c.coinsCache {
		if coin.Mint == "" {
			continue
		}
		info := token.Info{Address: coin.Mint, Symbol: coin.Symbol}
		if v, ok := token.ParseNumber(coin.MarketCap); ok {
			info.MarketCap = token.Num(v)
		}
		if v, ok := token.ParseNumber(coin.Volume24h); ok {
			info.Volume = token.Num(v)
		}
		if v, ok := token.ParseNumber(coin.Holders); ok {
			info.Holders = token.Num(v)
		}
		if launched, ok := token.ParseNumber(coin.LaunchedAt); ok && launched > 0 {
			age := float64(now.UnixMilli()-int64(launched)) / 60000
			if age >= 0 {
				info.AgeMinutes = token.Num(age)
			}
		}
		tokens = append(tokens, info)
	}
	return tokens
}
