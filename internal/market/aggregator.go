package market

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/token"
)

// ErrNoPrice is returned when no source in the chain yields a usable price.
var ErrNoPrice = errors.New("no source returned a usable price")

type fetcher struct {
	name string
	fn   func(context.Context, string) (*token.Info, error)
}

// FetchTokenInfo tries the per-address sources in fixed priority order and
// returns the first result carrying a price > 0. A source returning a token
// with a zero or missing price is skipped just like a failed one.
func (c *Client) FetchTokenInfo(ctx context.Context, address string) (*token.Info, error) {
	chain := []fetcher{
		{"birdeye", c.FetchBirdeyePrice},
		{"pumpfun", c.FetchPumpFunToken},
		{"solscan", c.FetchSolscanMeta},
		{"coingecko", c.FetchCoinGeckoToken},
	}

	for _, f := range chain {
		info, err := f.fn(ctx, address)
		if err != nil {
			log.Debug().Err(err).Str("source", f.name).Str("address", address).Msg("source had nothing to say")
			continue
		}
		if info.HasPrice() {
			return info, nil
		}
	}
	return nil, ErrNoPrice
}

// Price resolves a spot price through the aggregator chain with a direct
// Solscan fallback, mirroring the honey engine's two-step lookup. Returns
// 0 with an error when no price is obtainable.
func (c *Client) Price(ctx context.Context, address string) (float64, error) {
	if info, err := c.FetchTokenInfo(ctx, address); err == nil {
		return *info.Price, nil
	}
	if price, err := c.FetchSolscanPrice(ctx, address); err == nil {
		return price, nil
	}
	return 0, ErrNoPrice
}

// Trending returns the best-effort trending list: Birdeye first, pump.fun
// trending when Birdeye is empty or unavailable, the cached pump.fun coin
// list as the last resort. Never fails; degrades to empty.
func (c *Client) Trending(ctx context.Context) []token.Info {
	tokens, err := c.FetchTrendingBirdeye(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("birdeye trending unavailable")
	}
	if len(tokens) == 0 {
		tokens, err = c.FetchTrendingPumpFun(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("pump.fun trending unavailable")
		}
	}
	if len(tokens) == 0 {
		tokens = c.FetchPumpFunCoins(ctx)
	}
	return tokens
}
