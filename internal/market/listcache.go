package market

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/token"
)

// ListCache serves the merged discovery list (GitHub registry + CoinGecko
// Solana coins) with a TTL so every /tokens command does not hammer two
// list endpoints. Refresh is lazy: the first caller past the TTL pays for
// the fetch, everyone else gets the cached list.
type ListCache struct {
	client *Client
	ttl    time.Duration

	mu      sync.Mutex
	tokens  []token.Info
	fetched time.Time
}

// NewListCache creates a list cache over the given client.
func NewListCache(client *Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

// Get returns the merged token list, refreshing when stale. A refresh in
// which both sources fail keeps serving the previous list.
func (l *ListCache) Get(ctx context.Context) []token.Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tokens) > 0 && time.Since(l.fetched) < l.ttl {
		return l.tokens
	}

	github, err := l.client.FetchGitHubTokenList(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("github token list unavailable")
	}
	gecko, err := l.client.FetchCoinGeckoSolanaList(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("coingecko solana list unavailable")
	}

	merged := token.MergeLists(github, gecko)
	if len(merged) == 0 {
		return l.tokens
	}

	l.tokens = merged
	l.fetched = time.Now()
	log.Debug().Int("tokens", len(merged)).Msg("token list cache refreshed")
	return l.tokens
}

// Size returns the number of cached tokens.
func (l *ListCache) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tokens)
}
