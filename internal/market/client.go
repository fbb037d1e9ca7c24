package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
)

// Default public endpoints. Overridable for tests and self-hosted mirrors.
const (
	DefaultBirdeyeURL   = "https://public-api.birdeye.so"
	DefaultPumpFunURL   = "https://api.pump.fun"
	DefaultPumpCoinsURL = "https://pump.fun"
	DefaultSolscanURL   = "https://public-api.solscan.io"
	DefaultCoinGeckoURL = "https://api.coingecko.com"
	DefaultTokenListURL = "https://raw.githubusercontent.com/solana-labs/token-list/main/src/tokens/solana.tokenlist.json"
)

// ErrNoData marks a source that answered but had nothing usable to say.
// Callers treat it the same as a network failure: log and move on.
var ErrNoData = errors.New("source returned no data")

// Endpoints holds the base URLs of every market-data source.
type Endpoints struct {
	Birdeye   string
	PumpFun   string
	PumpCoins string
	Solscan   string
	CoinGecko string
	TokenList string
}

// DefaultEndpoints returns the public production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Birdeye:   DefaultBirdeyeURL,
		PumpFun:   DefaultPumpFunURL,
		PumpCoins: DefaultPumpCoinsURL,
		Solscan:   DefaultSolscanURL,
		CoinGecko: DefaultCoinGeckoURL,
		TokenList: DefaultTokenListURL,
	}
}

// Client calls the token-discovery and price APIs with HTTP/2 pooling.
// Every fetcher degrades to a nil/empty result plus an error for the log
// line; none of them is allowed to take a poll cycle down.
type Client struct {
	endpoints  Endpoints
	clientPool *HTTPClientPool
	birdeyeKey string

	// pump.fun coin list cache (the endpoint rate-limits aggressively)
	coinsMu      sync.Mutex
	coinsCache   []cachedCoin
	coinsFetched time.Time
	coinsTTL     time.Duration
}

// HTTPClientPool provides HTTP/2 connection pooling across fetch loops.
type HTTPClientPool struct {
	clients []*http.Client
	mu      sync.Mutex
	idx     uint32
}

// NewHTTPClientPool creates an HTTP/2 optimized client pool.
func NewHTTPClientPool(size int, timeout time.Duration) *HTTPClientPool {
	pool := &HTTPClientPool{
		clients: make([]*http.Client, size),
	}

	for i := 0; i < size; i++ {
		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}

		http2.ConfigureTransport(transport)

		pool.clients[i] = &http.Client{
			Transport: transport,
			Timeout:   timeout,
		}
	}

	log.Debug().Int("poolSize", size).Msg("market HTTP client pool initialized")
	return pool
}

func (p *HTTPClientPool) Get() *http.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	client := p.clients[p.idx%uint32(len(p.clients))]
	p.idx++
	return client
}

// NewClient creates a market-data client with the given endpoints.
func NewClient(endpoints Endpoints, timeout time.Duration) *Client {
	return &Client{
		endpoints:  endpoints,
		clientPool: NewHTTPClientPool(4, timeout),
		coinsTTL:   time.Minute,
	}
}

// SetBirdeyeKey sets the Birdeye API key. Public endpoints accept an
// empty key with tighter rate limits.
func (c *Client) SetBirdeyeKey(key string) {
	c.birdeyeKey = key
}

// getJSON performs a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := c.clientPool.Get()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
