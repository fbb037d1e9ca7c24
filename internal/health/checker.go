package health

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Status is the health of one dependency.
type Status struct {
	Name    string
	Healthy bool
	Latency time.Duration
	Error   string
}

// Checker periodically probes the services the bot cannot run without: the
// Solana RPC node and the Telegram API.
type Checker struct {
	rpcURL      string
	telegramURL string
	interval    time.Duration
	client      *http.Client

	mu       sync.RWMutex
	statuses []Status
}

// NewChecker creates a health checker over the given endpoints.
func NewChecker(rpcURL, telegramURL string, interval time.Duration) *Checker {
	return &Checker{
		rpcURL:      rpcURL,
		telegramURL: telegramURL,
		interval:    interval,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Start begins periodic checks; the first runs immediately.
func (c *Checker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.check()
			}
		}
	}()

	c.check()
}

func (c *Checker) check() {
	statuses := []Status{
		c.checkRPC(),
		c.checkTelegram(),
	}

	for _, s := range statuses {
		if !s.Healthy {
			log.Warn().Str("component", s.Name).Str("error", s.Error).Msg("health probe failed")
		}
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

func (c *Checker) checkRPC() Status {
	start := time.Now()

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"getHealth"}`)
	req, err := http.NewRequest(http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err == nil {
		req.Header.Set("Content-Type", "application/json")
		var resp *http.Response
		resp, err = c.client.Do(req)
		if resp != nil {
			resp.Body.Close()
		}
	}

	status := Status{
		Name:    "RPC",
		Latency: time.Since(start),
		Healthy: err == nil,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

func (c *Checker) checkTelegram() Status {
	start := time.Now()

	resp, err := c.client.Get(c.telegramURL)
	if resp != nil {
		resp.Body.Close()
	}

	status := Status{
		Name:    "Telegram",
		Latency: time.Since(start),
		Healthy: err == nil,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

// Statuses returns the latest probe results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statuses
}

// Healthy reports whether every probe passed its last run.
func (c *Checker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return len(c.statuses) > 0
}
