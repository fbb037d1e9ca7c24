package orca

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/market"
)

// ErrNoPool is returned when the router finds no route between the two
// mints, which for new launches usually means no pool exists yet.
var ErrNoPool = errors.New("no pool found for pair")

// DefaultSwapURL is the public swap-routing endpoint.
const DefaultSwapURL = "https://api.orca.so/v2/solana"

// SOLMint is the wrapped SOL mint address.
const SOLMint = "So11111111111111111111111111111111111111112"

// LamportsPerSOL converts between SOL and the chain's native unit.
const LamportsPerSOL = 1e9

// Client builds swap transactions through the Orca routing API. The flow is
// quote first, then exchange the quote for a serialized transaction the
// caller signs and submits.
type Client struct {
	baseURL     string
	slippageBps int
	clientPool  *market.HTTPClientPool
}

// NewClient creates a swap client. slippageBps bounds how far the executed
// price may drift from the quote.
func NewClient(baseURL string, slippageBps int, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultSwapURL
	}
	return &Client{
		baseURL:     baseURL,
		slippageBps: slippageBps,
		clientPool:  market.NewHTTPClientPool(4, timeout),
	}
}

// Quote is the routing API's answer for one swap.
type Quote struct {
	InputMint      string `json:"inputMint"`
	InAmount       string `json:"inAmount"`
	OutputMint     string `json:"outputMint"`
	OutAmount      string `json:"outAmount"`
	SlippageBps    int    `json:"slippageBps"`
	PriceImpactPct string `json:"priceImpactPct"`
}

type swapResponse struct {
	Transaction string `json:"transaction"`
}

// GetQuote fetches a route for swapping amountLamports of inputMint into
// outputMint.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amountLamports uint64) (*Quote, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/quote?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		c.baseURL, inputMint, outputMint, amountLamports, c.slippageBps)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.clientPool.Get().Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("quote failed (%d): %s", resp.StatusCode, string(body))
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if quote.OutAmount == "" || quote.OutAmount == "0" {
		return nil, ErrNoPool
	}

	log.Debug().
		Dur("latency", time.Since(start)).
		Str("outAmount", quote.OutAmount).
		Msg("orca quote")

	return &quote, nil
}

// GetSwapTransaction fetches a quote and exchanges it for an unsigned
// serialized transaction, base64-encoded, with userPubkey as fee payer.
func (c *Client) GetSwapTransaction(ctx context.Context, inputMint, outputMint, userPubkey string, amountLamports uint64) (string, error) {
	quote, err := c.GetQuote(ctx, inputMint, outputMint, amountLamports)
	if err != nil {
		return "", fmt.Errorf("get quote: %w", err)
	}

	reqBody := struct {
		Quote            *Quote `json:"quote"`
		UserPublicKey    string `json:"userPublicKey"`
		WrapAndUnwrapSol bool   `json:"wrapAndUnwrapSol"`
	}{
		Quote:            quote,
		UserPublicKey:    userPubkey,
		WrapAndUnwrapSol: true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.clientPool.Get().Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("swap failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var swapResp swapResponse
	if err := json.NewDecoder(resp.Body).Decode(&swapResp); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if swapResp.Transaction == "" {
		return "", fmt.Errorf("empty swap transaction")
	}

	log.Debug().
		Str("inputMint", inputMint).
		Str("outputMint", outputMint).
		Msg("orca swap tx built")

	return swapResp.Transaction, nil
}
