package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testClient builds a client whose every endpoint points at the test server.
func testClient(srv *httptest.Server) *Client {
	return NewClient(Endpoints{
		Birdeye:   srv.URL,
		PumpFun:   srv.URL,
		PumpCoins: srv.URL,
		Solscan:   srv.URL,
		CoinGecko: srv.URL,
		TokenList: srv.URL + "/tokenlist",
	}, 5*time.Second)
}

func TestFetchTokenInfoSkipsZeroPrice(t *testing.T) {
	// Birdeye answers with a zero price, pump.fun with a real one. The
	// aggregator must fall through to the lower-priority source.
	mux := http.NewServeMux()
	mux.HandleFunc("/public/price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"value":0}}`)
	})
	mux.HandleFunc("/api/v1/token/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"address":"MINT1111111111111111111111111111111111111","symbol":"TST","price":5}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	info, err := c.FetchTokenInfo(context.Background(), "MINT1111111111111111111111111111111111111")
	if err != nil {
		t.Fatalf("FetchTokenInfo failed: %v", err)
	}
	if info.Price == nil || *info.Price != 5 {
		t.Errorf("expected pump.fun price 5, got %+v", info.Price)
	}
	if info.Symbol != "TST" {
		t.Errorf("expected pump.fun symbol, got %q", info.Symbol)
	}
}

func TestFetchTokenInfoAllSourcesFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	if _, err := c.FetchTokenInfo(context.Background(), "MINT"); err != ErrNoPrice {
		t.Errorf("expected ErrNoPrice, got %v", err)
	}
}

func TestPriceSolscanFallback(t *testing.T) {
	// Every per-address source fails except Solscan's meta endpoint, which
	// only the direct fallback consults after the chain has given up.
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/public/price", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	mux.HandleFunc("/api/v1/token/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	mux.HandleFunc("/token/meta", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// chain pass: no price yet
			fmt.Fprint(w, `{"tokenAddress":"MINT","symbol":"TST"}`)
			return
		}
		fmt.Fprint(w, `{"tokenAddress":"MINT","symbol":"TST","priceUsdt":"1.25"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	price, err := c.Price(context.Background(), "MINT")
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	if price != 1.25 {
		t.Errorf("expected 1.25 from solscan fallback, got %v", price)
	}
}

func TestFetchSolscanMetaParsesFormattedNumbers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token/meta", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tokenAddress":"MINT","symbol":"TST","volume24h":"1,234,567","holderCount":321,"priceUsdt":"$0.42"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	info, err := c.FetchSolscanMeta(context.Background(), "MINT")
	if err != nil {
		t.Fatalf("FetchSolscanMeta failed: %v", err)
	}
	if info.Volume == nil || *info.Volume != 1234567 {
		t.Errorf("volume not parsed from formatted string: %+v", info.Volume)
	}
	if info.Holders == nil || *info.Holders != 321 {
		t.Errorf("holders not parsed: %+v", info.Holders)
	}
	if info.Price == nil || *info.Price != 0.42 {
		t.Errorf("price not parsed from currency string: %+v", info.Price)
	}
}

func TestTrendingFallsBackToPumpFun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/public/tokenlist", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"tokens":[]}}`)
	})
	mux.HandleFunc("/api/v1/tokens/trending", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tokens":[{"address":"A","symbol":"AAA","volume":9}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := testClient(srv)
	tokens := c.Trending(context.Background())
	if len(tokens) != 1 || tokens[0].Symbol != "AAA" {
		t.Fatalf("expected pump.fun fallback list, got %+v", tokens)
	}
}

func TestListCacheMergesAndCaches(t *testing.T) {
	githubCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/tokenlist", func(w http.ResponseWriter, r *http.Request) {
		githubCalls++
		fmt.Fprint(w, `{"tokens":[{"address":"X","symbol":"GH"}]}`)
	})
	mux.HandleFunc("/api/v3/coins/list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"x","symbol":"cg","platforms":{"solana":"X"}},{"id":"y","symbol":"y","platforms":{"solana":"Y"}},{"id":"e","symbol":"e","platforms":{"ethereum":"0xdead"}}]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache := NewListCache(testClient(srv), time.Minute)
	tokens := cache.Get(context.Background())
	if len(tokens) != 2 {
		t.Fatalf("expected 2 merged tokens, got %d", len(tokens))
	}
	// GitHub entry wins the duplicate address
	if tokens[0].Address != "X" || tokens[0].Symbol != "GH" {
		t.Errorf("first-seen github entry must win: %+v", tokens[0])
	}

	cache.Get(context.Background())
	if githubCalls != 1 {
		t.Errorf("expected cached second read, github fetched %d times", githubCalls)
	}
}
