package orca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetSwapTransactionRoundTrip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("slippageBps"); got != "300" {
			t.Errorf("slippageBps not forwarded, got %q", got)
		}
		fmt.Fprint(w, `{"inputMint":"SOL","inAmount":"1000000","outputMint":"MINT","outAmount":"420","slippageBps":300}`)
	})
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"transaction":"AQID"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 300, 5*time.Second)
	tx, err := c.GetSwapTransaction(context.Background(), "SOL", "MINT", "PubKey", 1_000_000)
	if err != nil {
		t.Fatalf("GetSwapTransaction: %v", err)
	}
	if tx != "AQID" {
		t.Errorf("unexpected transaction: %q", tx)
	}
}

func TestGetQuoteFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 300, 5*time.Second)
	if _, err := c.GetSwapTransaction(context.Background(), "SOL", "MINT", "PubKey", 1); err == nil {
		t.Fatal("expected error from failed quote")
	}
}

func TestMissingRouteReturnsErrNoPool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"outAmount":"0"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 300, 5*time.Second)
	_, err := c.GetQuote(context.Background(), "SOL", "MINT", 1)
	if !errors.Is(err, ErrNoPool) {
		t.Fatalf("expected ErrNoPool, got %v", err)
	}
}

func TestEmptySwapTransactionRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"outAmount":"1"}`)
	})
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 300, 5*time.Second)
	if _, err := c.GetSwapTransaction(context.Background(), "SOL", "MINT", "PubKey", 1); err == nil {
		t.Fatal("empty transaction must be an error")
	}
}
