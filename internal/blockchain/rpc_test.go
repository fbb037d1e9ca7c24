package blockchain

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func blockhashServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":{"blockhash":"HashAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}}}`))
	}))
}

func TestLatencyMsMeasuresRoundTrip(t *testing.T) {
	srv := blockhashServer(t)
	defer srv.Close()

	c := NewRPCClient(srv.URL, "")
	if ms := c.LatencyMs(); ms < 0 {
		t.Errorf("healthy node reported latency %d", ms)
	}
}

func TestLatencyMsNegativeOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "node down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL, srv.URL)
	if ms := c.LatencyMs(); ms != -1 {
		t.Errorf("unreachable node should report -1, got %d", ms)
	}
}
