package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthReflectsChecker(t *testing.T) {
	healthy := true
	s := NewServer("127.0.0.1", 0, func() Stats { return Stats{} }, func() bool { return healthy })

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthy server returned %d", resp.StatusCode)
	}

	healthy = false
	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("degraded server returned %d", resp.StatusCode)
	}
}

func TestStatsServesSnapshot(t *testing.T) {
	s := NewServer("127.0.0.1", 0, func() Stats {
		return Stats{Users: 3, ArmedPositions: 2, CachedTokens: 100, TotalTrades: 7, RPCLatencyMs: 42}
	}, nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/stats", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var snap Stats
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Users != 3 || snap.TotalTrades != 7 || snap.RPCLatencyMs != 42 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}
