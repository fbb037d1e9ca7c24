package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthyWhenBothProbesPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	c := NewChecker(srv.URL, srv.URL, time.Hour)
	c.Start(context.Background())

	if !c.Healthy() {
		t.Fatalf("expected healthy, statuses: %+v", c.Statuses())
	}
	if got := len(c.Statuses()); got != 2 {
		t.Errorf("expected 2 probes, got %d", got)
	}
}

func TestUnreachableDependencyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	// port 1 refuses connections
	c := NewChecker("http://127.0.0.1:1", srv.URL, time.Hour)
	c.Start(context.Background())

	if c.Healthy() {
		t.Fatal("expected degraded")
	}
	for _, s := range c.Statuses() {
		if s.Name == "RPC" && s.Healthy {
			t.Error("RPC probe should have failed")
		}
		if s.Name == "Telegram" && !s.Healthy {
			t.Errorf("telegram probe should have passed: %s", s.Error)
		}
	}
}

func TestHealthyFalseBeforeFirstProbe(t *testing.T) {
	c := NewChecker("http://127.0.0.1:1", "http://127.0.0.1:1", time.Hour)
	if c.Healthy() {
		t.Fatal("no probes have run yet")
	}
}
