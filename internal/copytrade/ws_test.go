package copytrade

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsServer upgrades each connection and answers every request through reply.
func wsServer(t *testing.T, reply func(req wsRequest) any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var req wsRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(reply(req)); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestLogsSubscribeReturnsSubscriptionID(t *testing.T) {
	srv := wsServer(t, func(req wsRequest) any {
		return map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": 77}
	})
	defer srv.Close()

	c, err := DialWS(wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	subID, err := c.LogsSubscribe("SomeWallet", func(json.RawMessage) {})
	if err != nil {
		t.Fatal(err)
	}
	if subID != 77 {
		t.Errorf("subscription id %d, want 77", subID)
	}
}

func TestRejectedRequestFailsFast(t *testing.T) {
	srv := wsServer(t, func(req wsRequest) any {
		return map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32602, "message": "invalid params"},
		}
	})
	defer srv.Close()

	c, err := DialWS(wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	start := time.Now()
	_, err = c.LogsSubscribe("SomeWallet", func(json.RawMessage) {})
	if err == nil {
		t.Fatal("node rejection must surface as an error")
	}
	if !strings.Contains(err.Error(), "invalid params") {
		t.Errorf("error should carry the node's message, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("rejection took %v, should return without waiting out the timeout", elapsed)
	}
}

func TestNotificationsDispatchToHandler(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": 5})
		conn.WriteJSON(map[string]any{
			"jsonrpc": "2.0",
			"method":  "logsNotification",
			"params": map[string]any{
				"subscription": 5,
				"result":       map[string]any{"value": map[string]any{"signature": "sig1"}},
			},
		})
		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c, err := DialWS(wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	got := make(chan json.RawMessage, 1)
	if _, err := c.LogsSubscribe("SomeWallet", func(data json.RawMessage) {
		got <- data
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case data := <-got:
		if !strings.Contains(string(data), "sig1") {
			t.Errorf("handler got unexpected payload: %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification never reached the handler")
	}
}
