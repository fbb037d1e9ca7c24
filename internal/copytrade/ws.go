package copytrade

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSClient is a JSON-RPC subscription client over a Solana websocket node.
// One read loop dispatches both request responses and subscription
// notifications; writes are serialized behind a mutex as gorilla allows only
// one concurrent writer.
type WSClient struct {
	url  string
	conn *websocket.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	nextID   uint64
	pending  map[uint64]chan wsResult
	handlers map[uint64]func(json.RawMessage)

	done chan struct{}
}

// DialWS connects to the websocket endpoint and starts the read loop.
func DialWS(url string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &WSClient{
		url:      url,
		conn:     conn,
		pending:  make(map[uint64]chan wsResult),
		handlers: make(map[uint64]func(json.RawMessage)),
		done:     make(chan struct{}),
	}
	go c.readLoop()

	log.Info().Str("url", url).Msg("websocket connected")
	return c, nil
}

// wsResult carries one request's outcome from the read loop to its caller,
// so a node rejection surfaces immediately instead of as a timeout.
type wsResult struct {
	result json.RawMessage
	err    error
}

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Method string `json:"method,omitempty"`
	Params *struct {
		Subscription uint64          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params,omitempty"`
}

// LogsSubscribe subscribes to transaction logs mentioning address. The
// handler runs on the read loop; keep it short.
func (c *WSClient) LogsSubscribe(address string, handler func(json.RawMessage)) (uint64, error) {
	result, err := c.call("logsSubscribe", []any{
		map[string]any{"mentions": []string{address}},
		map[string]string{"commitment": "confirmed"},
	})
	if err != nil {
		return 0, err
	}

	var subID uint64
	if err := json.Unmarshal(result, &subID); err != nil {
		return 0, fmt.Errorf("parse subscription id: %w", err)
	}

	c.mu.Lock()
	c.handlers[subID] = handler
	c.mu.Unlock()

	log.Debug().Str("address", address).Uint64("subID", subID).Msg("logs subscription opened")
	return subID, nil
}

// Unsubscribe tears down a logs subscription.
func (c *WSClient) Unsubscribe(subID uint64) error {
	c.mu.Lock()
	delete(c.handlers, subID)
	c.mu.Unlock()

	_, err := c.call("logsUnsubscribe", []any{subID})
	return err
}

func (c *WSClient) call(method string, params []any) (json.RawMessage, error) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan wsResult, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := wsRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", method, err)
	}

	select {
	case res := <-ch:
		return res.result, res.err
	case <-time.After(15 * time.Second):
		return nil, fmt.Errorf("%s: response timeout", method)
	case <-c.done:
		return nil, fmt.Errorf("%s: connection closed", method)
	}
}

func (c *WSClient) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Warn().Err(err).Msg("websocket read failed")
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("websocket message unparsable")
			continue
		}

		switch {
		case msg.Params != nil:
			c.mu.Lock()
			handler := c.handlers[msg.Params.Subscription]
			c.mu.Unlock()
			if handler != nil {
				handler(msg.Params.Result)
			}

		case msg.ID != 0:
			c.mu.Lock()
			ch := c.pending[msg.ID]
			c.mu.Unlock()
			if ch != nil {
				if msg.Error != nil {
					ch <- wsResult{err: fmt.Errorf("rpc error %d: %s", msg.Error.Code, msg.Error.Message)}
					continue
				}
				ch <- wsResult{result: msg.Result}
			}
		}
	}
}

// Closed reports whether the read loop has exited.
func (c *WSClient) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Close shuts the connection down.
func (c *WSClient) Close() error {
	return c.conn.Close()
}
