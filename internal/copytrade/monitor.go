package copytrade

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Subscriber is the slice of the websocket client the monitor needs.
type Subscriber interface {
	LogsSubscribe(address string, handler func(json.RawMessage)) (uint64, error)
	Unsubscribe(subID uint64) error
}

// Users maps copied wallets to the users watching them.
type Users interface {
	// CopyTargets returns wallet address -> IDs of users copying it.
	CopyTargets() map[string][]string
	AppendHistory(id string, lines []string)
}

// Notifier pushes activity alerts to users.
type Notifier interface {
	Notify(userID, text string)
}

// Monitor keeps one logs subscription per copied wallet and fans activity
// out to every user watching that wallet. A periodic sync reconciles the
// subscription set against the store, so /copy_trade changes take effect
// within one tick.
type Monitor struct {
	ws     Subscriber
	users  Users
	notify Notifier

	mu   sync.Mutex
	subs map[string]uint64
}

// NewMonitor wires the copy-trade monitor.
func NewMonitor(ws Subscriber, users Users, notify Notifier) *Monitor {
	return &Monitor{
		ws:     ws,
		users:  users,
		notify: notify,
		subs:   make(map[string]uint64),
	}
}

// Start syncs immediately, then on every tick until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	log.Info().Dur("interval", interval).Msg("copy-trade monitor started")
	m.Sync()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("copy-trade monitor stopped")
			return
		case <-ticker.C:
			m.Sync()
		}
	}
}

// Sync reconciles active subscriptions with the wallets users copy now.
func (m *Monitor) Sync() {
	wanted := m.users.CopyTargets()

	m.mu.Lock()
	defer m.mu.Unlock()

	for wallet := range wanted {
		if _, ok := m.subs[wallet]; ok {
			continue
		}
		w := wallet
		subID, err := m.ws.LogsSubscribe(w, func(data json.RawMessage) {
			m.handleActivity(w, data)
		})
		if err != nil {
			log.Warn().Err(err).Str("wallet", w).Msg("copy-trade subscribe failed")
			continue
		}
		m.subs[w] = subID
	}

	for wallet, subID := range m.subs {
		if _, ok := wanted[wallet]; ok {
			continue
		}
		if err := m.ws.Unsubscribe(subID); err != nil {
			log.Warn().Err(err).Str("wallet", wallet).Msg("copy-trade unsubscribe failed")
		}
		delete(m.subs, wallet)
	}
}

// Subscribed returns the wallets currently under watch.
func (m *Monitor) Subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	wallets := make([]string, 0, len(m.subs))
	for w := range m.subs {
		wallets = append(wallets, w)
	}
	return wallets
}

func (m *Monitor) handleActivity(wallet string, raw json.RawMessage) {
	var note struct {
		Value struct {
			Signature string `json:"signature"`
			Err       any    `json:"err"`
		} `json:"value"`
	}
	if err := json.Unmarshal(raw, &note); err != nil {
		log.Warn().Err(err).Str("wallet", wallet).Msg("copy-trade notification unparsable")
		return
	}
	if note.Value.Err != nil {
		// Failed transactions are noise, not signals.
		return
	}

	log.Debug().Str("wallet", wallet).Str("tx", note.Value.Signature).Msg("copied wallet activity")

	watchers := m.users.CopyTargets()[wallet]
	line := fmt.Sprintf("Copied wallet %s: tx %s", wallet, note.Value.Signature)
	for _, userID := range watchers {
		m.notify.Notify(userID, fmt.Sprintf("👀 Activity on copied wallet %s\nTx: %s", wallet, note.Value.Signature))
		m.users.AppendHistory(userID, []string{line})
	}
}
