package copytrade

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"
)

type fakeWS struct {
	nextID   uint64
	handlers map[uint64]func(json.RawMessage)
	byWallet map[string]uint64
	subErr   error
	unsubbed []uint64
}

func newFakeWS() *fakeWS {
	return &fakeWS{
		handlers: make(map[uint64]func(json.RawMessage)),
		byWallet: make(map[string]uint64),
	}
}

func (f *fakeWS) LogsSubscribe(address string, handler func(json.RawMessage)) (uint64, error) {
	if f.subErr != nil {
		return 0, f.subErr
	}
	f.nextID++
	f.handlers[f.nextID] = handler
	f.byWallet[address] = f.nextID
	return f.nextID, nil
}

func (f *fakeWS) Unsubscribe(subID uint64) error {
	delete(f.handlers, subID)
	f.unsubbed = append(f.unsubbed, subID)
	return nil
}

func (f *fakeWS) emit(wallet string, payload string) {
	if h, ok := f.handlers[f.byWallet[wallet]]; ok {
		h(json.RawMessage(payload))
	}
}

type fakeUsers struct {
	targets   map[string][]string
	persisted map[string][]string
}

func (f *fakeUsers) CopyTargets() map[string][]string { return f.targets }

func (f *fakeUsers) AppendHistory(id string, lines []string) {
	if f.persisted == nil {
		f.persisted = make(map[string][]string)
	}
	f.persisted[id] = append(f.persisted[id], lines...)
}

type fakeNotify struct {
	byUser map[string][]string
}

func (f *fakeNotify) Notify(userID, text string) {
	if f.byUser == nil {
		f.byUser = make(map[string][]string)
	}
	f.byUser[userID] = append(f.byUser[userID], text)
}

func TestSyncSubscribesAndUnsubscribes(t *testing.T) {
	ws := newFakeWS()
	users := &fakeUsers{targets: map[string][]string{"W1": {"u1"}, "W2": {"u2"}}}
	m := NewMonitor(ws, users, &fakeNotify{})

	m.Sync()
	got := m.Subscribed()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "W1" || got[1] != "W2" {
		t.Fatalf("expected W1,W2 subscribed, got %v", got)
	}

	// u2 stops copying W2
	users.targets = map[string][]string{"W1": {"u1"}}
	m.Sync()
	if got := m.Subscribed(); len(got) != 1 || got[0] != "W1" {
		t.Fatalf("expected only W1 after resync, got %v", got)
	}
	if len(ws.unsubbed) != 1 {
		t.Errorf("expected one unsubscribe call, got %v", ws.unsubbed)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	ws := newFakeWS()
	users := &fakeUsers{targets: map[string][]string{"W1": {"u1"}}}
	m := NewMonitor(ws, users, &fakeNotify{})

	m.Sync()
	m.Sync()
	if ws.nextID != 1 {
		t.Fatalf("wallet subscribed %d times, want once", ws.nextID)
	}
}

func TestActivityFansOutToWatchers(t *testing.T) {
	ws := newFakeWS()
	users := &fakeUsers{targets: map[string][]string{"W1": {"u1", "u2"}}}
	notify := &fakeNotify{}
	m := NewMonitor(ws, users, notify)
	m.Sync()

	ws.emit("W1", `{"value":{"signature":"sig123","err":null}}`)

	for _, id := range []string{"u1", "u2"} {
		if len(notify.byUser[id]) != 1 {
			t.Errorf("user %s not notified: %v", id, notify.byUser[id])
		}
		if len(users.persisted[id]) != 1 {
			t.Errorf("user %s history not written: %v", id, users.persisted[id])
		}
	}
}

func TestFailedTransactionsIgnored(t *testing.T) {
	ws := newFakeWS()
	users := &fakeUsers{targets: map[string][]string{"W1": {"u1"}}}
	notify := &fakeNotify{}
	m := NewMonitor(ws, users, notify)
	m.Sync()

	ws.emit("W1", `{"value":{"signature":"sigX","err":{"InstructionError":[0,"Custom"]}}}`)

	if len(notify.byUser) != 0 {
		t.Errorf("failed tx must not notify: %v", notify.byUser)
	}
}

func TestSubscribeFailureRetriedNextSync(t *testing.T) {
	ws := newFakeWS()
	ws.subErr = errors.New("ws down")
	users := &fakeUsers{targets: map[string][]string{"W1": {"u1"}}}
	m := NewMonitor(ws, users, &fakeNotify{})

	m.Sync()
	if len(m.Subscribed()) != 0 {
		t.Fatal("failed subscribe must not be recorded")
	}

	ws.subErr = nil
	m.Sync()
	if got := m.Subscribed(); len(got) != 1 {
		t.Fatalf("expected retry to succeed, got %v", got)
	}
}
