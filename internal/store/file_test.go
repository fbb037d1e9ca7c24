package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"solana-honey-bot/internal/honey"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return Open(path), path
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, _ := tempStore(t)
	if s.Count() != 0 {
		t.Fatalf("expected empty store, got %d users", s.Count())
	}
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := Open(path)
	if s.Count() != 0 {
		t.Fatalf("corrupt file should yield empty store, got %d users", s.Count())
	}
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	s, path := tempStore(t)
	s.Update("42", func(u *User) {
		u.Wallet = "WaLLet"
		u.Secret = "c2VjcmV0"
		u.AddHistory("bought BONK")
	})

	reloaded := Open(path)
	u := reloaded.Get("42")
	if u == nil {
		t.Fatal("user lost across reload")
	}
	if u.Wallet != "WaLLet" || len(u.History) != 1 {
		t.Errorf("record not round-tripped: %+v", u)
	}
	if u.ActiveTrades != 1 {
		t.Errorf("new user default lost: %d", u.ActiveTrades)
	}
}

func TestHistoryCapDropsOldest(t *testing.T) {
	u := NewUser()
	for i := 0; i < maxHistory+10; i++ {
		u.AddHistory(fmt.Sprintf("entry %d", i))
	}
	if len(u.History) != maxHistory {
		t.Fatalf("history length %d, want %d", len(u.History), maxHistory)
	}
	if u.History[0] != "entry 10" {
		t.Errorf("oldest entries should drop first, head is %q", u.History[0])
	}
}

func TestAddHoneyTokenReplacesSameMint(t *testing.T) {
	u := NewUser()
	first, err := honey.NewToken("MintA", 0.1, []float64{5}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}
	second, err := honey.NewToken("MintA", 0.9, []float64{10}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}

	u.AddHoneyToken(first)
	u.AddHoneyToken(second)

	if len(u.HoneyTokens) != 1 {
		t.Fatalf("same mint should replace, got %d positions", len(u.HoneyTokens))
	}
	if u.HoneyTokens[0].BuyAmount != 0.9 {
		t.Errorf("replacement did not stick: %+v", u.HoneyTokens[0])
	}
}

func TestHoneyUsersFiltersUnarmedAccounts(t *testing.T) {
	s, _ := tempStore(t)

	tok, err := honey.NewToken("MintA", 0.1, []float64{5}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}
	s.Update("with-wallet", func(u *User) {
		u.Wallet = "W"
		u.Secret = "S"
		u.AddHoneyToken(tok)
	})
	s.Update("no-wallet", func(u *User) {
		t2, _ := honey.NewToken("MintB", 0.1, []float64{5}, []float64{100})
		u.AddHoneyToken(t2)
	})
	s.Update("no-tokens", func(u *User) {
		u.Wallet = "W"
		u.Secret = "S"
	})

	workload := s.HoneyUsers()
	if len(workload) != 1 || workload[0].ID != "with-wallet" {
		t.Fatalf("expected only the funded user, got %+v", workload)
	}
}

func TestPersistUserAppendsHistory(t *testing.T) {
	s, path := tempStore(t)
	s.PersistUser("7", nil, []string{"sold 30%", "sold 30%"})

	u := Open(path).Get("7")
	if u == nil || len(u.History) != 2 {
		t.Fatalf("history lines not persisted: %+v", u)
	}
}

func TestHoneyUsersReturnsIsolatedSnapshots(t *testing.T) {
	s, _ := tempStore(t)
	tok, err := honey.NewToken("MintA", 0.1, []float64{5}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}
	s.Update("9", func(u *User) {
		u.Wallet = "W"
		u.Secret = "S"
		u.AddHoneyToken(tok)
	})

	workload := s.HoneyUsers()
	snap := workload[0].Tokens[0]
	snap.Arm(0.002, "entry-tx")
	snap.MarkTriggered(0)

	// Nothing lands on the record until the cycle persists.
	if u := s.Get("9"); u.HoneyTokens[0].Armed() {
		t.Fatal("snapshot mutation leaked into the stored record")
	}

	s.PersistUser("9", workload[0].Tokens, []string{"stage fired"})

	u := s.Get("9")
	if !u.HoneyTokens[0].Armed() || !u.HoneyTokens[0].Triggered[0] {
		t.Fatalf("cycle results not merged back: %+v", u.HoneyTokens[0])
	}
	if len(u.History) != 1 {
		t.Errorf("history line not appended: %v", u.History)
	}
}

func TestPersistUserSkipsReconfiguredPosition(t *testing.T) {
	s, _ := tempStore(t)
	tok, err := honey.NewToken("MintA", 0.1, []float64{5}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}
	s.Update("9", func(u *User) {
		u.Wallet = "W"
		u.Secret = "S"
		u.AddHoneyToken(tok)
	})

	workload := s.HoneyUsers()
	workload[0].Tokens[0].Arm(0.002, "entry-tx")

	// The user replaces the position while the cycle is in flight.
	fresh, err := honey.NewToken("MintA", 0.5, []float64{10}, []float64{100})
	if err != nil {
		t.Fatal(err)
	}
	s.Update("9", func(u *User) { u.AddHoneyToken(fresh) })

	s.PersistUser("9", workload[0].Tokens, nil)

	u := s.Get("9")
	if u.HoneyTokens[0].BuyAmount != 0.5 || u.HoneyTokens[0].Armed() {
		t.Fatalf("stale cycle results clobbered the new setup: %+v", u.HoneyTokens[0])
	}
}

func TestConcurrentCycleAndHandlerAccess(t *testing.T) {
	s, _ := tempStore(t)
	tok, err := honey.NewToken("MintA", 0.1, []float64{5, 10}, []float64{50, 50})
	if err != nil {
		t.Fatal(err)
	}
	s.Update("9", func(u *User) {
		u.Wallet = "W"
		u.Secret = "S"
		u.AddHoneyToken(tok)
	})

	// An engine cycle mutating snapshots and persisting, racing handler
	// reads and writes over the same user.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			for _, up := range s.HoneyUsers() {
				for _, snap := range up.Tokens {
					snap.Arm(0.002, "entry-tx")
					snap.MarkTriggered(0)
				}
				s.PersistUser(up.ID, up.Tokens, []string{"stage fired"})
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Update("9", func(u *User) { u.Trades++ })
			if u := s.Get("9"); u != nil {
				_ = len(u.HoneyTokens)
			}
		}
	}()
	wg.Wait()

	u := s.Get("9")
	if u.Trades != 50 {
		t.Errorf("handler writes lost: %d", u.Trades)
	}
	if !u.HoneyTokens[0].Triggered[0] {
		t.Error("cycle results lost")
	}
}
