package storage

import (
	"path/filepath"
	"testing"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)

	entries := []*Entry{
		{UserID: "u1", Mint: "MintA", Side: SideBuy, AmountSol: 0.5, Price: 0.001, TxSig: "sig1", Timestamp: 100},
		{UserID: "u1", Mint: "MintA", Side: SideSell, AmountSol: 0.15, Price: 0.0011, TxSig: "sig2", Timestamp: 200},
		{UserID: "u2", Mint: "MintB", Side: SideBuy, AmountSol: 1.0, Price: 2, TxSig: "sig3", Timestamp: 150},
	}
	for _, e := range entries {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := j.RecentByUser("u1", 10)
	if err != nil {
		t.Fatalf("RecentByUser: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries for u1, got %d", len(recent))
	}
	if recent[0].TxSig != "sig2" {
		t.Errorf("newest first expected, got %q", recent[0].TxSig)
	}
}

func TestStatsPerUser(t *testing.T) {
	j := openTestJournal(t)

	j.Record(&Entry{UserID: "u1", Mint: "M", Side: SideBuy, AmountSol: 0.5, TxSig: "a"})
	j.Record(&Entry{UserID: "u1", Mint: "M", Side: SideSell, AmountSol: 0.2, TxSig: "b"})
	j.Record(&Entry{UserID: "u2", Mint: "M", Side: SideBuy, AmountSol: 9, TxSig: "c"})

	s, err := j.Stats("u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Trades != 2 || s.Buys != 1 || s.Sells != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if s.VolumeSol != 0.7 {
		t.Errorf("volume %v, want 0.7", s.VolumeSol)
	}

	total, err := j.TotalTrades()
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total trades %d, want 3", total)
	}
}

func TestStatsEmptyUser(t *testing.T) {
	j := openTestJournal(t)
	s, err := j.Stats("ghost")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Trades != 0 || s.VolumeSol != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}
