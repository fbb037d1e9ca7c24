package storage

import (
	"database/sql"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Journal is the append-only record of every executed swap, per user. The
// user store keeps only the rolling history lines; the journal is the
// durable ledger queries and stats run against.
type Journal struct {
	db *sql.DB
}

// Entry is one executed swap.
type Entry struct {
	ID        int64
	UserID    string
	Mint      string
	Side      string // "BUY" or "SELL"
	AmountSol float64
	Price     float64
	TxSig     string
	Timestamp int64
}

// Sides of a journal entry.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OpenJournal opens (and if needed creates) the journal at path.
func OpenJournal(path string) (*Journal, error) {
	dsn := path
	if strings.Contains(path, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		mint TEXT NOT NULL,
		side TEXT NOT NULL,
		amount_sol REAL NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		tx_sig TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id, timestamp);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msg("trade journal opened")
	return &Journal{db: db}, nil
}

// Record appends an entry. Timestamp defaults to now when zero.
func (j *Journal) Record(e *Entry) error {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}
	_, err := j.db.Exec(`
		INSERT INTO trades (user_id, mint, side, amount_sol, price, tx_sig, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Mint, e.Side, e.AmountSol, e.Price, e.TxSig, e.Timestamp)
	return err
}

// RecentByUser returns the user's latest entries, newest first.
func (j *Journal) RecentByUser(userID string, limit int) ([]*Entry, error) {
	rows, err := j.db.Query(`
		SELECT id, user_id, mint, side, amount_sol, price, tx_sig, timestamp
		FROM trades WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mint, &e.Side, &e.AmountSol, &e.Price, &e.TxSig, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// UserStats aggregates a user's journal.
type UserStats struct {
	Trades    int
	Buys      int
	Sells     int
	VolumeSol float64
}

// Stats returns aggregate numbers for one user.
func (j *Journal) Stats(userID string) (*UserStats, error) {
	var s UserStats
	err := j.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN side = 'BUY' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN side = 'SELL' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(amount_sol), 0)
		FROM trades WHERE user_id = ?`, userID).
		Scan(&s.Trades, &s.Buys, &s.Sells, &s.VolumeSol)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TotalTrades counts all journal entries across users.
func (j *Journal) TotalTrades() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&n)
	return n, err
}

// Close closes the journal.
func (j *Journal) Close() error {
	return j.db.Close()
}
