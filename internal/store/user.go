package store

import (
	"time"

	"solana-honey-bot/internal/honey"
	"solana-honey-bot/internal/token"
)

// maxHistory bounds the per-user activity log; oldest entries drop first.
const maxHistory = 100

// User is one Telegram user's record. Created lazily on first interaction,
// mutated by nearly every command, never deleted.
type User struct {
	Wallet        string          `json:"wallet,omitempty"`
	Secret        string          `json:"secret,omitempty"`
	Trades        int             `json:"trades"`
	ActiveTrades  int             `json:"activeTrades"`
	History       []string        `json:"history,omitempty"`
	Referrer      string          `json:"referrer,omitempty"`
	Referrals     []string        `json:"referrals,omitempty"`
	Strategy      *token.Strategy `json:"strategy,omitempty"`
	HoneyTokens   []*honey.Token  `json:"honeyTokens,omitempty"`
	CopiedWallets []string        `json:"copiedWallets,omitempty"`
	LastTokenList []token.Info    `json:"lastTokenList,omitempty"`
	LastMessageAt int64           `json:"lastMessageAt,omitempty"`
}

// NewUser returns a fresh user record.
func NewUser() *User {
	return &User{ActiveTrades: 1}
}

// clone deep-copies the record. Reads get clones so no goroutine ever holds
// memory another one mutates under the store lock.
func (u *User) clone() *User {
	c := *u
	c.History = append([]string(nil), u.History...)
	c.Referrals = append([]string(nil), u.Referrals...)
	c.CopiedWallets = append([]string(nil), u.CopiedWallets...)
	c.LastTokenList = append([]token.Info(nil), u.LastTokenList...)
	if u.Strategy != nil {
		s := *u.Strategy
		c.Strategy = &s
	}
	if u.HoneyTokens != nil {
		c.HoneyTokens = make([]*honey.Token, len(u.HoneyTokens))
		for i, t := range u.HoneyTokens {
			c.HoneyTokens[i] = t.Clone()
		}
	}
	return &c
}

// HasWallet reports whether the user can sign trades.
func (u *User) HasWallet() bool {
	return u != nil && u.Wallet != "" && u.Secret != ""
}

// AddHistory appends an activity line, dropping the oldest past the cap.
func (u *User) AddHistory(entry string) {
	u.History = append(u.History, entry)
	if len(u.History) > maxHistory {
		u.History = u.History[len(u.History)-maxHistory:]
	}
}

// TouchMessage records when the user last sent free text (spam gate).
func (u *User) TouchMessage(now time.Time) {
	u.LastMessageAt = now.UnixMilli()
}

// HoneyToken returns the user's honey position for a mint, or nil.
func (u *User) HoneyToken(address string) *honey.Token {
	for _, h := range u.HoneyTokens {
		if h.Address == address {
			return h
		}
	}
	return nil
}

// AddHoneyToken registers a staged-exit position, replacing any existing
// position on the same mint.
func (u *User) AddHoneyToken(h *honey.Token) {
	for i, existing := range u.HoneyTokens {
		if existing.Address == h.Address {
			u.HoneyTokens[i] = h
			return
		}
	}
	u.HoneyTokens = append(u.HoneyTokens, h)
}
