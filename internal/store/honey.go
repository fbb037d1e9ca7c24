package store

import (
	"solana-honey-bot/internal/honey"
)

// HoneyUsers snapshots the monitoring workload: every user holding a wallet
// and at least one live staged-exit position. Tokens are deep copies, so the
// engine's goroutine never shares memory with records the store serializes
// or handlers read; results come back through PersistUser.
func (s *FileStore) HoneyUsers() []honey.UserPositions {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []honey.UserPositions
	for id, u := range s.users {
		if !u.HasWallet() || len(u.HoneyTokens) == 0 {
			continue
		}
		tokens := make([]*honey.Token, len(u.HoneyTokens))
		for i, t := range u.HoneyTokens {
			tokens[i] = t.Clone()
		}
		out = append(out, honey.UserPositions{
			ID:     id,
			Secret: u.Secret,
			Tokens: tokens,
		})
	}
	return out
}

// PersistUser merges a cycle's results back into the record under the store
// lock: each snapshot replaces the stored position with the same setup, and
// the history lines are appended. A position the user reconfigured while the
// cycle ran no longer matches its snapshot and is left alone.
func (s *FileStore) PersistUser(id string, tokens []*honey.Token, history []string) {
	s.Update(id, func(u *User) {
		for _, snap := range tokens {
			for i, cur := range u.HoneyTokens {
				if cur.SameSetup(snap) {
					u.HoneyTokens[i] = snap
					break
				}
			}
		}
		for _, line := range history {
			u.AddHistory(line)
		}
	})
}

// AppendHistory adds activity lines to a user's log and persists.
func (s *FileStore) AppendHistory(id string, lines []string) {
	s.Update(id, func(u *User) {
		for _, line := range lines {
			u.AddHistory(line)
		}
	})
}
