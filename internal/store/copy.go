package store

// CopyTargets returns wallet address -> IDs of users copying that wallet.
func (s *FileStore) CopyTargets() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make(map[string][]string)
	for id, u := range s.users {
		for _, wallet := range u.CopiedWallets {
			targets[wallet] = append(targets[wallet], id)
		}
	}
	return targets
}
