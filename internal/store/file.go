package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Repository is the single owner of user records. Handlers and background
// engines read and mutate through it; nobody caches records across polls.
// Reads return snapshots; every mutation goes through Update so the stored
// records are only ever touched under the store lock.
type Repository interface {
	// Get returns a snapshot of the user record, or nil when the user is
	// unknown.
	Get(id string) *User
	// GetOrCreate returns a snapshot of the record, lazily creating it.
	GetOrCreate(id string) *User
	// Update runs fn against the record (created if missing) under the
	// store lock, then persists. A persistence failure is logged, not
	// returned: in-memory state always proceeds.
	Update(id string, fn func(*User))
	// All returns the user IDs in stable order.
	All() []string
	// Save persists the whole map synchronously.
	Save()
}

// FileStore is the flat-file JSON implementation: the whole map is read at
// startup and rewritten wholesale on every save. No partial writes, no
// cross-process locking; acceptable for a single-process bot.
type FileStore struct {
	path string

	mu    sync.Mutex
	users map[string]*User
}

// Open loads the user map from path. A missing or corrupt file yields an
// empty store, never an error: losing history beats refusing to start.
func Open(path string) *FileStore {
	s := &FileStore{
		path:  path,
		users: make(map[string]*User),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("user file unreadable, starting empty")
		}
		return s
	}

	if err := json.Unmarshal(raw, &s.users); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("user file corrupt, starting empty")
		s.users = make(map[string]*User)
	} else {
		log.Info().Int("users", len(s.users)).Str("path", path).Msg("user store loaded")
	}
	return s
}

func (s *FileStore) Get(id string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return u.clone()
}

func (s *FileStore) GetOrCreate(id string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id).clone()
}

func (s *FileStore) getOrCreateLocked(id string) *User {
	u, ok := s.users[id]
	if !ok {
		u = NewUser()
		s.users[id] = u
	}
	return u
}

func (s *FileStore) Update(id string, fn func(*User)) {
	s.mu.Lock()
	u := s.getOrCreateLocked(id)
	fn(u)
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("user", id).Msg("user store save failed, in-memory state proceeds")
	}
}

func (s *FileStore) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FileStore) Save() {
	s.mu.Lock()
	err := s.saveLocked()
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("user store save failed, in-memory state proceeds")
	}
}

func (s *FileStore) saveLocked() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Count returns the number of known users.
func (s *FileStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}
