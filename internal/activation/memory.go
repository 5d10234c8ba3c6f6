package activation

import (
	"context"
	"sync"
)

// MemoryStore backs handler tests and single-node development setups where
// Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]Code
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]Code)}
}

func (s *MemoryStore) Put(_ context.Context, code Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Username] = code
	return nil
}

func (s *MemoryStore) Get(_ context.Context, username string) (Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[username]
	if !ok {
		return Code{}, ErrNotFound
	}
	return code, nil
}

func (s *MemoryStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, username)
	return nil
}
