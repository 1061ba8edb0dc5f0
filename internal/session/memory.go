package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. It backs tests and single
// instance dev runs; deployments use the redis store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Data{}}
}

func (s *MemoryStore) Get(ctx context.Context, token string) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	copied := data
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, token string, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = *data
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
