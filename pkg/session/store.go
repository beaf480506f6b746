package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Store is the durable key-value store holding the session pointer.
//
// Get reports ok=false for a missing key. Any returned error means the store
// could not be reached and callers must treat the identity as unavailable.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Close() error
}

// MemoryStore is a process-local Store. Values do not survive a restart.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ Store = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	if s == nil {
		return "", false, errors.New("memory store: nil store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	if s == nil {
		return errors.New("memory store: nil store")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Close() error { return nil }
