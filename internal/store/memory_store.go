package store

import (
	"context"
	"sync"

	"hubrr/internal/domain"
)

// MemoryStore is a KeyStore that lives only as long as the process.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{m: make(map[string][]byte)} }

func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[name] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) PutIfAbsent(_ context.Context, name string, value []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[name]; ok {
		return append([]byte(nil), v...), nil
	}
	s.m[name] = append([]byte(nil), value...)
	return append([]byte(nil), value...), nil
}

var _ domain.KeyStore = (*MemoryStore)(nil)
