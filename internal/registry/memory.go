package registry

import (
	"context"
	"sync"

	"hubrr/internal/directory"
)

// Memory keeps bundles in process memory.
type Memory struct {
	mu      sync.RWMutex
	bundles map[string]directory.BundleDTO
}

func NewMemory() *Memory {
	return &Memory{bundles: make(map[string]directory.BundleDTO)}
}

func (m *Memory) Put(_ context.Context, owner string, b directory.BundleDTO) error {
	b.OneTimePreKeys = append([]string(nil), b.OneTimePreKeys...)
	m.mu.Lock()
	m.bundles[owner] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, owner string) (directory.BundleDTO, bool, error) {
	m.mu.RLock()
	b, ok := m.bundles[owner]
	m.mu.RUnlock()
	if ok {
		b.OneTimePreKeys = append([]string(nil), b.OneTimePreKeys...)
	}
	return b, ok, nil
}

var _ Registry = (*Memory)(nil)
