package settings

import (
	"context"
	"sync"
)

// MemoryBackend is a volatile Backend for tests and SETTINGS_BACKEND=memory.
// Setting SaveErr or LoadErr makes every subsequent call fail with it.
type MemoryBackend struct {
	mu      sync.Mutex
	values  map[string]int
	saves   int
	SaveErr error
	LoadErr error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]int)}
}

func (m *MemoryBackend) Load(_ context.Context, name string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return 0, false, m.LoadErr
	}
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *MemoryBackend) Save(_ context.Context, name string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[name] = value
	m.saves++
	return nil
}

// Saves reports how many writes have succeeded.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
