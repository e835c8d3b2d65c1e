package store

import (
	"context"
	"sync"
)

// memoryKV is the in-process KeyValueStore used when no DSN is configured
// and throughout the test suites. A single mutex is enough: the map is the
// unit of single-key atomicity the interface promises.
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryKV returns an empty in-memory KeyValueStore.
func NewMemoryKV() KeyValueStore {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memoryKV) Put(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

func (m *memoryKV) PutIfAbsent(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; ok {
		return ErrKeyExists
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
