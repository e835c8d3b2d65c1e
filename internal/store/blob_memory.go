package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memoryBlob is the in-process BlobStore used when no bucket is configured
// and throughout the test suites.
type memoryBlob struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBlob returns an empty in-memory BlobStore.
func NewMemoryBlob() BlobStore {
	return &memoryBlob{data: make(map[string][]byte)}
}

func (m *memoryBlob) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *memoryBlob) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *memoryBlob) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *memoryBlob) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0)
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
