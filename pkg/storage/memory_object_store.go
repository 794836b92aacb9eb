package storage

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

// MemoryObjectStore keeps objects in-process for tests and local runs.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte

	// Deleted records the keys passed to Delete, in order.
	Deleted []string
}

// NewMemoryObjectStore builds an in-memory object store whose public
// URLs are rooted at baseURL.
func NewMemoryObjectStore(baseURL string) *MemoryObjectStore {
	return &MemoryObjectStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// Put stores the object bytes.
func (m *MemoryObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

// PublicURL resolves a key under the configured base URL.
func (m *MemoryObjectStore) PublicURL(key string) string {
	return m.baseURL + "/" + key
}

// PresignGet returns the public URL; memory objects need no signing.
func (m *MemoryObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return m.PublicURL(key), nil
}

// Delete removes an object; absent keys are not an error.
func (m *MemoryObjectStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

// Get returns stored object bytes, for test assertions.
func (m *MemoryObjectStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len reports how many objects are stored.
func (m *MemoryObjectStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
