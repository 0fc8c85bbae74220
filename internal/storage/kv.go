// Path: internal/storage/kv.go
package storage

import (
	"context"
	"sync"
)

// KV is a flat string key-value slot: the only durable state the
// application owns. Values are read whole and written whole.
type KV interface {
	// Get returns the stored value, or ok=false when the key was never written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// MemoryKV is an in-process KV, used for tests and the "memory" driver.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewMemoryKV creates an empty in-memory KV, optionally pre-seeded.
func NewMemoryKV(seed map[string]string) *MemoryKV {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &MemoryKV{values: values}
}

// Get implements the KV interface.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements the KV interface.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.writes++
	return nil
}

// Writes reports how many Set calls have been made.
func (m *MemoryKV) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
