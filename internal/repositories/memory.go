package repositories

import (
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/rba/internal/shared"
)

// MemoryStore is an in-process key-value store.
//
// Quota bounds the total number of bytes held across keys; 0 means unlimited.
// Writes that would exceed it fail with [shared.ErrQuotaExceeded], mirroring browser storage limits.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	order  []string
	quota  int
	used   int
}

// NewMemoryStore creates an empty [MemoryStore] with the given byte quota.
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{values: map[string]string{}, quota: quota}
}

func (m *MemoryStore) Read(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, exists := m.values[key]
	used := m.used - len(old) + len(value)
	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("%w: %w: writing %s needs %d bytes, quota is %d", shared.ErrPersistence, shared.ErrQuotaExceeded, key, used, m.quota)
	}

	m.values[key] = value
	m.used = used
	if exists {
		m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
	}
	m.order = append(m.order, key)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.values[key]; ok {
		m.used -= len(old)
		delete(m.values, key)
		m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
	}
	return nil
}

// Keys lists stored keys ordered by most recent write first.
func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := slices.Clone(m.order)
	slices.Reverse(keys)
	return keys, nil
}

// Used returns the number of bytes currently held.
func (m *MemoryStore) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}
