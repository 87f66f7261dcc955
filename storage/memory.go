package storage

import (
	"sort"
	"sync"

	"id5multiplexing/interfaces"
)

var _ interfaces.StorageApi = (*MemoryStorage)(nil)

// MemoryStorage is an in-memory StorageApi, the per-origin storage of one window.
type MemoryStorage struct {
	mu       sync.RWMutex
	items    map[string]string
	disabled bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disabled {
		return "", ErrStorageDisabled
	}
	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) SetItem(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return ErrStorageDisabled
	}
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return ErrStorageDisabled
	}
	delete(m.items, key)
	return nil
}

// SetDisabled makes every later call fail with ErrStorageDisabled.
func (m *MemoryStorage) SetDisabled(disabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = disabled
}

// Keys returns the stored keys in ascending order.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
