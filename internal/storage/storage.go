// Package storage persists store snapshots. Each store serializes its whole
// state as one JSON document under a fixed namespace string; backends only
// move bytes and know nothing about the schema.
package storage

import "sync"

// Snapshot namespaces used by the services.
const (
	NamespaceCharacters = "vietrp-characters"
	NamespaceChats      = "vietrp-chats"
	NamespaceSettings   = "vietrp-settings"
)

// Backend loads and saves namespaced snapshots. Load returns (nil, nil) for
// a namespace that has never been saved.
type Backend interface {
	Load(namespace string) ([]byte, error)
	Save(namespace string, data []byte) error
}

// Memory is an in-process Backend, used by tests and as a no-persistence
// fallback.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load returns the stored snapshot for the namespace, or nil.
func (m *Memory) Load(namespace string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[namespace]
	if !ok {
		return nil, nil
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

// Save stores a copy of the snapshot.
func (m *Memory) Save(namespace string, data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)
	m.mu.Lock()
	m.data[namespace] = copied
	m.mu.Unlock()
	return nil
}
