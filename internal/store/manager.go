package store

import (
	"sync"

	"github.com/google/uuid"
)

// Manager hands out one Store per owner, lazily. Stores live until the
// owner's session ends and Drop is called.
type Manager[T any] struct {
	mu     sync.Mutex
	cfg    Config[T]
	stores map[uuid.UUID]*Store[T]
}

func NewManager[T any](cfg Config[T]) *Manager[T] {
	return &Manager[T]{
		cfg:    cfg,
		stores: make(map[uuid.UUID]*Store[T]),
	}
}

// For returns the owner's store, creating it on first use.
func (m *Manager[T]) For(owner uuid.UUID) *Store[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[owner]; ok {
		return s
	}
	s := New(owner, m.cfg)
	m.stores[owner] = s
	return s
}

// Drop cleans the owner's store up and forgets it. Called on logout.
func (m *Manager[T]) Drop(owner uuid.UUID) {
	m.mu.Lock()
	s, ok := m.stores[owner]
	if ok {
		delete(m.stores, owner)
	}
	m.mu.Unlock()

	if ok {
		s.Cleanup()
	}
}
