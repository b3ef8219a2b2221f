package state

import "sync"

// MemoryStore is an in-process Store. Sessions are stored by value.
type MemoryStore[S any] struct {
	mu       sync.RWMutex
	sessions map[Key]S
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore[S any]() *MemoryStore[S] {
	return &MemoryStore[S]{sessions: make(map[Key]S)}
}

// Get returns the session for key, if any.
func (m *MemoryStore[S]) Get(key Key) (S, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Put replaces the session for key.
func (m *MemoryStore[S]) Put(key Key, session S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = session
}

// Clear removes the session for key.
func (m *MemoryStore[S]) Clear(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Len reports how many sessions are held.
func (m *MemoryStore[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
