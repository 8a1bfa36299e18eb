// Package memory implements the store interface in process memory. Sessions are lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/jelilat/hellonear/lib/store"
)

// Memory implements a store kept in a map.
type Memory struct {
	mu sync.RWMutex
	m  map[string]store.Session
}

// New returns an empty store.
func New() *Memory {
	return &Memory{m: make(map[string]store.Session)}
}

// SaveSession inserts or replaces the session.
func (m *Memory) SaveSession(_ context.Context, s store.Session) error {
	if s.ID == "" {
		return store.ErrNoID
	}

	m.mu.Lock()
	m.m[s.ID] = s
	m.mu.Unlock()

	return nil
}

// LoadSession returns the session with the given id.
func (m *Memory) LoadSession(_ context.Context, id string) (store.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.m[id]
	if !ok {
		return s, store.ErrSessionNotFound
	}

	return s, nil
}

// DeleteSession removes the session with the given id.
func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.m[id]; !ok {
		return store.ErrSessionNotFound
	}

	delete(m.m, id)

	return nil
}

// Len returns the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.m)
}
