package session

import (
	"context"
	"sync"
)

// Store keeps wizard sessions keyed by caller identity. Implementations
// must treat each key as independent; callers serialize per-key access.
type Store interface {
	// Get returns the caller's session, or nil when none exists.
	Get(ctx context.Context, callerID int64) (*Session, error)
	// Put stores or replaces the caller's session.
	Put(ctx context.Context, callerID int64, s *Session) error
	// Delete removes the caller's session. Deleting a missing session
	// is not an error.
	Delete(ctx context.Context, callerID int64) error
}

// MemoryStore is the default in-process store
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]Session),
	}
}

// Get returns a copy of the caller's session
func (m *MemoryStore) Get(_ context.Context, callerID int64) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[callerID]
	if !ok {
		return nil, nil
	}
	copied := s
	return &copied, nil
}

// Put stores or replaces the caller's session
func (m *MemoryStore) Put(_ context.Context, callerID int64, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[callerID] = *s
	return nil
}

// Delete removes the caller's session
func (m *MemoryStore) Delete(_ context.Context, callerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, callerID)
	return nil
}
