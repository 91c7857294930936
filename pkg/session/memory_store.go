package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory.
// Used by default when no store is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// EnsureSchema is a no-op for the memory store.
func (m *MemoryStore) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.Token]; exists {
		return ErrDuplicateToken
	}

	m.sessions[session.Token] = session.clone()
	return nil
}

// Update overwrites the mutable columns. Unknown tokens are ignored, matching
// an UPDATE that affects zero rows.
func (m *MemoryStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.sessions[session.Token]
	if !exists {
		return nil
	}

	updated := stored.clone()
	updated.UserID = session.UserID
	updated.Updated = session.Updated
	updated.Idle = session.Idle
	updated.Data = session.clone().Data
	m.sessions[session.Token] = updated
	return nil
}

func (m *MemoryStore) SelectByToken(ctx context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[token]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session.clone(), nil
}

func (m *MemoryStore) DeleteByToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for token, session := range m.sessions {
		if session.ExpiresAt().Before(cutoff) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
