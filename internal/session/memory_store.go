package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns a copy of the stored session
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || sess.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Save stores a copy of the session so callers never share state
func (m *MemoryStore) Save(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	m.sessions[sess.ID] = *sess
	m.mu.Unlock()
	return nil
}

// Delete removes the session
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and returns how many were dropped
func (m *MemoryStore) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		m.logger.Info("expired sessions swept",
			zap.Int("removed", removed),
			zap.Int("remaining", len(m.sessions)),
		)
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
