package till

import (
	"context"
	"errors"
	"sync"
)

var ErrSnapshotMiss = errors.New("session snapshot not found")

// SnapshotStore persists till sessions across restarts. Implementations must
// treat a missing session as ErrSnapshotMiss.
type SnapshotStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is the SnapshotStore used in tests and when no Redis address
// is configured. It does not survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	data, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotMiss
	}
	return unmarshalSession(data)
}

func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	data, err := marshalSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}
