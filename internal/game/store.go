package game

import (
	"sync"

	"github.com/google/uuid"
)

// Store tracks at most one active session per room and serializes all access
// to each of them. Distinct rooms proceed fully in parallel: WithSession holds
// only the per-room lock while fn runs, never the store map lock.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// NewStore returns an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*sessionEntry)}
}

// CreateSession starts a new game for roomID. The players slice defines the
// fixed turn order. Fails with ErrSessionExists if the room already has an
// active session.
func (st *Store) CreateSession(roomID uuid.UUID, players []*PlayerState, rules Rules) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.sessions[roomID]; exists {
		return ErrSessionExists
	}
	s, err := NewSession(roomID, players, rules, nil)
	if err != nil {
		return err
	}
	st.sessions[roomID] = &sessionEntry{session: s}
	return nil
}

// WithSession runs fn with exclusive access to the room's session. This is
// the only sanctioned way to touch a session after creation: concurrent
// actions on the same room apply in arrival order with no fairness guarantee
// beyond that.
func (st *Store) WithSession(roomID uuid.UUID, fn func(*Session) error) error {
	st.mu.Lock()
	entry, ok := st.sessions[roomID]
	st.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// RemoveSession detaches and discards the room's session. Idempotent. An
// in-flight WithSession on the removed entry completes normally; the session
// is simply unreachable afterwards.
func (st *Store) RemoveSession(roomID uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, roomID)
}
