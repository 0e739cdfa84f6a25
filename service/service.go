// Package service implements the session façade sitting between the RPC
// operation surface and the session store: default-user session binding,
// validate-or-create semantics, and access to the underlying store's CRUD.
package service

import (
	"sync"

	"github.com/AlvinPlayz23/void-core/session"
)

// Service holds a shared session store plus a user_id → session_id binding
// used for the "default user, no explicit session" RPC operations.
type Service struct {
	store *session.Store

	mu           sync.RWMutex
	userSessions map[string]string
}

// New constructs a Service with a fresh, empty session store.
func New() *Service {
	return &Service{
		store:        session.NewStore(),
		userSessions: make(map[string]string),
	}
}

// SessionStore exposes the underlying store's CRUD surface (create, get,
// list, append, replace_messages, set_name, clear, delete).
func (s *Service) SessionStore() *session.Store {
	return s.store
}

// GetOrCreateSession returns userID's cached session id, creating a new
// session and caching it if none exists yet.
func (s *Service) GetOrCreateSession(userID string) string {
	s.mu.RLock()
	if id, ok := s.userSessions[userID]; ok {
		s.mu.RUnlock()
		return id
	}
	s.mu.RUnlock()

	created := s.store.Create("", "")

	s.mu.Lock()
	defer s.mu.Unlock()
	// another goroutine may have raced us to create a binding for userID;
	// prefer whichever one won, discarding the loser's session only from
	// the binding (it remains in the store, orphaned but harmless).
	if id, ok := s.userSessions[userID]; ok {
		return id
	}
	s.userSessions[userID] = created.Id
	return created.Id
}

// ValidateOrCreateSession returns sessionID unchanged if it already exists
// in the store; otherwise it creates a session with that exact id
// preserved, so a caller-supplied id is never silently replaced.
func (s *Service) ValidateOrCreateSession(sessionID string) string {
	if _, ok := s.store.Get(sessionID); ok {
		return sessionID
	}
	created := s.store.Create(sessionID, "")
	return created.Id
}

// ResetSession forgets userID's cached session binding. The session itself
// remains in the store unless separately deleted.
func (s *Service) ResetSession(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userSessions, userID)
}
