// Package session implements the in-memory conversation store: sessions
// keyed by id, each holding an ordered message history plus bookkeeping
// timestamps. There is no persistence across process restarts — see
// DESIGN.md's Open Question decision.
package session

import (
	"sync"
	"time"

	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/google/uuid"
)

// Session is a single conversation: its message history plus metadata used
// for listing and display.
type Session struct {
	Id        string
	Name      string
	Messages  []llm.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the listing projection of a Session (spec §6 list_sessions).
type Summary struct {
	Id            string `json:"id"`
	CreatedAtMs   int64  `json:"created_at_ms"`
	LastUpdatedMs int64  `json:"last_updated_ms"`
	Name          string `json:"name"`
	MessageCount  int    `json:"message_count"`
}

// Store is an in-memory, concurrency-safe map of session id to Session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create inserts a new session. If id is empty, a fresh uuid is generated.
// If a session with id already exists, it is overwritten (callers that
// want "create if absent" semantics should use ValidateOrCreateSession via the
// service façade instead).
func (s *Store) Create(id, name string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	session := &Session{
		Id:        id,
		Name:      name,
		Messages:  nil,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
	return session
}

// Get returns the stored session with id (the store's own pointer, not a
// copy) and true, or nil and false if absent.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// List returns all sessions in unspecified order.
func (s *Store) List() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

// Append adds one message to id's history. A no-op if id doesn't exist.
func (s *Store) Append(id string, message llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.Messages = append(session.Messages, message)
	session.UpdatedAt = time.Now()
}

// AppendMany adds multiple messages to id's history in order.
func (s *Store) AppendMany(id string, messages []llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.Messages = append(session.Messages, messages...)
	session.UpdatedAt = time.Now()
}

// ReplaceMessages overwrites id's entire history. Used by the RPC layer to
// persist a streaming run's final messages once its Done event fires.
func (s *Store) ReplaceMessages(id string, messages []llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.Messages = messages
	session.UpdatedAt = time.Now()
}

// SetName renames id. A no-op if id doesn't exist.
func (s *Store) SetName(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.Name = name
	session.UpdatedAt = time.Now()
}

// Clear empties id's message history without deleting the session.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	session.Messages = nil
	session.UpdatedAt = time.Now()
}

// Delete removes id from the store entirely.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Summaries projects every stored session into listing form (spec §6
// list_sessions), in unspecified order.
func (s *Store) Summaries() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, Summary{
			Id:            session.Id,
			CreatedAtMs:   session.CreatedAt.UnixMilli(),
			LastUpdatedMs: session.UpdatedAt.UnixMilli(),
			Name:          session.Name,
			MessageCount:  len(session.Messages),
		})
	}
	return out
}
