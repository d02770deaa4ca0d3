package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is a single viewer's filter engine plus its cached view.
type Session struct {
	ID      string
	Viewer  ViewerContext
	Engine  *Engine
	View    *View
	created time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps one Engine per session id. Engines are never shared
// between sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore builds a store; sessions idle longer than ttl are removed by
// Sweep. A non-positive ttl keeps sessions forever.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open creates a session bound to a fresh engine and view.
func (s *SessionStore) Open(viewer ViewerContext, hierarchy LocationHierarchy, catalog *CategoryCatalog, repo Repository) *Session {
	now := s.now()
	engine := NewEngine(hierarchy, catalog)
	session := &Session{
		ID:       uuid.NewString(),
		Viewer:   viewer,
		Engine:   engine,
		View:     NewView(repo, engine),
		created:  now,
		lastSeen: now,
	}
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns a live session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	session.touch(s.now())
	return session, true
}

// Close removes a session.
func (s *SessionStore) Close(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		session.View.Close()
	}
	return ok
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes idle sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	var expired []*Session
	s.mu.Lock()
	for id, session := range s.sessions {
		if session.LastSeen().Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, session := range expired {
		session.View.Close()
	}
	return len(expired)
}

// InvalidateAll drops every session's cached view, e.g. after a data reload.
func (s *SessionStore) InvalidateAll() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		session.View.Invalidate()
	}
}
