package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kazitrust/kazitrust/pkg/views"
)

// sessionCookie names the cookie carrying the session id.
const sessionCookie = "kazitrust_session"

type session struct {
	shell    *views.Shell
	lastSeen time.Time
}

// SessionStore maps browser session ids to their navigation shells. Each
// browser gets its own shell, so views and results are never shared.
type SessionStore struct {
	deps   views.Deps
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	// onCount is called with the live session count after every change.
	onCount func(int)

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionStore creates a store whose shells are built from deps.
func NewSessionStore(deps views.Deps, ttl time.Duration, logger *slog.Logger, onCount func(int)) *SessionStore {
	if onCount == nil {
		onCount = func(int) {}
	}
	return &SessionStore{
		deps:     deps,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		onCount:  onCount,
		sessions: make(map[string]*session),
	}
}

// Get returns the shell for id, creating a new session when id is empty,
// unknown or expired. The returned id is the one the caller must keep.
func (s *SessionStore) Get(id string) (*views.Shell, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok {
		if s.ttl <= 0 || now.Sub(sess.lastSeen) < s.ttl {
			sess.lastSeen = now
			return sess.shell, id, false
		}
		sess.shell.Close()
		delete(s.sessions, id)
	}

	id = uuid.NewString()
	shell := views.NewShell(s.deps)
	s.sessions[id] = &session{shell: shell, lastSeen: now}
	s.onCount(len(s.sessions))
	s.logger.Debug("session created", "sessions", len(s.sessions))
	return shell, id, true
}

// Sweep discards sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.ttl {
			sess.shell.Close()
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.onCount(len(s.sessions))
		s.logger.Debug("sessions expired", "removed", removed, "sessions", len(s.sessions))
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close discards every session.
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.shell.Close()
		delete(s.sessions, id)
	}
	s.onCount(0)
}
