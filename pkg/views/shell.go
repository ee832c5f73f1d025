package views

import (
	"sync"

	"github.com/kazitrust/kazitrust/pkg/logger"
)

// RailEntry is one item of the navigation rail.
type RailEntry struct {
	ID     ViewID
	Label  string
	Active bool
}

// Shell owns the active view. Exactly one view is active at a time and a
// fresh shell starts on the dashboard.
type Shell struct {
	deps Deps

	mu     sync.Mutex
	active View
}

// NewShell creates a shell showing the dashboard.
func NewShell(deps Deps) *Shell {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.MaxMediaBytes <= 0 {
		deps.MaxMediaBytes = DefaultMaxMediaBytes
	}

	s := &Shell{deps: deps}
	s.active = s.build(ViewDashboard)
	return s
}

func (s *Shell) build(id ViewID) View {
	switch id {
	case ViewSearch:
		return newSearchView(s.deps)
	case ViewTranslate:
		return newTranslateView(s.deps)
	case ViewMedia:
		return newMediaView(s.deps)
	case ViewChat:
		return newChatView(s.deps)
	}
	return newDashboardView(s.deps)
}

// Active returns the active view.
func (s *Shell) Active() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ActiveID returns the id of the active view.
func (s *Shell) ActiveID() ViewID {
	return s.Active().ID()
}

// Navigate activates id. The previously active view is closed and all of
// its state discarded. Navigating to the active view is a no-op.
func (s *Shell) Navigate(id ViewID) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active.ID() == id {
		return s.active
	}

	s.active.close()
	s.active = s.build(id)
	s.deps.Logger.Debug("navigated", "view", string(id))
	return s.active
}

// Rail returns the navigation entries with the active one flagged.
func (s *Shell) Rail() []RailEntry {
	active := s.ActiveID()
	ids := IDs()
	entries := make([]RailEntry, len(ids))
	for i, id := range ids {
		entries[i] = RailEntry{ID: id, Label: id.Label(), Active: id == active}
	}
	return entries
}

// MaxMediaBytes is the upload limit enforced by the media view.
func (s *Shell) MaxMediaBytes() int64 {
	return s.deps.MaxMediaBytes
}

// Close closes the active view. In-flight responses are dropped.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.close()
}

// ActiveAs returns the active view as T when it has that type.
func ActiveAs[T View](s *Shell) (T, bool) {
	v, ok := s.Active().(T)
	return v, ok
}
