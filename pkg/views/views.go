// Package views holds the in-memory state of the five KaziTrust task views
// and the navigation shell that activates one of them at a time.
//
// Views are front-end agnostic: the web server and the TUI both drive them
// through Submit methods and render them from Snapshot values. A view's state
// lives only as long as its activation. Navigating away closes it, and any
// gateway response that arrives afterwards is dropped.
package views

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/speech"
)

// ViewID names a task view.
type ViewID string

const (
	ViewDashboard ViewID = "dashboard"
	ViewSearch    ViewID = "search"
	ViewTranslate ViewID = "translate"
	ViewMedia     ViewID = "media"
	ViewChat      ViewID = "chat"
)

// DefaultMaxMediaBytes bounds media uploads. It matches the inline request
// size the model service accepts.
const DefaultMaxMediaBytes int64 = 20 << 20

var (
	ErrUnknownView      = errors.New("unknown view")
	ErrBusy             = errors.New("a request is already in progress")
	ErrViewClosed       = errors.New("view was closed before the response arrived")
	ErrMediaTooLarge    = errors.New("media file is too large")
	ErrUnsupportedMedia = errors.New("only image and video files can be analyzed")
)

// IDs lists the views in navigation rail order.
func IDs() []ViewID {
	return []ViewID{ViewDashboard, ViewSearch, ViewTranslate, ViewMedia, ViewChat}
}

// ParseViewID accepts a view name. "video" is accepted as an alias for media.
func ParseViewID(s string) (ViewID, error) {
	switch id := ViewID(strings.ToLower(strings.TrimSpace(s))); id {
	case ViewDashboard, ViewSearch, ViewTranslate, ViewMedia, ViewChat:
		return id, nil
	case "video":
		return ViewMedia, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Label is the navigation rail label of the view.
func (id ViewID) Label() string {
	switch id {
	case ViewDashboard:
		return "Home Dashboard"
	case ViewSearch:
		return "Rights Explorer"
	case ViewTranslate:
		return "Law Translator"
	case ViewMedia:
		return "Media Analysis"
	case ViewChat:
		return "AI Counselor"
	}
	return string(id)
}

// View is an activated task view.
type View interface {
	ID() ViewID
	close()
}

// Deps are the collaborators shared by every view of one shell.
type Deps struct {
	Gateway gateway.Gateway
	Logger  *slog.Logger

	// MaxMediaBytes bounds media uploads. Zero means DefaultMaxMediaBytes.
	MaxMediaBytes int64
}

// base carries the busy flag, closed flag and speech clips common to the
// task views.
type base struct {
	id     ViewID
	deps   Deps
	logger *slog.Logger

	mu     sync.Mutex
	busy   bool
	closed bool
	clips  map[string]*speech.Clip
}

func newBase(id ViewID, deps Deps) base {
	return base{
		id:     id,
		deps:   deps,
		logger: deps.Logger.With("view", string(id)),
		clips:  make(map[string]*speech.Clip),
	}
}

func (b *base) ID() ViewID {
	return b.id
}

func (b *base) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.clips = make(map[string]*speech.Clip)
}

// Busy reports whether a request is outstanding.
func (b *base) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// Closed reports whether the view has been navigated away from.
func (b *base) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// readyLocked reports whether a new request may start.
func (b *base) readyLocked() error {
	if b.closed {
		return ErrViewClosed
	}
	if b.busy {
		return ErrBusy
	}
	return nil
}

func (b *base) beginLocked() error {
	if err := b.readyLocked(); err != nil {
		return err
	}
	b.busy = true
	return nil
}

// endLocked clears the busy flag and reports ErrViewClosed when the response
// must be dropped.
func (b *base) endLocked() error {
	b.busy = false
	if b.closed {
		b.logger.Debug("dropping response for closed view")
		return ErrViewClosed
	}
	return nil
}

// clipLocked returns the memoized clip for key, creating it over text.
func (b *base) clipLocked(key, text string) *speech.Clip {
	if c, ok := b.clips[key]; ok {
		return c
	}
	c := speech.NewClip(b.deps.Gateway, text)
	b.clips[key] = c
	return c
}

func (b *base) resetClipsLocked() {
	b.clips = make(map[string]*speech.Clip)
}
