package speech

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kazitrust/kazitrust/pkg/audio"
)

// State is the state of a Player.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Label is the text shown on the listen button in state s.
func (s State) Label() string {
	switch s {
	case Loading:
		return "Tayari..."
	case Playing:
		return "Wacha"
	case Paused:
		return "Endelea"
	}
	return "Sikiliza"
}

// Sink plays decoded audio. Start must return promptly. onEnded is called
// at most once, from another goroutine, when playback finishes on its own. It
// is not called after Stop.
type Sink interface {
	Start(buf *audio.SampleBuffer, onEnded func()) error
	Suspend() error
	Resume() error
	Stop() error
}

// Player plays one Clip through a Sink. All transitions are serialized.
type Player struct {
	clip   *Clip
	sink   Sink
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	gen      uint64
	onChange func(State)
}

// NewPlayer creates an idle player for clip.
func NewPlayer(clip *Clip, sink Sink, logger *slog.Logger) *Player {
	return &Player{
		clip:   clip,
		sink:   sink,
		logger: logger,
	}
}

// OnChange registers fn to be called after every state change. fn must not
// call back into the player.
func (p *Player) OnChange(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) setLocked(s State) {
	p.state = s
	if p.onChange != nil {
		p.onChange(s)
	}
}

// Toggle advances the player the way the listen button does: idle starts
// playback (fetching and decoding if needed), playing pauses, paused
// resumes, and loading ignores the press. It blocks while loading.
//
// A failed fetch or decode returns the player to idle and returns the error.
func (p *Player) Toggle(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case Loading:
		p.mu.Unlock()
		return nil
	case Playing:
		defer p.mu.Unlock()
		if err := p.sink.Suspend(); err != nil {
			return err
		}
		p.setLocked(Paused)
		return nil
	case Paused:
		defer p.mu.Unlock()
		if err := p.sink.Resume(); err != nil {
			return err
		}
		p.setLocked(Playing)
		return nil
	}

	p.gen++
	gen := p.gen
	p.setLocked(Loading)
	p.mu.Unlock()

	buf, err := p.clip.Buffer(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		// Closed while loading; drop what the late decode cached.
		p.clip.Release()
		return nil
	}
	if err != nil {
		p.logger.Warn("speech unavailable", "error", err)
		p.setLocked(Idle)
		return err
	}

	if err := p.sink.Start(buf, func() { p.ended(gen) }); err != nil {
		p.logger.Warn("speech playback failed", "error", err)
		p.setLocked(Idle)
		return err
	}
	p.setLocked(Playing)
	return nil
}

func (p *Player) ended(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || (p.state != Playing && p.state != Paused) {
		return
	}
	p.clip.Release()
	p.setLocked(Idle)
}

// Close stops playback and releases the decoded buffer. The player is idle
// afterwards and may be toggled again.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	var err error
	if p.state == Playing || p.state == Paused {
		err = p.sink.Stop()
	}
	p.clip.Release()
	if p.state != Idle {
		p.setLocked(Idle)
	}
	return err
}
