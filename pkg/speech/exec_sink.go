package speech

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/kazitrust/kazitrust/pkg/audio"
)

// ErrNoPlayer is returned when no audio player command can be found.
var ErrNoPlayer = errors.New("no audio player found (install aplay, paplay, afplay or ffplay, or set speech.player)")

// knownPlayers are tried in order when no command is configured. Each takes a
// WAV path as its last argument.
var knownPlayers = [][]string{
	{"aplay", "-q"},
	{"paplay"},
	{"afplay"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
}

// ExecSink plays audio by writing a temporary WAV file and running an
// external player on it. Pause and resume stop and continue the player
// process.
type ExecSink struct {
	command []string
	tempDir string
	logger  *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	path    string
	stopped bool
}

// NewExecSink creates a sink. command is the player and its leading
// arguments; when empty the first installed known player is used.
func NewExecSink(command []string, logger *slog.Logger) *ExecSink {
	return &ExecSink{
		command: command,
		tempDir: os.TempDir(),
		logger:  logger,
	}
}

// ResolveCommand returns the player command the sink will run.
func (s *ExecSink) ResolveCommand() ([]string, error) {
	if len(s.command) > 0 {
		if _, err := exec.LookPath(s.command[0]); err != nil {
			return nil, fmt.Errorf("audio player %q: %w", s.command[0], err)
		}
		return s.command, nil
	}
	for _, candidate := range knownPlayers {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return candidate, nil
		}
	}
	return nil, ErrNoPlayer
}

func (s *ExecSink) Start(buf *audio.SampleBuffer, onEnded func()) error {
	if buf.Channels != audio.Channels {
		return fmt.Errorf("%w: expected %d channel, got %d", audio.ErrMalformedAudio, audio.Channels, buf.Channels)
	}

	command, err := s.ResolveCommand()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(s.tempDir, "kazitrust-speech-*.wav")
	if err != nil {
		return fmt.Errorf("create temp wav: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(audio.EncodeWAV(audio.EncodePCM16(buf), buf.SampleRate)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close temp wav: %w", err)
	}

	args := append(append([]string{}, command[1:]...), path)
	cmd := exec.Command(command[0], args...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("start %s: %w", command[0], err)
	}

	s.mu.Lock()
	s.cmd, s.path, s.stopped = cmd, path, false
	s.mu.Unlock()

	s.logger.Debug("speech playback started", "player", command[0], "duration", buf.Duration())

	go func() {
		waitErr := cmd.Wait()
		os.Remove(path)

		s.mu.Lock()
		stopped := s.stopped
		if s.cmd == cmd {
			s.cmd, s.path = nil, ""
		}
		s.mu.Unlock()

		if stopped {
			return
		}
		if waitErr != nil {
			s.logger.Warn("audio player exited with error", "error", waitErr)
		}
		onEnded()
	}()
	return nil
}

func (s *ExecSink) process() *os.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return nil
	}
	return s.cmd.Process
}

func (s *ExecSink) Suspend() error {
	if p := s.process(); p != nil {
		return suspendProcess(p)
	}
	return nil
}

func (s *ExecSink) Resume() error {
	if p := s.process(); p != nil {
		return resumeProcess(p)
	}
	return nil
}

func (s *ExecSink) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	s.stopped = true
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
