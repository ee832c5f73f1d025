package testutils

import (
	"sync"

	"github.com/kazitrust/kazitrust/pkg/audio"
)

// MockSink is a speech.Sink that records transitions instead of producing
// sound. Call Finish to simulate natural end of playback.
type MockSink struct {
	mu      sync.Mutex
	Events  []string
	Buffer  *audio.SampleBuffer
	onEnded func()

	// FailStart causes Start to return an error.
	FailStart error
}

func NewMockSink() *MockSink {
	return &MockSink{Events: make([]string, 0)}
}

func (s *MockSink) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
}

// History returns a copy of the recorded events.
func (s *MockSink) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Events...)
}

func (s *MockSink) Start(buf *audio.SampleBuffer, onEnded func()) error {
	s.mu.Lock()
	if s.FailStart != nil {
		err := s.FailStart
		s.mu.Unlock()
		return err
	}
	s.Buffer = buf
	s.onEnded = onEnded
	s.mu.Unlock()
	s.record("start")
	return nil
}

func (s *MockSink) Suspend() error {
	s.record("suspend")
	return nil
}

func (s *MockSink) Resume() error {
	s.record("resume")
	return nil
}

func (s *MockSink) Stop() error {
	s.record("stop")
	return nil
}

// Finish invokes the end-of-playback callback passed to the last Start.
func (s *MockSink) Finish() {
	s.mu.Lock()
	fn := s.onEnded
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
