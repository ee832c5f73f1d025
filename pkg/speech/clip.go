// Package speech turns result text into playable and downloadable audio.
//
// A Clip fetches synthesized PCM for one piece of text at most once. A
// Player drives a Sink through the idle, loading, playing and paused states
// of the listen button.
package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kazitrust/kazitrust/pkg/audio"
	"github.com/kazitrust/kazitrust/pkg/gateway"
)

// Clip is the speech rendering of one result text. PCM is fetched lazily and
// kept after the first successful fetch so playing and downloading the same
// result issue a single request. Failed and empty fetches are not cached.
type Clip struct {
	text string
	gw   gateway.Gateway

	mu  sync.Mutex
	pcm []byte
	buf *audio.SampleBuffer
}

// NewClip creates a clip that synthesizes text through gw.
func NewClip(gw gateway.Gateway, text string) *Clip {
	return &Clip{text: text, gw: gw}
}

// Text returns the text the clip speaks.
func (c *Clip) Text() string {
	return c.text
}

// Cached reports whether the PCM has already been fetched.
func (c *Clip) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pcm != nil
}

// Decoded reports whether a decoded playback buffer is held.
func (c *Clip) Decoded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf != nil
}

// PCM returns the raw 24kHz mono 16-bit PCM, fetching it on first use.
func (c *Clip) PCM(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchLocked(ctx)
}

func (c *Clip) fetchLocked(ctx context.Context) ([]byte, error) {
	if c.pcm != nil {
		return c.pcm, nil
	}

	pcm, err := c.gw.FetchSpeech(ctx, c.text)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, gateway.ErrNoAudio
	}
	c.pcm = pcm
	return pcm, nil
}

// WAV returns the clip as a WAV file.
func (c *Clip) WAV(ctx context.Context) ([]byte, error) {
	pcm, err := c.PCM(ctx)
	if err != nil {
		return nil, err
	}
	return audio.EncodeWAV(pcm, audio.SampleRate), nil
}

// Buffer returns the decoded samples for playback, decoding on first use.
func (c *Clip) Buffer(ctx context.Context) (*audio.SampleBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.buf != nil {
		return c.buf, nil
	}

	pcm, err := c.fetchLocked(ctx)
	if err != nil {
		return nil, err
	}

	buf, err := audio.DecodePCM16(pcm, audio.SampleRate, audio.Channels)
	if err != nil {
		return nil, err
	}
	c.buf = buf
	return buf, nil
}

// Release drops the decoded buffer. The PCM memo is kept.
func (c *Clip) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf = nil
}

// DownloadName is the file name offered for a WAV download made at t.
func DownloadName(t time.Time) string {
	return fmt.Sprintf("kazitrust-legal-summary-%d.wav", t.UnixMilli())
}
