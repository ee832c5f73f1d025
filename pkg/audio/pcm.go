package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// SampleRate is the rate of synthesized speech returned by the model service.
	SampleRate = 24000

	// Channels is the channel count of synthesized speech (mono).
	Channels = 1

	bytesPerSample = 2
	pcmScale       = 32768.0
)

// ErrMalformedAudio is returned when a PCM byte stream cannot be split into
// whole frames for the requested channel count.
var ErrMalformedAudio = errors.New("malformed PCM audio")

// SampleBuffer holds decoded, de-interleaved samples in the range [-1, 1].
// Data[c][i] is sample i of channel c.
type SampleBuffer struct {
	SampleRate int
	Channels   int
	Data       [][]float32
}

// Frames returns the number of samples per channel.
func (b *SampleBuffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the playback length of the buffer.
func (b *SampleBuffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// DecodePCM16 interprets pcm as interleaved little-endian signed 16-bit
// samples and normalizes each value v to v/32768.
//
// The length of pcm must be a multiple of 2*channels. A partial trailing frame
// is rejected with ErrMalformedAudio rather than silently truncated.
func DecodePCM16(pcm []byte, sampleRate, channels int) (*SampleBuffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrMalformedAudio, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrMalformedAudio, sampleRate)
	}

	frameSize := bytesPerSample * channels
	if len(pcm)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d-byte frame size",
			ErrMalformedAudio, len(pcm), frameSize)
	}

	frames := len(pcm) / frameSize
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}

	for i := range frames {
		for c := range channels {
			offset := (i*channels + c) * bytesPerSample
			v := int16(binary.LittleEndian.Uint16(pcm[offset : offset+bytesPerSample]))
			data[c][i] = float32(v) / pcmScale
		}
	}

	return &SampleBuffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Data:       data,
	}, nil
}

// EncodePCM16 re-interleaves buf into little-endian signed 16-bit PCM.
// Values outside [-1, 1) are clamped to the int16 range.
func EncodePCM16(buf *SampleBuffer) []byte {
	frames := buf.Frames()
	if frames == 0 {
		return []byte{}
	}

	out := make([]byte, frames*len(buf.Data)*bytesPerSample)
	offset := 0
	for i := range frames {
		for c := range buf.Data {
			binary.LittleEndian.PutUint16(out[offset:], uint16(quantize(buf.Data[c][i])))
			offset += bytesPerSample
		}
	}
	return out
}

func quantize(sample float32) int16 {
	scaled := math.Round(float64(sample) * pcmScale)
	switch {
	case scaled > math.MaxInt16:
		return math.MaxInt16
	case scaled < math.MinInt16:
		return math.MinInt16
	}
	return int16(scaled)
}
