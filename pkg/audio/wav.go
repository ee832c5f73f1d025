package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// HeaderSize is the size of the canonical WAV header written by EncodeWAV.
	HeaderSize = 44

	formatPCM     = 1
	fmtChunkSize  = 16
	bitsPerSample = 16
)

// ErrInvalidWAV is returned by ParseWAVHeader for data that does not start
// with a canonical 44-byte PCM header.
var ErrInvalidWAV = errors.New("invalid WAV header")

// Header holds the fields of a canonical PCM WAV header.
type Header struct {
	ChunkSize     uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// Duration is the playback length of the data chunk.
func (h Header) Duration() time.Duration {
	if h.ByteRate == 0 {
		return 0
	}
	return time.Duration(h.DataSize) * time.Second / time.Duration(h.ByteRate)
}

// EncodeWAV wraps mono 16-bit PCM in a 44-byte WAV header. The PCM bytes are
// copied unchanged after the header. Any input, including an empty one,
// produces a well-formed file.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	out := make([]byte, HeaderSize, HeaderSize+len(pcm))

	// RIFF chunk descriptor
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")

	// fmt sub-chunk
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(out[20:22], formatPCM)
	binary.LittleEndian.PutUint16(out[22:24], Channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(sampleRate*Channels*bytesPerSample))
	binary.LittleEndian.PutUint16(out[32:34], Channels*bytesPerSample)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)

	// data sub-chunk
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))

	return append(out, pcm...)
}

// ParseWAVHeader reads the header fields written by EncodeWAV.
func ParseWAVHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidWAV, HeaderSize, len(data))
	}

	for _, chunk := range []struct {
		offset int
		id     string
	}{{0, "RIFF"}, {8, "WAVE"}, {12, "fmt "}, {36, "data"}} {
		if string(data[chunk.offset:chunk.offset+4]) != chunk.id {
			return Header{}, fmt.Errorf("%w: missing %q at offset %d", ErrInvalidWAV, chunk.id, chunk.offset)
		}
	}

	return Header{
		ChunkSize:     binary.LittleEndian.Uint32(data[4:8]),
		AudioFormat:   binary.LittleEndian.Uint16(data[20:22]),
		NumChannels:   binary.LittleEndian.Uint16(data[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(data[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(data[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(data[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(data[34:36]),
		DataSize:      binary.LittleEndian.Uint32(data[40:44]),
	}, nil
}
