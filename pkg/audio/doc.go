// Package audio converts between raw little-endian 16-bit PCM, normalized
// sample buffers used for playback, and minimal WAV containers.
package audio
