package audio_test

import (
	"encoding/binary"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kazitrust/kazitrust/pkg/audio"
)

var _ = Describe("EncodeWAV", func() {
	It("writes the canonical 44-byte header followed by the PCM bytes", func() {
		pcm := []byte{0x01, 0x02, 0x03, 0x04}
		wav := audio.EncodeWAV(pcm, audio.SampleRate)

		Expect(wav).To(HaveLen(48))
		Expect(string(wav[0:4])).To(Equal("RIFF"))
		Expect(binary.LittleEndian.Uint32(wav[4:8])).To(Equal(uint32(40)))
		Expect(string(wav[8:12])).To(Equal("WAVE"))
		Expect(string(wav[12:16])).To(Equal("fmt "))
		Expect(binary.LittleEndian.Uint32(wav[16:20])).To(Equal(uint32(16)))
		Expect(binary.LittleEndian.Uint16(wav[20:22])).To(Equal(uint16(1)))
		Expect(binary.LittleEndian.Uint16(wav[22:24])).To(Equal(uint16(1)))
		Expect(binary.LittleEndian.Uint32(wav[24:28])).To(Equal(uint32(24000)))
		Expect(binary.LittleEndian.Uint32(wav[28:32])).To(Equal(uint32(48000)))
		Expect(binary.LittleEndian.Uint16(wav[32:34])).To(Equal(uint16(2)))
		Expect(binary.LittleEndian.Uint16(wav[34:36])).To(Equal(uint16(16)))
		Expect(string(wav[36:40])).To(Equal("data"))
		Expect(binary.LittleEndian.Uint32(wav[40:44])).To(Equal(uint32(4)))
		Expect(wav[44:]).To(Equal(pcm))
	})

	It("produces a valid file for empty PCM", func() {
		wav := audio.EncodeWAV(nil, audio.SampleRate)
		Expect(wav).To(HaveLen(audio.HeaderSize))

		h, err := audio.ParseWAVHeader(wav)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.ChunkSize).To(Equal(uint32(36)))
		Expect(h.DataSize).To(BeZero())
	})

	It("derives byte rate and block align from the sample rate", func() {
		h, err := audio.ParseWAVHeader(audio.EncodeWAV(make([]byte, 10), 16000))
		Expect(err).NotTo(HaveOccurred())

		Expect(h).To(Equal(audio.Header{
			ChunkSize:     46,
			AudioFormat:   1,
			NumChannels:   1,
			SampleRate:    16000,
			ByteRate:      32000,
			BlockAlign:    2,
			BitsPerSample: 16,
			DataSize:      10,
		}))
	})
})

var _ = Describe("ParseWAVHeader", func() {
	It("rejects short input", func() {
		_, err := audio.ParseWAVHeader([]byte("RIFF"))
		Expect(err).To(MatchError(audio.ErrInvalidWAV))
	})

	It("rejects a header without the data marker", func() {
		wav := audio.EncodeWAV([]byte{0, 0}, audio.SampleRate)
		copy(wav[36:40], "junk")

		_, err := audio.ParseWAVHeader(wav)
		Expect(err).To(MatchError(audio.ErrInvalidWAV))
	})

	It("reports the playback duration", func() {
		pcm := make([]byte, audio.SampleRate*2)
		header, err := audio.ParseWAVHeader(audio.EncodeWAV(pcm, audio.SampleRate))
		Expect(err).NotTo(HaveOccurred())
		Expect(header.Duration()).To(Equal(time.Second))
		Expect(audio.Header{}.Duration()).To(BeZero())
	})
})
