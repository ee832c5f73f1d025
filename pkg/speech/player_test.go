package speech_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/logger"
	"github.com/kazitrust/kazitrust/pkg/speech"
	testutils "github.com/kazitrust/kazitrust/pkg/utils/test"
)

var _ = Describe("Player", func() {
	var (
		gw     *testutils.MockGateway
		sink   *testutils.MockSink
		clip   *speech.Clip
		player *speech.Player
		ctx    context.Context
	)

	BeforeEach(func() {
		gw = testutils.NewMockGateway()
		sink = testutils.NewMockSink()
		clip = speech.NewClip(gw, "Haki")
		player = speech.NewPlayer(clip, sink, logger.Nop())
		ctx = context.Background()
	})

	It("starts idle", func() {
		Expect(player.State()).To(Equal(speech.Idle))
		Expect(player.State().Label()).To(Equal("Sikiliza"))
	})

	It("cycles idle, playing, paused, playing", func() {
		var mu sync.Mutex
		var seen []speech.State
		player.OnChange(func(s speech.State) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, s)
		})

		Expect(player.Toggle(ctx)).To(Succeed())
		Expect(player.State()).To(Equal(speech.Playing))
		Expect(player.State().Label()).To(Equal("Wacha"))

		Expect(player.Toggle(ctx)).To(Succeed())
		Expect(player.State()).To(Equal(speech.Paused))
		Expect(player.State().Label()).To(Equal("Endelea"))

		Expect(player.Toggle(ctx)).To(Succeed())
		Expect(player.State()).To(Equal(speech.Playing))

		Expect(sink.History()).To(Equal([]string{"start", "suspend", "resume"}))
		mu.Lock()
		defer mu.Unlock()
		Expect(seen).To(Equal([]speech.State{speech.Loading, speech.Playing, speech.Paused, speech.Playing}))
	})

	It("returns to idle when playback ends and replays without refetching", func() {
		Expect(player.Toggle(ctx)).To(Succeed())
		sink.Finish()
		Expect(player.State()).To(Equal(speech.Idle))

		Expect(player.Toggle(ctx)).To(Succeed())
		Expect(player.State()).To(Equal(speech.Playing))
		Expect(gw.Calls(gateway.OpSpeech)).To(Equal(1))
	})

	It("returns to idle when no audio comes back", func() {
		gw.SpeechErr = gateway.ErrNoAudio

		Expect(player.Toggle(ctx)).To(MatchError(gateway.ErrNoAudio))
		Expect(player.State()).To(Equal(speech.Idle))
		Expect(sink.History()).To(BeEmpty())
	})

	It("returns to idle when the gateway sends an empty payload", func() {
		gw.Speech = nil

		Expect(player.Toggle(ctx)).To(MatchError(gateway.ErrNoAudio))
		Expect(player.State()).To(Equal(speech.Idle))
		Expect(sink.History()).To(BeEmpty())
	})

	It("returns to idle when the sink cannot start", func() {
		sink.FailStart = errors.New("no device")

		Expect(player.Toggle(ctx)).To(MatchError("no device"))
		Expect(player.State()).To(Equal(speech.Idle))
	})

	It("ignores presses while loading", func() {
		gw.Release = make(chan struct{})
		gw.Started = make(chan string, 1)

		done := make(chan error, 1)
		go func() { done <- player.Toggle(ctx) }()
		Eventually(gw.Started).Should(Receive())
		Expect(player.State()).To(Equal(speech.Loading))
		Expect(player.State().Label()).To(Equal("Tayari..."))

		Expect(player.Toggle(ctx)).To(Succeed())
		Expect(gw.Calls(gateway.OpSpeech)).To(Equal(1))

		close(gw.Release)
		Eventually(done).Should(Receive(BeNil()))
		Expect(player.State()).To(Equal(speech.Playing))
	})

	It("stops the sink on close and ignores a late end callback", func() {
		Expect(player.Toggle(ctx)).To(Succeed())
		Expect(player.Close()).To(Succeed())
		Expect(player.State()).To(Equal(speech.Idle))

		sink.Finish()
		Expect(player.State()).To(Equal(speech.Idle))
		Expect(sink.History()).To(Equal([]string{"start", "stop"}))
	})

	It("drops a load that completes after close", func() {
		gw.Release = make(chan struct{})
		gw.Started = make(chan string, 1)

		done := make(chan error, 1)
		go func() { done <- player.Toggle(ctx) }()
		Eventually(gw.Started).Should(Receive())

		Expect(player.Close()).To(Succeed())
		close(gw.Release)
		Eventually(done).Should(Receive(BeNil()))

		Expect(player.State()).To(Equal(speech.Idle))
		Expect(sink.History()).To(BeEmpty())
		Expect(clip.Decoded()).To(BeFalse())
		Expect(clip.Cached()).To(BeTrue())
	})
})
