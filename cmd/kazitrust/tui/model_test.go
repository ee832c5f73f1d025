package tuicmder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	bubbletea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/logger"
	"github.com/kazitrust/kazitrust/pkg/speech"
	testutils "github.com/kazitrust/kazitrust/pkg/utils/test"
	"github.com/kazitrust/kazitrust/pkg/views"
)

func runeKey(s string) bubbletea.KeyMsg {
	return bubbletea.KeyMsg{Type: bubbletea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = bubbletea.KeyMsg{Type: bubbletea.KeyEnter}
	escKey   = bubbletea.KeyMsg{Type: bubbletea.KeyEsc}
	tabKey   = bubbletea.KeyMsg{Type: bubbletea.KeyTab}
)

// collect runs cmd and returns the messages it produces, expanding batches.
// Commands that block longer than a moment, like the player listener, are
// dropped.
func collect(cmd bubbletea.Cmd) []bubbletea.Msg {
	if cmd == nil {
		return nil
	}

	done := make(chan bubbletea.Msg, 1)
	go func() { done <- cmd() }()

	var msg bubbletea.Msg
	select {
	case msg = <-done:
	case <-time.After(300 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(bubbletea.BatchMsg); ok {
		var out []bubbletea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []bubbletea.Msg{msg}
}

type harness struct {
	gw    *testutils.MockGateway
	sink  *testutils.MockSink
	shell *views.Shell
	model tuiModel
}

func newHarness(saveDir string) *harness {
	h := &harness{
		gw:   testutils.NewMockGateway(),
		sink: testutils.NewMockSink(),
	}
	h.shell = views.NewShell(views.Deps{Gateway: h.gw, Logger: logger.Nop(), MaxMediaBytes: 1024})
	newSink := func() speech.Sink { return h.sink }
	h.model = newTUIModel(context.Background(), h.shell, newSink, logger.Nop(), saveDir)
	return h
}

// press sends msg and returns the resulting command.
func (h *harness) press(msg bubbletea.Msg) bubbletea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(tuiModel)
	return cmd
}

// settle runs cmd and feeds every produced message back into the model.
func (h *harness) settle(cmd bubbletea.Cmd) []bubbletea.Msg {
	msgs := collect(cmd)
	for _, msg := range msgs {
		h.press(msg)
	}
	return msgs
}

func (h *harness) submit(text string) []bubbletea.Msg {
	h.model.input.SetValue(text)
	return h.settle(h.press(enterKey))
}

var _ = Describe("TUI model", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness(GinkgoT().TempDir())
	})

	Describe("navigation", func() {
		It("starts on the dashboard with the input hidden", func() {
			Expect(h.shell.ActiveID()).To(Equal(views.ViewDashboard))
			Expect(h.model.hasInput()).To(BeFalse())
			Expect(h.model.View()).To(ContainSubstring("Rights Explorer"))
			Expect(h.model.View()).To(ContainSubstring("Minimum Wage Adjustment 2024"))
		})

		It("switches views with the number keys and focuses the input", func() {
			h.press(runeKey("2"))
			Expect(h.shell.ActiveID()).To(Equal(views.ViewSearch))
			Expect(h.model.input.Focused()).To(BeTrue())
			Expect(h.model.lang).To(Equal(legal.English))

			h.press(escKey)
			h.press(runeKey("3"))
			Expect(h.shell.ActiveID()).To(Equal(views.ViewTranslate))
			Expect(h.model.lang).To(Equal(legal.Kiswahili))
		})

		It("types number keys while the input is focused", func() {
			h.press(runeKey("2"))
			h.press(runeKey("4"))
			Expect(h.shell.ActiveID()).To(Equal(views.ViewSearch))
			Expect(h.model.input.Value()).To(Equal("4"))
		})

		It("quits on q only when not typing", func() {
			h.press(runeKey("5"))
			h.press(runeKey("q"))
			Expect(h.model.input.Value()).To(Equal("q"))

			h.press(escKey)
			cmd := h.press(runeKey("q"))
			Expect(cmd).NotTo(BeNil())
			Expect(cmd()).To(Equal(bubbletea.QuitMsg{}))
		})

		It("always quits on ctrl+c", func() {
			h.press(runeKey("2"))
			cmd := h.press(bubbletea.KeyMsg{Type: bubbletea.KeyCtrlC})
			Expect(cmd()).To(Equal(bubbletea.QuitMsg{}))
		})
	})

	Describe("search", func() {
		BeforeEach(func() {
			h.gw.Search = legal.SearchResult{
				Text:    "Domestic workers get 21 days of annual leave.",
				Sources: []legal.GroundingSource{{Title: "Employment Act", URI: "http://kenyalaw.org/"}},
			}
			h.press(runeKey("2"))
		})

		It("submits the question in the selected language", func() {
			h.press(tabKey)
			Expect(h.model.lang).To(Equal(legal.Kiswahili))

			h.model.input.SetValue("Annual leave allowance")
			cmd := h.press(enterKey)
			Expect(h.model.pending).To(Equal(1))
			Expect(h.model.input.Value()).To(BeEmpty())
			Expect(h.model.input.Focused()).To(BeFalse())

			msgs := h.settle(cmd)
			Expect(msgs).To(ContainElement(submittedMsg{view: views.ViewSearch}))
			Expect(h.model.pending).To(Equal(0))
			Expect(h.gw.Calls(gateway.OpSearch)).To(Equal(1))
			Expect(h.gw.LastText()).To(Equal("Annual leave allowance"))
			Expect(h.gw.LastLanguage()).To(Equal(legal.Kiswahili))
			Expect(h.model.View()).To(ContainSubstring("Sikiliza"))
		})

		It("ignores a blank question", func() {
			h.model.input.SetValue("   ")
			Expect(h.press(enterKey)).To(BeNil())
			Expect(h.gw.Calls(gateway.OpSearch)).To(BeZero())
		})

		It("fills suggestions in order", func() {
			h.press(escKey)
			h.press(runeKey("s"))
			Expect(h.model.input.Value()).To(Equal(views.Suggestions()[0]))

			h.press(escKey)
			h.press(runeKey("s"))
			Expect(h.model.input.Value()).To(Equal(views.Suggestions()[1]))
		})

		It("drops a response for a view that was left", func() {
			h.model.input.SetValue("Termination without notice laws")
			cmd := h.press(enterKey)

			h.press(runeKey("1"))
			Expect(h.shell.ActiveID()).To(Equal(views.ViewDashboard))

			msgs := h.settle(cmd)
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].(submittedMsg).err).To(MatchError(views.ErrViewClosed))
			Expect(h.model.status).To(BeEmpty())
			Expect(h.model.pending).To(BeZero())
		})

		It("refuses a second question while one is running", func() {
			h.gw.Release = make(chan struct{})
			h.gw.Started = make(chan string, 1)

			h.model.input.SetValue("Unpaid salary dispute process")
			cmd := h.press(enterKey)
			done := make(chan bubbletea.Msg, 1)
			go func() { done <- cmd() }()
			Eventually(h.gw.Started).Should(Receive(Equal(gateway.OpSearch)))

			h.press(runeKey("i"))
			h.model.input.SetValue("Annual leave allowance")
			h.press(enterKey)
			Expect(h.model.status).To(ContainSubstring("Please wait"))

			close(h.gw.Release)
			Eventually(done).Should(Receive())
			Expect(h.gw.Calls(gateway.OpSearch)).To(Equal(1))
		})
	})

	Describe("speech", func() {
		BeforeEach(func() {
			h.gw.Translation = legal.TranslationResult{
				Translated:  "Mwajiri lazima akupe notisi.",
				Explanation: "Your employer must give you notice.",
			}
			h.press(runeKey("3"))
			h.submit("Section 35 of the Employment Act")
		})

		It("plays and pauses the selected clip", func() {
			Expect(h.model.clipKeys()).To(Equal([]string{views.ClipTranslated, views.ClipExplanation}))

			msgs := h.settle(h.press(runeKey("p")))
			Expect(msgs).To(ContainElement(toggledMsg{}))
			Expect(h.model.playerState()).To(Equal(speech.Playing))
			Expect(h.sink.History()).To(Equal([]string{"start"}))
			Expect(h.gw.LastText()).To(Equal("Mwajiri lazima akupe notisi."))

			h.settle(h.press(runeKey("p")))
			Expect(h.model.playerState()).To(Equal(speech.Paused))
			Expect(h.model.View()).To(ContainSubstring("Endelea"))
		})

		It("stops playback when the clip changes", func() {
			h.settle(h.press(runeKey("p")))
			h.press(runeKey("c"))
			Expect(h.model.clipIndex).To(Equal(1))
			Expect(h.sink.History()).To(Equal([]string{"start", "stop"}))
			Expect(h.model.playerState()).To(Equal(speech.Idle))

			h.settle(h.press(runeKey("p")))
			Expect(h.gw.LastText()).To(Equal("Your employer must give you notice."))
		})

		It("stops playback on navigation", func() {
			h.settle(h.press(runeKey("p")))
			h.press(runeKey("1"))
			Expect(h.sink.History()).To(Equal([]string{"start", "stop"}))
			Expect(h.model.player).To(BeNil())
		})

		It("shows the speech fallback when audio is unavailable", func() {
			h.gw.SpeechErr = gateway.ErrNoAudio
			h.settle(h.press(runeKey("p")))
			Expect(h.model.status).To(Equal(views.SpeechFallback))
			Expect(h.model.playerState()).To(Equal(speech.Idle))
		})

		It("saves the clip as a WAV file", func() {
			msgs := h.settle(h.press(runeKey("w")))
			Expect(msgs).To(HaveLen(1))

			saved := msgs[0].(savedMsg)
			Expect(saved.err).NotTo(HaveOccurred())
			Expect(filepath.Base(saved.path)).To(HavePrefix("kazitrust-legal-summary-"))
			Expect(h.model.status).To(Equal("Saved " + saved.path))

			data, err := os.ReadFile(saved.path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data[:4])).To(Equal("RIFF"))
		})
	})

	Describe("media", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
			h.gw.Analysis = legal.MediaAnalysisResult{
				Summary:  "A one-page employment contract.",
				Warnings: []string{"No notice period", "Salary below minimum wage"},
			}
			h.press(runeKey("4"))
		})

		It("reads the file and offers one clip per warning", func() {
			path := filepath.Join(dir, "contract.png")
			Expect(os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600)).To(Succeed())

			h.submit(path)
			Expect(h.gw.LastMimeType()).To(Equal("image/png"))
			Expect(h.model.clipKeys()).To(Equal([]string{views.ClipSummary, views.WarningClip(0), views.WarningClip(1)}))
			Expect(h.model.View()).To(ContainSubstring("2 red flags"))
		})

		It("reports a missing file", func() {
			h.submit(filepath.Join(dir, "missing.jpg"))
			Expect(h.model.status).To(ContainSubstring("opening media"))
			Expect(h.gw.Calls(gateway.OpMedia)).To(BeZero())
		})

		It("leaves oversized files to the view", func() {
			path := filepath.Join(dir, "big.jpg")
			Expect(os.WriteFile(path, make([]byte, 2048), 0o600)).To(Succeed())

			h.submit(path)
			Expect(h.model.status).To(BeEmpty())
			Expect(h.gw.Calls(gateway.OpMedia)).To(BeZero())
		})
	})

	Describe("chat", func() {
		It("keeps the input focused between messages", func() {
			h.gw.Reply = "You are entitled to one month notice."
			h.press(runeKey("5"))
			h.submit("My employer fired me today")

			Expect(h.model.input.Focused()).To(BeTrue())
			chat, ok := views.ActiveAs[*views.ChatView](h.shell)
			Expect(ok).To(BeTrue())
			Expect(chat.Turns()).To(HaveLen(3))
			Expect(h.model.View()).To(ContainSubstring("one month notice"))
		})
	})
})

var _ = Describe("TUI render helpers", func() {
	It("labels clips", func() {
		Expect(clipLabel(views.ClipAnswer)).To(Equal("answer"))
		Expect(clipLabel(views.ClipExplanation)).To(Equal("why this matters"))
		Expect(clipLabel(views.WarningClip(2))).To(Equal("red flag 3"))
	})

	It("formats byte sizes", func() {
		Expect(formatBytes(512)).To(Equal("512 B"))
		Expect(formatBytes(2048)).To(Equal("2.0 KB"))
		Expect(formatBytes(20 << 20)).To(Equal("20.0 MB"))
	})

	It("pads header lines to the width", func() {
		line := renderHeaderLine(20, "left", "right")
		Expect(line).To(HaveLen(20))
		Expect(strings.HasPrefix(line, "left")).To(BeTrue())
		Expect(strings.HasSuffix(line, "right")).To(BeTrue())
	})

	It("keeps the last body line when scrolled past the end", func() {
		h := newHarness(GinkgoT().TempDir())
		h.model.scroll = 1000
		Expect(h.model.scrolled("a\nb\nc")).To(Equal([]string{"c"}))
	})
})
