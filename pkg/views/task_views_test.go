package views_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/logger"
	testutils "github.com/kazitrust/kazitrust/pkg/utils/test"
	"github.com/kazitrust/kazitrust/pkg/views"
)

var _ = Describe("Task views", func() {
	var (
		gw    *testutils.MockGateway
		shell *views.Shell
		ctx   context.Context
	)

	BeforeEach(func() {
		gw = testutils.NewMockGateway()
		shell = views.NewShell(views.Deps{Gateway: gw, Logger: logger.Nop(), MaxMediaBytes: 1024})
		ctx = context.Background()
	})

	Describe("SearchView", func() {
		var search *views.SearchView

		BeforeEach(func() {
			search = shell.Navigate(views.ViewSearch).(*views.SearchView)
		})

		It("defaults to English with suggestions", func() {
			state := search.Snapshot()
			Expect(state.Language).To(Equal(legal.English))
			Expect(state.Suggestions).To(ContainElement("Annual leave allowance"))
			Expect(state.Result).To(BeNil())
		})

		It("stores the grounded answer", func() {
			gw.Search = legal.SearchResult{
				Text:    "Ksh 15,201 per month",
				Sources: []legal.GroundingSource{{Title: "Gazette", URI: "https://kenyalaw.org"}},
			}

			Expect(search.Submit(ctx, "  minimum wage  ", legal.Sheng)).To(Succeed())

			state := search.Snapshot()
			Expect(state.Query).To(Equal("minimum wage"))
			Expect(state.Language).To(Equal(legal.Sheng))
			Expect(state.Result.Text).To(Equal("Ksh 15,201 per month"))
			Expect(state.Result.Sources).To(HaveLen(1))
			Expect(gw.LastLanguage()).To(Equal(legal.Sheng))
		})

		It("ignores blank queries", func() {
			Expect(search.Submit(ctx, "   ", legal.English)).To(Succeed())
			Expect(gw.Calls(gateway.OpSearch)).To(BeZero())
		})

		It("rejects unknown languages", func() {
			Expect(search.Submit(ctx, "leave", legal.Language("Latin"))).To(MatchError(legal.ErrInvalidLanguage))
		})

		It("shows a fallback message instead of the error", func() {
			gw.SearchErr = fmt.Errorf("dial: %w", gateway.ErrTransport)

			Expect(search.Submit(ctx, "leave", legal.English)).To(Succeed())
			state := search.Snapshot()
			Expect(state.Result).To(BeNil())
			Expect(state.Error).To(Equal(views.SearchFallback))
			Expect(state.Busy).To(BeFalse())
		})

		It("memoizes the answer clip until the next result", func() {
			gw.Search = legal.SearchResult{Text: "first"}
			Expect(search.Submit(ctx, "q", legal.English)).To(Succeed())

			a, ok := search.Clip(views.ClipAnswer)
			Expect(ok).To(BeTrue())
			b, _ := search.Clip(views.ClipAnswer)
			Expect(b).To(BeIdenticalTo(a))

			gw.Search = legal.SearchResult{Text: "second"}
			Expect(search.Submit(ctx, "q2", legal.English)).To(Succeed())
			c, _ := search.Clip(views.ClipAnswer)
			Expect(c).NotTo(BeIdenticalTo(a))
			Expect(c.Text()).To(Equal("second"))

			_, ok = search.Clip("nope")
			Expect(ok).To(BeFalse())
		})

		It("rejects a second submission while busy", func() {
			gw.Release = make(chan struct{})
			gw.Started = make(chan string, 1)

			done := make(chan error, 1)
			go func() { done <- search.Submit(ctx, "first", legal.English) }()
			Eventually(gw.Started).Should(Receive())

			Expect(search.Busy()).To(BeTrue())
			Expect(search.Submit(ctx, "second", legal.English)).To(MatchError(views.ErrBusy))

			close(gw.Release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(search.Busy()).To(BeFalse())
			Expect(gw.Calls(gateway.OpSearch)).To(Equal(1))
		})

		It("drops a response that arrives after navigation", func() {
			gw.Search = legal.SearchResult{Text: "late"}
			gw.Release = make(chan struct{})
			gw.Started = make(chan string, 1)

			done := make(chan error, 1)
			go func() { done <- search.Submit(ctx, "q", legal.English) }()
			Eventually(gw.Started).Should(Receive())

			shell.Navigate(views.ViewDashboard)
			close(gw.Release)

			Eventually(done).Should(Receive(MatchError(views.ErrViewClosed)))
			Expect(search.Snapshot().Result).To(BeNil())

			fresh := shell.Navigate(views.ViewSearch).(*views.SearchView)
			Expect(fresh.Snapshot().Query).To(BeEmpty())
		})
	})

	Describe("TranslateView", func() {
		var translate *views.TranslateView

		BeforeEach(func() {
			translate = shell.Navigate(views.ViewTranslate).(*views.TranslateView)
		})

		It("defaults to Kiswahili", func() {
			Expect(translate.Snapshot().Language).To(Equal(legal.Kiswahili))
		})

		It("renders the translation verbatim", func() {
			gw.Translation = legal.TranslationResult{
				Translated:  "Mfanyakazi anaweza kufutwa kazi bila notisi",
				Explanation: "Your employer must normally give notice.",
			}

			Expect(translate.Submit(ctx, "Employee may be terminated without notice", legal.Kiswahili)).To(Succeed())

			state := translate.Snapshot()
			Expect(state.Result.Original).To(Equal("Employee may be terminated without notice"))
			Expect(state.Result.Translated).To(Equal("Mfanyakazi anaweza kufutwa kazi bila notisi"))
			Expect(state.Result.Explanation).NotTo(BeEmpty())
			Expect(state.Result.Citations).NotTo(BeNil())
			Expect(gw.LastLanguage()).To(Equal(legal.Kiswahili))
		})

		It("offers clips for the translation and the explanation", func() {
			gw.Translation = legal.TranslationResult{Translated: "T", Explanation: "E"}
			Expect(translate.Submit(ctx, "text", legal.Sheng)).To(Succeed())

			t, ok := translate.Clip(views.ClipTranslated)
			Expect(ok).To(BeTrue())
			Expect(t.Text()).To(Equal("T"))
			e, ok := translate.Clip(views.ClipExplanation)
			Expect(ok).To(BeTrue())
			Expect(e.Text()).To(Equal("E"))
		})

		It("shows a fallback on parse failures", func() {
			gw.TranslateErr = gateway.ErrUpstreamParse

			Expect(translate.Submit(ctx, "text", legal.English)).To(Succeed())
			Expect(translate.Snapshot().Error).To(Equal(views.TranslateFallback))
			_, ok := translate.Clip(views.ClipTranslated)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("MediaView", func() {
		var media *views.MediaView

		BeforeEach(func() {
			media = shell.Navigate(views.ViewMedia).(*views.MediaView)
		})

		It("analyzes an image", func() {
			gw.Analysis = legal.MediaAnalysisResult{Summary: "Contract", Warnings: []string{"No rest day", "Below minimum wage"}}

			Expect(media.Submit(ctx, "contract.jpg", "image/jpeg", []byte("jpeg"))).To(Succeed())

			state := media.Snapshot()
			Expect(state.FileName).To(Equal("contract.jpg"))
			Expect(state.Result.Summary).To(Equal("Contract"))
			Expect(state.Result.KeyPoints).To(BeEmpty())
			Expect(media.Passed()).To(BeFalse())
			Expect(gw.LastMimeType()).To(Equal("image/jpeg"))

			w, ok := media.Clip(views.WarningClip(1))
			Expect(ok).To(BeTrue())
			Expect(w.Text()).To(Equal("Below minimum wage"))
			_, ok = media.Clip(views.WarningClip(2))
			Expect(ok).To(BeFalse())
		})

		It("passes when there are no warnings", func() {
			gw.Analysis = legal.MediaAnalysisResult{Summary: "Fair contract"}
			Expect(media.Submit(ctx, "clip.mp4", "video/mp4", []byte("mp4"))).To(Succeed())
			Expect(media.Passed()).To(BeTrue())
		})

		It("rejects files that are not images or videos", func() {
			err := media.Submit(ctx, "contract.pdf", "application/pdf", []byte("%PDF"))
			Expect(err).To(MatchError(views.ErrUnsupportedMedia))
			Expect(media.Snapshot().Error).To(ContainSubstring("contract.pdf"))
			Expect(gw.Calls(gateway.OpMedia)).To(BeZero())
		})

		It("rejects files over the limit", func() {
			err := media.Submit(ctx, "big.png", "image/png", make([]byte, 1025))
			Expect(err).To(MatchError(views.ErrMediaTooLarge))
			Expect(media.Snapshot().Error).To(Equal("big.png is larger than the 1 KB limit."))
			Expect(gw.Calls(gateway.OpMedia)).To(BeZero())
		})

		It("leaves a running analysis alone when another file is rejected", func() {
			gw.Release = make(chan struct{})
			gw.Started = make(chan string, 1)
			gw.Analysis = legal.MediaAnalysisResult{Summary: "Contract"}

			done := make(chan error, 1)
			go func() { done <- media.Submit(ctx, "contract.jpg", "image/jpeg", []byte("jpeg")) }()
			Eventually(gw.Started).Should(Receive())

			Expect(media.Submit(ctx, "contract.pdf", "application/pdf", []byte("%PDF"))).To(MatchError(views.ErrBusy))
			Expect(media.Submit(ctx, "big.png", "image/png", make([]byte, 1025))).To(MatchError(views.ErrBusy))

			state := media.Snapshot()
			Expect(state.Busy).To(BeTrue())
			Expect(state.Error).To(BeEmpty())
			Expect(state.FileName).To(Equal("contract.jpg"))

			close(gw.Release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(media.Snapshot().Result.Summary).To(Equal("Contract"))
			Expect(media.Snapshot().Error).To(BeEmpty())
		})

		It("shows a fallback on failure", func() {
			gw.MediaErr = gateway.ErrTransport
			Expect(media.Submit(ctx, "a.png", "image/png", []byte("png"))).To(Succeed())
			Expect(media.Snapshot().Error).To(Equal(views.MediaFallback))
			Expect(media.Passed()).To(BeFalse())
		})
	})

	Describe("ChatView", func() {
		var chat *views.ChatView

		BeforeEach(func() {
			chat = shell.Navigate(views.ViewChat).(*views.ChatView)
		})

		It("opens with the greeting", func() {
			Expect(chat.Turns()).To(Equal([]legal.Turn{{Role: legal.RoleAssistant, Content: views.ChatGreeting}}))
		})

		It("appends one user turn and then one assistant turn", func() {
			gw.Reply = "The minimum wage for domestic workers in Nairobi is set by the Regulation of Wages Order."

			Expect(chat.Submit(ctx, "What is minimum wage?")).To(Succeed())

			turns := chat.Turns()
			Expect(turns).To(HaveLen(3))
			Expect(turns[1]).To(Equal(legal.Turn{Role: legal.RoleUser, Content: "What is minimum wage?"}))
			Expect(turns[2].Role).To(Equal(legal.RoleAssistant))
			Expect(turns[2].Content).To(Equal(gw.Reply))

			prior, message := gw.LastChat()
			Expect(prior).To(HaveLen(1))
			Expect(message).To(Equal("What is minimum wage?"))
		})

		It("shows the user turn while the reply is pending", func() {
			gw.Release = make(chan struct{})
			gw.Started = make(chan string, 1)

			done := make(chan error, 1)
			go func() { done <- chat.Submit(ctx, "Habari") }()
			Eventually(gw.Started).Should(Receive())

			state := chat.Snapshot()
			Expect(state.Busy).To(BeTrue())
			Expect(state.Turns).To(HaveLen(2))
			Expect(state.Turns[1].Role).To(Equal(legal.RoleUser))

			close(gw.Release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(chat.Turns()).To(HaveLen(3))
		})

		It("apologizes for an empty reply", func() {
			gw.Reply = ""
			Expect(chat.Submit(ctx, "hi")).To(Succeed())
			Expect(chat.Turns()[2].Content).To(Equal(views.ChatEmptyReply))
		})

		It("reports a lost connection on failure", func() {
			gw.ChatErr = gateway.ErrTransport
			Expect(chat.Submit(ctx, "hi")).To(Succeed())
			Expect(chat.Turns()[2].Content).To(Equal(views.ChatConnectionLost))
		})

		It("sends the full history on later turns", func() {
			gw.Reply = "first reply"
			Expect(chat.Submit(ctx, "one")).To(Succeed())
			gw.Reply = "second reply"
			Expect(chat.Submit(ctx, "two")).To(Succeed())

			prior, _ := gw.LastChat()
			Expect(prior).To(HaveLen(3))
			Expect(prior[2].Content).To(Equal("first reply"))
		})

		It("discards the conversation on navigation", func() {
			Expect(chat.Submit(ctx, "hi")).To(Succeed())
			shell.Navigate(views.ViewDashboard)

			fresh := shell.Navigate(views.ViewChat).(*views.ChatView)
			Expect(fresh.Turns()).To(HaveLen(1))
		})

		It("restores a saved conversation", func() {
			saved := []legal.Turn{
				{Role: legal.RoleAssistant, Content: views.ChatGreeting},
				{Role: legal.RoleUser, Content: "one"},
				{Role: legal.RoleAssistant, Content: "first reply"},
			}
			Expect(chat.Restore(saved)).To(Succeed())
			Expect(chat.Turns()).To(Equal(saved))

			gw.Reply = "second reply"
			Expect(chat.Submit(ctx, "two")).To(Succeed())
			prior, _ := gw.LastChat()
			Expect(prior).To(HaveLen(3))
		})

		It("keeps the greeting when the saved conversation is empty", func() {
			Expect(chat.Restore(nil)).To(Succeed())
			Expect(chat.Turns()).To(HaveLen(1))
		})

		It("refuses to restore into a closed view", func() {
			shell.Navigate(views.ViewDashboard)
			Expect(chat.Restore([]legal.Turn{{Role: legal.RoleUser, Content: "hi"}})).To(MatchError(views.ErrViewClosed))
		})
	})
})
