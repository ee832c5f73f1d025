package searchcmder_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	searchcmder "github.com/kazitrust/kazitrust/cmd/kazitrust/search"
	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/legal"
	testutils "github.com/kazitrust/kazitrust/pkg/utils/test"
)

var _ = Describe("NewSearchCmd", func() {
	It("has a --language flag defaulting to English", func() {
		cmd := searchcmder.NewSearchCmd()
		flag := cmd.Flags().Lookup("language")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("L"))
		Expect(flag.DefValue).To(Equal(string(legal.English)))
	})

	It("has a --quiet flag", func() {
		cmd := searchcmder.NewSearchCmd()
		Expect(cmd.Flags().Lookup("quiet").Shorthand).To(Equal("q"))
	})
})

var _ = Describe("Search command execution", func() {
	var (
		fake *testutils.FakeGemini
		dir  string
	)

	BeforeEach(func() {
		fake = testutils.NewFakeGemini()
		DeferCleanup(fake.Close)
		fake.Env(GinkgoT())
		dir = GinkgoT().TempDir()
	})

	It("prints the answer and its sources", func() {
		fake.Respond(gateway.OpSearch, testutils.GeminiGrounded(
			"Domestic workers get 21 days of annual leave.",
			"Employment Act 2007",
			"https://kenyalaw.org/employment-act",
		))

		out, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "",
			"--config-dir", dir, "--quiet", "Annual leave allowance")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Domestic workers get 21 days of annual leave.\nhttps://kenyalaw.org/employment-act\n"))
		Expect(fake.Calls(gateway.OpSearch)).To(Equal(1))
	})

	It("renders markdown with a Sources section", func() {
		fake.Respond(gateway.OpSearch, testutils.GeminiGrounded(
			"Notice must be given in writing.",
			"Employment Act 2007",
			"https://kenyalaw.org/employment-act",
		))

		out, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "",
			"--config-dir", dir, "Termination without notice laws")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Searching labor laws"))
		Expect(out).To(ContainSubstring("Sources"))
		Expect(out).To(ContainSubstring("Employment Act 2007"))
	})

	It("reads the question from stdin", func() {
		fake.Respond(gateway.OpSearch, testutils.GeminiText("Ndio."))

		out, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "Unpaid salary dispute process\n",
			"--config-dir", dir, "-q", "-L", "sw")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Ndio.\n"))
	})

	It("rejects an unsupported language before calling the model", func() {
		_, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "",
			"--config-dir", dir, "-L", "french", "leave")
		Expect(err).To(MatchError(legal.ErrInvalidLanguage))
		Expect(fake.Calls(gateway.OpSearch)).To(BeZero())
	})

	It("fails without a question", func() {
		_, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "", "--config-dir", dir)
		Expect(err).To(MatchError(ContainSubstring("a question is required")))
	})

	It("returns gateway failures", func() {
		fake.Fail(http.StatusServiceUnavailable)

		_, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "",
			"--config-dir", dir, "-q", "leave")
		Expect(err).To(MatchError(gateway.ErrTransport))
	})
})
