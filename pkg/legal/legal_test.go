package legal_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

var _ = Describe("Language", func() {
	DescribeTable("ParseLanguage",
		func(in string, want legal.Language) {
			got, err := legal.ParseLanguage(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("English", "English", legal.English),
		Entry("lower case", "kiswahili", legal.Kiswahili),
		Entry("short code", "sw", legal.Kiswahili),
		Entry("padded", "  Sheng ", legal.Sheng),
	)

	It("rejects unknown languages", func() {
		_, err := legal.ParseLanguage("French")
		Expect(err).To(MatchError(legal.ErrInvalidLanguage))
		Expect(legal.Language("French").Valid()).To(BeFalse())
	})

	It("lists every valid language", func() {
		for _, l := range legal.Languages() {
			Expect(l.Valid()).To(BeTrue())
		}
		Expect(legal.Languages()).To(HaveLen(3))
	})
})

var _ = Describe("MediaAnalysisResult", func() {
	It("passes only when there are no warnings", func() {
		Expect(legal.MediaAnalysisResult{Summary: "ok", Warnings: []string{}}.Passed()).To(BeTrue())
		Expect(legal.MediaAnalysisResult{Warnings: []string{"no notice period"}}.Passed()).To(BeFalse())
	})
})
