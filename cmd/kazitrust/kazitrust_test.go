package kazitrustcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	kazitrustcmder "github.com/kazitrust/kazitrust/cmd/kazitrust"
)

var _ = Describe("NewKazitrustCmd", func() {
	It("registers every subcommand", func() {
		cmd := kazitrustcmder.NewKazitrustCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"serve", "tui", "chat", "search", "translate", "analyze", "speak", "config", "version",
		))
	})

	It("has the global flags", func() {
		cmd := kazitrustcmder.NewKazitrustCmd()
		Expect(cmd.PersistentFlags().Lookup("debug").Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
