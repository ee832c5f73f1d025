package testutils

import (
	"bytes"
	"strings"

	"github.com/spf13/cobra"
)

// RunCommand executes a subcommand on its own. The root's persistent
// --debug and --config-dir flags are added when missing. It returns
// everything written to stdout.
func RunCommand(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	if cmd.Flags().Lookup("debug") == nil {
		cmd.PersistentFlags().BoolP("debug", "d", false, "")
	}
	if cmd.Flags().Lookup("config-dir") == nil {
		cmd.PersistentFlags().String("config-dir", "", "")
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
