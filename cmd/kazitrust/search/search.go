// Package searchcmder provides the search command for asking a labor-rights
// question from the terminal.
package searchcmder

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/cliui"
	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/pkg/utils"
)

type searchCommander struct {
	query    string
	language string
	quiet    bool
	baseURL  string

	configDir string
	debug     bool
}

const searchLongDesc string = `Ask a question about Kenyan labor law.

The answer is grounded on a live web search and lists the pages it was drawn
from. Answers can be given in English, Kiswahili or Sheng.

Use --quiet to print only the answer text and source links, one per line.

Examples:
  kazitrust search "Minimum wage for house help in Nairobi"
  kazitrust search --language sw "Je, ninaweza kufukuzwa bila notisi?"
  echo "Annual leave allowance" | kazitrust search`

const searchShortDesc string = "Ask a labor-rights question"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search [question]",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.query, err = utils.ArgsOrReader(args, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("a question is required: %w", err)
			}

			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.language, "language", "L", string(legal.English), "Answer language (English, Kiswahili, Sheng)")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print only the answer and source links")
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)

	return cmd
}

func (c *searchCommander) run(cmd *cobra.Command) error {
	lang, err := legal.ParseLanguage(c.language)
	if err != nil {
		return err
	}

	rt, err := start.New(start.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Cmd:       cmd,
		Flags:     []string{config.FlagGeminiBaseURL},
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var res legal.SearchResult
	search := func() error {
		res, err = rt.Gateway.SearchLaborLaws(ctx, c.query, lang)
		return err
	}

	out := cmd.OutOrStdout()
	if c.quiet {
		if err := search(); err != nil {
			return err
		}
		return printQuiet(out, res)
	}

	fmt.Fprintln(out)
	if err := cliui.Step(out, "Searching labor laws", search); err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(cliui.SearchMarkdown(res))
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}

func printQuiet(out io.Writer, res legal.SearchResult) error {
	if _, err := fmt.Fprintln(out, res.Text); err != nil {
		return err
	}
	for _, src := range res.Sources {
		if _, err := fmt.Fprintln(out, src.URI); err != nil {
			return err
		}
	}
	return nil
}
