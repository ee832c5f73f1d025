// Package translatecmder provides the translate command that rewrites a
// legal passage in plain language.
package translatecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/cliui"
	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/pkg/utils"
)

type translateCommander struct {
	text     string
	language string
	quiet    bool
	baseURL  string

	configDir string
	debug     bool
}

const translateLongDesc string = `Translate legal text into plain language.

Contract clauses and sections of the Employment Act are rewritten in simple
Kiswahili, Sheng or English, with a short note on why the clause matters and
the law it refers to.

The text is taken from the arguments, or from stdin when none are given.
Use --quiet to print only the simplified text.

Examples:
  kazitrust translate "The employee shall be entitled to not less than twenty-one working days of leave"
  kazitrust translate --language sheng < clause.txt
  pbpaste | kazitrust translate -L en`

const translateShortDesc string = "Translate legal text into plain language"

func NewTranslateCmd() *cobra.Command {
	cmder := &translateCommander{}

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: translateShortDesc,
		Long:  translateLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.text, err = utils.ArgsOrReader(args, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("text to translate is required: %w", err)
			}

			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.language, "language", "L", string(legal.Kiswahili), "Target language (English, Kiswahili, Sheng)")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Print only the simplified text")
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)

	return cmd
}

func (c *translateCommander) run(cmd *cobra.Command) error {
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

	var res legal.TranslationResult
	translate := func() error {
		res, err = rt.Gateway.TranslateLegalese(ctx, c.text, lang)
		return err
	}

	out := cmd.OutOrStdout()
	if c.quiet {
		if err := translate(); err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, res.Translated)
		return err
	}

	fmt.Fprintln(out)
	if err := cliui.Step(out, fmt.Sprintf("Translating into %s", lang), translate); err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(cliui.TranslationMarkdown(res))
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}
