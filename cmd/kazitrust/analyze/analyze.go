// Package analyzecmder provides the analyze command that checks a photo or
// video of an employment contract for red flags.
package analyzecmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/cliui"
	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/pkg/views"
)

// ErrRedFlags is returned with --strict when the analysis found warnings.
var ErrRedFlags = errors.New("contract has red flags")

type analyzeCommander struct {
	path      string
	strict    bool
	jsonOut   bool
	maxUpload int64
	baseURL   string

	configDir string
	debug     bool
}

const analyzeLongDesc string = `Check a contract photo or video for red flags.

The file is sent to the model, which summarizes the contract, lists its key
points and warns about terms that break Kenyan labor law: pay below the
minimum wage, missing leave, unlawful deductions, confiscated documents.

Only image and video files are accepted, up to --max-upload-bytes.

Use --strict to exit non-zero when any red flag is found, and --json to
print the raw analysis.

Examples:
  kazitrust analyze contract.jpg
  kazitrust analyze --strict contract.png
  kazitrust analyze --json walkthrough.mp4 | jq .warnings`

const analyzeShortDesc string = "Check a contract photo or video for red flags"

func NewAnalyzeCmd() *cobra.Command {
	cmder := &analyzeCommander{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: analyzeShortDesc,
		Long:  analyzeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.path = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.strict, "strict", false, "Exit non-zero when red flags are found")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the analysis as JSON")
	config.AddInt64Flag(cmd, config.Flags, config.FlagMaxUpload, &cmder.maxUpload)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)

	return cmd
}

func (c *analyzeCommander) run(cmd *cobra.Command) error {
	rt, err := start.New(start.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Cmd:       cmd,
		Flags:     []string{config.FlagMaxUpload, config.FlagGeminiBaseURL},
	})
	if err != nil {
		return err
	}

	data, mimeType, err := readMedia(c.path, rt.MaxMediaBytes())
	if err != nil {
		return err
	}
	rt.Logger.Debug("analyzing media", "path", c.path, "mime_type", mimeType, "bytes", len(data))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var res legal.MediaAnalysisResult
	analyze := func() error {
		res, err = rt.Gateway.AnalyzeMedia(ctx, data, mimeType)
		return err
	}

	out := cmd.OutOrStdout()
	if c.jsonOut {
		if err := analyze(); err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		if err := cliui.Step(out, "Analyzing "+filepath.Base(c.path), analyze); err != nil {
			return err
		}

		rendered, err := cliui.RenderMarkdown(cliui.AnalysisMarkdown(res))
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
	}

	if c.strict && !res.Passed() {
		return fmt.Errorf("%w: %d found", ErrRedFlags, len(res.Warnings))
	}
	return nil
}

// readMedia reads path, refusing files over limit and files that are not
// images or videos.
func readMedia(path string, limit int64) ([]byte, string, error) {
	data, mimeType, err := views.ReadMediaFile(path, limit)
	if err != nil {
		return nil, "", err
	}

	name := filepath.Base(path)
	switch {
	case int64(len(data)) > limit:
		return nil, "", fmt.Errorf("%w: %s is larger than %d bytes", views.ErrMediaTooLarge, name, limit)
	case len(data) == 0:
		return nil, "", fmt.Errorf("%w: %s is empty", views.ErrUnsupportedMedia, name)
	case !views.SupportedMedia(mimeType):
		return nil, "", fmt.Errorf("%w: %s is %s", views.ErrUnsupportedMedia, name, mimeType)
	}
	return data, mimeType, nil
}
