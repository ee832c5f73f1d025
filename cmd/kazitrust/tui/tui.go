// Package tuicmder provides the tui command, a full-screen terminal front
// end with the same five views as the web app.
package tuicmder

import (
	"context"
	"fmt"
	"os"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/dotdir"
	"github.com/kazitrust/kazitrust/pkg/logger"
	"github.com/kazitrust/kazitrust/pkg/speech"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/pkg/views"
)

type tuiCommander struct {
	voice     string
	player    string
	maxUpload int64
	baseURL   string

	configDir string
	debug     bool
}

const tuiLongDesc string = `Open the KaziTrust terminal app.

The terminal app has the same views as the web app: the home dashboard, the
rights explorer, the law translator, the contract media analyzer and the AI
counselor. Answers can be read aloud through the local audio player and saved
as WAV files in the current directory.

Keys:
  1-5      switch view
  i, /     type a question, clause, file path or message
  enter    send
  esc      stop typing
  tab      change language
  p        listen, pause, resume
  c        next audio clip
  w        save the audio clip as WAV
  q        quit

Logs are written to kazitrust.log in the .kazitrust/ directory.

Examples:
  kazitrust tui
  kazitrust tui --player "ffplay -nodisp -autoexit"`

const tuiShortDesc string = "Open the KaziTrust terminal app"

var tuiFlags = []string{
	config.FlagVoice,
	config.FlagPlayer,
	config.FlagMaxUpload,
	config.FlagGeminiBaseURL,
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagVoice, &cmder.voice)
	config.AddStringFlag(cmd, config.Flags, config.FlagPlayer, &cmder.player)
	config.AddInt64Flag(cmd, config.Flags, config.FlagMaxUpload, &cmder.maxUpload)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)

	return cmd
}

func (c *tuiCommander) run(cmd *cobra.Command) error {
	dir, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logFile, err := start.OpenLog(dir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log := logger.New(logger.WithDebug(c.debug), logger.WithWriter(logFile))

	rt, err := start.New(start.Options{
		ConfigDir: dir,
		Debug:     c.debug,
		Logger:    log,
		Cmd:       cmd,
		Flags:     tuiFlags,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shell := views.NewShell(views.Deps{
		Gateway:       rt.Gateway,
		Logger:        rt.Logger,
		MaxMediaBytes: rt.MaxMediaBytes(),
	})
	defer shell.Close()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	playerCommand := rt.PlayerCommand()
	newSink := func() speech.Sink {
		return speech.NewExecSink(playerCommand, rt.Logger)
	}

	model := newTUIModel(ctx, shell, newSink, rt.Logger, cwd)
	rt.Logger.Info("starting terminal app", "config_dir", rt.Dir)

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	final, err := program.Run()
	if m, ok := final.(tuiModel); ok {
		m.closePlayer()
	}
	return err
}
