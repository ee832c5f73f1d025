// Package speakcmder provides the speak command that reads text aloud and
// saves it as a WAV file.
package speakcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/audio"
	"github.com/kazitrust/kazitrust/pkg/cliui"
	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/speech"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/pkg/utils"
)

type speakCommander struct {
	text    string
	output  string
	info    bool
	play    bool
	voice   string
	player  string
	baseURL string

	configDir string
	debug     bool
}

const speakLongDesc string = `Read text aloud and save it as a WAV file.

The text is synthesized as 24kHz mono speech and written to --output, which
defaults to kazitrust-legal-summary-<timestamp>.wav in the current directory.
Use "-o -" to write the WAV to stdout.

Use --play to also play it through the local audio player (aplay, paplay,
afplay or ffplay, or --player), and --info to print the WAV header.

Examples:
  kazitrust speak "Una haki ya siku 21 za likizo kila mwaka."
  kazitrust translate -q < clause.txt | kazitrust speak --play
  kazitrust speak -o leave.wav --info --voice Puck "Annual leave"`

const speakShortDesc string = "Read text aloud and save it as a WAV file"

var speakFlags = []string{
	config.FlagVoice,
	config.FlagPlayer,
	config.FlagGeminiBaseURL,
}

func NewSpeakCmd() *cobra.Command {
	cmder := &speakCommander{}

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: speakShortDesc,
		Long:  speakLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.text, err = utils.ArgsOrReader(args, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("text to speak is required: %w", err)
			}

			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "WAV file to write, or - for stdout (default: kazitrust-legal-summary-<timestamp>.wav)")
	cmd.Flags().BoolVar(&cmder.info, "info", false, "Print the WAV header after writing")
	cmd.Flags().BoolVarP(&cmder.play, "play", "p", false, "Play the audio after writing")
	config.AddStringFlag(cmd, config.Flags, config.FlagVoice, &cmder.voice)
	config.AddStringFlag(cmd, config.Flags, config.FlagPlayer, &cmder.player)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)

	return cmd
}

func (c *speakCommander) run(cmd *cobra.Command) error {
	rt, err := start.New(start.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Cmd:       cmd,
		Flags:     speakFlags,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Status lines go to stderr when the WAV itself goes to stdout.
	status := cmd.OutOrStdout()
	if c.output == "-" {
		status = cmd.ErrOrStderr()
	}

	clip := speech.NewClip(rt.Gateway, c.text)

	var wav []byte
	fmt.Fprintln(status)
	err = cliui.Step(status, "Synthesizing speech", func() error {
		wav, err = clip.WAV(ctx)
		return err
	})
	if err != nil {
		return err
	}

	path, err := c.write(cmd.OutOrStdout(), wav)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(status, "  %s Saved %s\n", cliui.SuccessMark, cliui.ValueStyle.Render(path))
	}

	if c.info {
		if err := printInfo(status, wav); err != nil {
			return err
		}
	}

	if c.play {
		sink := speech.NewExecSink(rt.PlayerCommand(), rt.Logger)
		return Play(ctx, speech.NewPlayer(clip, sink, rt.Logger))
	}
	return nil
}

// write stores wav at the output path and returns it, or streams it to out
// for "-".
func (c *speakCommander) write(out io.Writer, wav []byte) (string, error) {
	if c.output == "-" {
		_, err := out.Write(wav)
		return "", err
	}

	path := c.output
	if path == "" {
		path = speech.DownloadName(time.Now())
	}
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return "", fmt.Errorf("writing WAV: %w", err)
	}
	return path, nil
}

func printInfo(w io.Writer, wav []byte) error {
	header, err := audio.ParseWAVHeader(wav)
	if err != nil {
		return err
	}

	rows := []struct {
		key   string
		value string
	}{
		{"Sample rate:", fmt.Sprintf("%d Hz", header.SampleRate)},
		{"Channels:", fmt.Sprintf("%d", header.NumChannels)},
		{"Bits per sample:", fmt.Sprintf("%d", header.BitsPerSample)},
		{"Byte rate:", fmt.Sprintf("%d", header.ByteRate)},
		{"Block align:", fmt.Sprintf("%d", header.BlockAlign)},
		{"Data size:", fmt.Sprintf("%d bytes", header.DataSize)},
		{"Duration:", cliui.FormatDuration(header.Duration())},
	}

	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "  %-18s %s\n", cliui.KeyStyle.Render(row.key), cliui.ValueStyle.Render(row.value))
	}
	fmt.Fprintln(w)
	return nil
}

// Play starts p and blocks until playback ends on its own or ctx is done,
// in which case playback is stopped.
func Play(ctx context.Context, p *speech.Player) error {
	ended := make(chan struct{})
	var once sync.Once
	p.OnChange(func(s speech.State) {
		if s == speech.Idle {
			once.Do(func() { close(ended) })
		}
	})

	if err := p.Toggle(ctx); err != nil {
		return err
	}

	select {
	case <-ended:
		return nil
	case <-ctx.Done():
		return p.Close()
	}
}
