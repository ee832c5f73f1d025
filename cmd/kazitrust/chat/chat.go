// Package chatcmder provides the chat command for talking to the KaziTrust
// AI counselor from the terminal.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/cliui"
	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/dotdir"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/pkg/views"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	counselorPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("kazitrust> ")
)

type chatCommander struct {
	resume  bool
	baseURL string

	configDir string
	debug     bool

	dotdir *dotdir.Manager
	dir    string
	logger *slog.Logger
}

const chatLongDesc string = `Talk to the KaziTrust AI counselor.

The counselor answers questions about pay, leave, notice and what to do when
your employer breaks the law. The conversation lives only as long as the
command runs. With --resume it is kept in .kazitrust/chat.json after every
message and picked up again the next time you pass --resume.

Type /exit or press Ctrl+D to quit, /new to start over.

Examples:
  kazitrust chat
  kazitrust chat --resume`

const chatShortDesc string = "Talk to the AI counselor"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
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

	cmd.Flags().BoolVarP(&cmder.resume, "resume", "r", false, "Resume the saved conversation and keep saving it")
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	rt, err := start.New(start.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Cmd:       cmd,
		Flags:     []string{config.FlagGeminiBaseURL},
	})
	if err != nil {
		return err
	}
	c.dotdir = dotdir.NewManager()
	c.dir = rt.Dir
	c.logger = rt.Logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shell := views.NewShell(views.Deps{Gateway: rt.Gateway, Logger: rt.Logger})
	defer shell.Close()

	out := cmd.OutOrStdout()
	chat, err := c.open(out, shell)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit, /new to start over."))
	printTurns(out, chat.Turns())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(out)
			return nil
		case "/new":
			chat, err = c.restart(shell)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			printTurns(out, chat.Turns())
			continue
		}

		before := len(chat.Turns())
		err = cliui.Step(out, "KaziTrust is thinking", func() error {
			return chat.Submit(ctx, input)
		})
		if err != nil {
			return err
		}

		turns := chat.Turns()
		printTurns(out, turns[before+1:])
		if c.resume {
			if err := c.save(turns); err != nil {
				c.logger.Warn("saving transcript", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out)
	return nil
}

// open activates the chat view, restoring the saved transcript when
// --resume was given.
func (c *chatCommander) open(out io.Writer, shell *views.Shell) (*views.ChatView, error) {
	chat := shell.Navigate(views.ViewChat).(*views.ChatView)

	fmt.Fprintln(out)
	if !c.resume {
		fmt.Fprintf(out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
		return chat, nil
	}

	transcript, err := c.dotdir.LoadTranscript(c.dir)
	if err != nil {
		return nil, fmt.Errorf("loading transcript: %w", err)
	}
	if transcript == nil || len(transcript.Turns) == 0 {
		fmt.Fprintf(out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
		return chat, nil
	}

	if err := chat.Restore(transcript.Turns); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "  %s Resuming conversation %s\n\n",
		cliui.SuccessMark,
		cliui.DimStyle.Render(fmt.Sprintf("(%d messages, saved %s)", len(transcript.Turns), transcript.SavedAt.Local().Format("2 Jan 15:04"))),
	)
	return chat, nil
}

// restart navigates away from the chat view and back, discarding the
// conversation. A resumed conversation also loses its saved transcript.
func (c *chatCommander) restart(shell *views.Shell) (*views.ChatView, error) {
	shell.Navigate(views.ViewDashboard)
	chat := shell.Navigate(views.ViewChat).(*views.ChatView)
	if !c.resume {
		return chat, nil
	}
	if err := c.dotdir.ClearTranscript(c.dir); err != nil {
		return nil, err
	}
	return chat, nil
}

func (c *chatCommander) save(turns []legal.Turn) error {
	return c.dotdir.SaveTranscript(&dotdir.Transcript{Turns: turns}, c.dir)
}

func printTurns(out io.Writer, turns []legal.Turn) {
	for _, turn := range turns {
		if turn.Role == legal.RoleUser {
			fmt.Fprintf(out, "%s%s\n\n", userPrompt, turn.Content)
			continue
		}
		fmt.Fprintf(out, "%s%s\n\n", counselorPrompt, turn.Content)
	}
}
