// Package kazitrustcmder
package kazitrustcmder

import (
	"github.com/spf13/cobra"

	analyzecmder "github.com/kazitrust/kazitrust/cmd/kazitrust/analyze"
	chatcmder "github.com/kazitrust/kazitrust/cmd/kazitrust/chat"
	configcmder "github.com/kazitrust/kazitrust/cmd/kazitrust/config"
	searchcmder "github.com/kazitrust/kazitrust/cmd/kazitrust/search"
	servecmder "github.com/kazitrust/kazitrust/cmd/kazitrust/serve"
	speakcmder "github.com/kazitrust/kazitrust/cmd/kazitrust/speak"
	translatecmder "github.com/kazitrust/kazitrust/cmd/kazitrust/translate"
	tuicmder "github.com/kazitrust/kazitrust/cmd/kazitrust/tui"
	versioncmder "github.com/kazitrust/kazitrust/cmd/version"
)

const kazitrustLongDesc string = `KaziTrust is legal help for domestic workers in Nairobi.

Ask about your rights, turn contract clauses into plain Kiswahili or Sheng,
check a photo of your contract for red flags, or talk to the AI counselor.
Answers come from Google Gemini; set GEMINI_API_KEY (or put it in a .env
file in ~/.kazitrust/).

Run the web app or the terminal app:
  kazitrust serve      Serve the browser front end
  kazitrust tui        Open the terminal front end

Or use a single tool:
  kazitrust search "How many leave days do I get?"
  kazitrust translate --language sheng < clause.txt
  kazitrust analyze contract.jpg
  kazitrust chat`

const kazitrustShortDesc string = "KaziTrust - labor rights help for domestic workers"

func NewKazitrustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "kazitrust",
		Short:        kazitrustShortDesc,
		Long:         kazitrustLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .kazitrust/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(translatecmder.NewTranslateCmd())
	cmd.AddCommand(analyzecmder.NewAnalyzeCmd())
	cmd.AddCommand(speakcmder.NewSpeakCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
