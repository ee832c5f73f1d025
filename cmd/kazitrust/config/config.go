// Package configcmder provides the config command for managing persistent
// kazitrust configuration stored in the .kazitrust/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent kazitrust configuration.

Configuration is stored as config.toml in the .kazitrust/ directory and
provides default values for command flags. CLI flags and KAZITRUST_*
environment variables take precedence over config file values.

The Gemini API key is never stored here. Set GEMINI_API_KEY in the
environment or in .kazitrust/.env instead.

Keys use dotted notation matching the TOML section structure:
  server.listen, server.session_ttl, server.mcp,
  gemini.base_url, gemini.voice,
  gemini.speech_model, gemini.translate_model, gemini.search_model,
  gemini.media_model, gemini.chat_model,
  media.max_upload_bytes, speech.player

Use subcommands to get, set, or list configuration values:
  kazitrust config set <key> <value>    Set a configuration value
  kazitrust config get <key>            Get a configuration value
  kazitrust config list                 List all configuration values

Examples:
  kazitrust config set server.listen :9090
  kazitrust config set gemini.voice Puck
  kazitrust config get media.max_upload_bytes
  kazitrust config list`

const configShortDesc string = "Manage persistent kazitrust configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
