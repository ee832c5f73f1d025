package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on several commands (e.g., --voice on
// "kazitrust speak", "kazitrust tui" and "kazitrust serve").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddBoolFlag, AddInt64Flag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen        = "listen"
	FlagSessionTTL    = "session-ttl"
	FlagMCP           = "mcp"
	FlagGeminiBaseURL = "gemini-base-url"
	FlagVoice         = "voice"
	FlagMaxUpload     = "max-upload-bytes"
	FlagPlayer        = "player"
)

// Flags is the registry shared by all kazitrust commands.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "Address for the web server to listen on",
	},
	FlagSessionTTL: {
		Name:        "session-ttl",
		ViperKey:    "server.session_ttl",
		Description: "Idle time after which a browser session is discarded",
	},
	FlagMCP: {
		Name:        "mcp",
		ViperKey:    "server.mcp",
		Description: "Serve the MCP tool endpoint at /mcp",
	},
	FlagGeminiBaseURL: {
		Name:        "gemini-base-url",
		ViperKey:    "gemini.base_url",
		Description: "Base URL of the Gemini API",
	},
	FlagVoice: {
		Name:        "voice",
		ViperKey:    "gemini.voice",
		Description: "Prebuilt voice used for speech synthesis",
	},
	FlagMaxUpload: {
		Name:        "max-upload-bytes",
		ViperKey:    "media.max_upload_bytes",
		Description: "Largest contract image or video accepted for analysis",
	},
	FlagPlayer: {
		Name:        "player",
		ViperKey:    "speech.player",
		Description: "Audio player command (default: first of aplay, paplay, afplay, ffplay)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddInt64Flag registers an int64 flag on cmd from the given FlagSet.
func AddInt64Flag(cmd *cobra.Command, fs FlagSet, key string, target *int64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Int64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Int64Var(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaults returns a viper instance holding only NewDefaultConfig values.
func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
