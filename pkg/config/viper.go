package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kazitrust/kazitrust/pkg/dotdir"
)

// EnvPrefix prefixes every environment variable read through viper.
const EnvPrefix = "KAZITRUST"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the KAZITRUST_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (KAZITRUST_SERVER_LISTEN, KAZITRUST_GEMINI_VOICE, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.mcp", d.Server.MCP)

	// Gemini
	v.SetDefault("gemini.base_url", d.Gemini.BaseURL)
	v.SetDefault("gemini.voice", d.Gemini.Voice)
	v.SetDefault("gemini.speech_model", d.Gemini.SpeechModel)
	v.SetDefault("gemini.translate_model", d.Gemini.TranslateModel)
	v.SetDefault("gemini.search_model", d.Gemini.SearchModel)
	v.SetDefault("gemini.media_model", d.Gemini.MediaModel)
	v.SetDefault("gemini.chat_model", d.Gemini.ChatModel)

	// Media
	v.SetDefault("media.max_upload_bytes", d.Media.MaxUploadBytes)

	// Speech
	v.SetDefault("speech.player", d.Speech.Player)
}

// SessionTTL reads server.session_ttl, falling back to the default for an
// unparseable or non-positive value.
func SessionTTL(v *viper.Viper) time.Duration {
	ttl, err := time.ParseDuration(v.GetString("server.session_ttl"))
	if err != nil || ttl <= 0 {
		ttl, _ = time.ParseDuration(defaultSessionTTL)
	}
	return ttl
}
