package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config is the persistent kazitrust configuration stored as config.toml in
// the .kazitrust/ directory. The Gemini API key is deliberately absent: it
// only ever comes from the environment or a .env file.
type Config struct {
	Version int          `toml:"version"`
	Server  ServerConfig `toml:"server"`
	Gemini  GeminiConfig `toml:"gemini"`
	Media   MediaConfig  `toml:"media"`
	Speech  SpeechConfig `toml:"speech"`
}

// ServerConfig holds settings for "kazitrust serve".
type ServerConfig struct {
	Listen     string `toml:"listen,omitempty"`
	SessionTTL string `toml:"session_ttl,omitempty"`
	MCP        bool   `toml:"mcp"`
}

// GeminiConfig selects the model service endpoint, voice and per-task models.
type GeminiConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	Voice          string `toml:"voice,omitempty"`
	SpeechModel    string `toml:"speech_model,omitempty"`
	TranslateModel string `toml:"translate_model,omitempty"`
	SearchModel    string `toml:"search_model,omitempty"`
	MediaModel     string `toml:"media_model,omitempty"`
	ChatModel      string `toml:"chat_model,omitempty"`
}

// MediaConfig bounds contract uploads.
type MediaConfig struct {
	MaxUploadBytes int64 `toml:"max_upload_bytes,omitempty"`
}

// SpeechConfig configures local playback in the CLI and TUI.
type SpeechConfig struct {
	// Player is the audio player command line. Empty means auto-detect.
	Player string `toml:"player,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.session_ttl": {
		get: func(c *Config) string { return c.Server.SessionTTL },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for server.session_ttl: %w", err)
			}
			c.Server.SessionTTL = v
			return nil
		},
	},
	"server.mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.Server.MCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for server.mcp: %w", err)
			}
			c.Server.MCP = b
			return nil
		},
	},
	"gemini.base_url":        stringKey(func(c *Config) *string { return &c.Gemini.BaseURL }),
	"gemini.voice":           stringKey(func(c *Config) *string { return &c.Gemini.Voice }),
	"gemini.speech_model":    stringKey(func(c *Config) *string { return &c.Gemini.SpeechModel }),
	"gemini.translate_model": stringKey(func(c *Config) *string { return &c.Gemini.TranslateModel }),
	"gemini.search_model":    stringKey(func(c *Config) *string { return &c.Gemini.SearchModel }),
	"gemini.media_model":     stringKey(func(c *Config) *string { return &c.Gemini.MediaModel }),
	"gemini.chat_model":      stringKey(func(c *Config) *string { return &c.Gemini.ChatModel }),
	"media.max_upload_bytes": {
		get: func(c *Config) string {
			if c.Media.MaxUploadBytes == 0 {
				return ""
			}
			return strconv.FormatInt(c.Media.MaxUploadBytes, 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid value for media.max_upload_bytes: %q must be a positive integer", v)
			}
			c.Media.MaxUploadBytes = n
			return nil
		},
	},
	"speech.player": stringKey(func(c *Config) *string { return &c.Speech.Player }),
}
