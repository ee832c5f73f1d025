package config

import (
	"github.com/kazitrust/kazitrust/pkg/gateway/gemini"
	"github.com/kazitrust/kazitrust/pkg/views"
)

const (
	defaultListen     = ":8080"
	defaultSessionTTL = "30m"
	defaultMCP        = true
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen:     defaultListen,
			SessionTTL: defaultSessionTTL,
			MCP:        defaultMCP,
		},
		Gemini: GeminiConfig{
			BaseURL:        gemini.DefaultBaseURL,
			Voice:          gemini.DefaultVoice,
			SpeechModel:    gemini.DefaultSpeechModel,
			TranslateModel: gemini.DefaultTranslateModel,
			SearchModel:    gemini.DefaultSearchModel,
			MediaModel:     gemini.DefaultMediaModel,
			ChatModel:      gemini.DefaultChatModel,
		},
		Media: MediaConfig{
			MaxUploadBytes: views.DefaultMaxMediaBytes,
		},
	}
}
