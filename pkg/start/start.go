// Package start assembles what every kazitrust command needs before it can
// do work: the resolved .kazitrust/ directory, layered settings, a logger and
// the instrumented model gateway.
package start

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/dotdir"
	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/gateway/gemini"
	"github.com/kazitrust/kazitrust/pkg/logger"
	"github.com/kazitrust/kazitrust/pkg/metrics"
)

const logFileName = "kazitrust.log"

// Options controls New.
type Options struct {
	// ConfigDir overrides .kazitrust/ resolution.
	ConfigDir string

	// Debug enables debug logging.
	Debug bool

	// Logger, when set, is used as-is. Otherwise a pretty logger writing to
	// os.Stderr is built.
	Logger *slog.Logger

	// Metrics, when set, records every gateway call.
	Metrics *metrics.Metrics

	// Cmd and Flags bind registered command flags (config.Flags keys) over
	// the file and environment layers.
	Cmd   *cobra.Command
	Flags []string
}

// Runtime is the assembled command environment.
type Runtime struct {
	Dir     string
	Viper   *viper.Viper
	Logger  *slog.Logger
	Gateway gateway.Gateway
}

// New resolves the config directory, loads .env files, reads settings and
// builds the gateway. It fails with gemini.ErrMissingAPIKey when no key is
// configured.
func New(opts Options) (*Runtime, error) {
	dir, err := dotdir.NewManager().Target(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if err := config.LoadDotEnv(dir); err != nil {
		return nil, err
	}

	v, err := config.InitViper(dir)
	if err != nil {
		return nil, err
	}
	if opts.Cmd != nil {
		config.BindRegisteredFlags(v, opts.Cmd, config.Flags, opts.Flags)
	}

	log := opts.Logger
	if log == nil {
		log = logger.New(
			logger.WithDebug(opts.Debug),
			logger.WithPretty(true),
			logger.WithPrefix("kazitrust"),
			logger.WithWriter(os.Stderr),
		)
	}

	client, err := NewGeminiClient(v, config.APIKey())
	if err != nil {
		return nil, err
	}

	var rec gateway.Recorder
	if opts.Metrics != nil {
		rec = opts.Metrics
	}

	return &Runtime{
		Dir:     dir,
		Viper:   v,
		Logger:  log,
		Gateway: gateway.Instrument(client, rec, log),
	}, nil
}

// NewGeminiClient builds a Gemini client from the gemini.* settings.
func NewGeminiClient(v *viper.Viper, apiKey string) (*gemini.Client, error) {
	return gemini.New(gemini.Config{
		APIKey:  apiKey,
		BaseURL: v.GetString("gemini.base_url"),
		Voice:   v.GetString("gemini.voice"),
		Models: gemini.Models{
			Speech:    v.GetString("gemini.speech_model"),
			Translate: v.GetString("gemini.translate_model"),
			Search:    v.GetString("gemini.search_model"),
			Media:     v.GetString("gemini.media_model"),
			Chat:      v.GetString("gemini.chat_model"),
		},
	})
}

// MaxMediaBytes is the configured upload limit.
func (r *Runtime) MaxMediaBytes() int64 {
	return r.Viper.GetInt64("media.max_upload_bytes")
}

// SessionTTL is the configured idle session lifetime.
func (r *Runtime) SessionTTL() time.Duration {
	return config.SessionTTL(r.Viper)
}

// PlayerCommand splits speech.player into argv. Nil means auto-detect.
func (r *Runtime) PlayerCommand() []string {
	return strings.Fields(r.Viper.GetString("speech.player"))
}

// LogPath is where full-screen commands send their logs.
func (r *Runtime) LogPath() string {
	return filepath.Join(r.Dir, logFileName)
}

// OpenLog opens LogPath for appending.
func OpenLog(dir string) (io.WriteCloser, error) {
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
