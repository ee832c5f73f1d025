// Package servecmder provides the serve command that runs the KaziTrust web
// front end.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kazitrust/kazitrust/pkg/config"
	"github.com/kazitrust/kazitrust/pkg/dotdir"
	"github.com/kazitrust/kazitrust/pkg/logger"
	"github.com/kazitrust/kazitrust/pkg/metrics"
	"github.com/kazitrust/kazitrust/pkg/start"
	"github.com/kazitrust/kazitrust/web"
)

type ServeCommander struct {
	configDir string
	debug     bool

	listen     string
	sessionTTL string
	mcp        bool
	baseURL    string
	voice      string
	maxUpload  int64

	logger *slog.Logger
}

const serveLongDesc string = `Serve the KaziTrust web front end.

Every browser gets its own session: the navigation rail, the active view and
any answers are kept in memory on the server and dropped after the session
has been idle for --session-ttl.

Besides the pages, the server exposes:
  GET  /ping       Health check
  GET  /metrics    Prometheus metrics
  POST /mcp        MCP tools for agent clients (disable with --mcp=false)

Examples:
  kazitrust serve
  kazitrust serve --listen :9090 --session-ttl 1h
  kazitrust serve --max-upload-bytes 10485760`

const serveShortDesc string = "Serve the KaziTrust web front end"

var serveFlags = []string{
	config.FlagListen,
	config.FlagSessionTTL,
	config.FlagMCP,
	config.FlagGeminiBaseURL,
	config.FlagVoice,
	config.FlagMaxUpload,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
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

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSessionTTL, &cmder.sessionTTL)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMCP, &cmder.mcp)
	config.AddStringFlag(cmd, config.Flags, config.FlagGeminiBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagVoice, &cmder.voice)
	config.AddInt64Flag(cmd, config.Flags, config.FlagMaxUpload, &cmder.maxUpload)

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	dir, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}

	// Records also go to kazitrust.log as JSON, whatever the terminal shows.
	logFile, err := start.OpenLog(dir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	c.logger = logger.Multi(
		logger.New(
			logger.WithDebug(c.debug),
			logger.WithAuto(),
			logger.WithPrefix("kazitrust"),
			logger.WithWriter(os.Stderr),
		),
		logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(logFile),
		),
	)

	m := metrics.New()
	rt, err := start.New(start.Options{
		ConfigDir: dir,
		Debug:     c.debug,
		Logger:    c.logger,
		Metrics:   m,
		Cmd:       cmd,
		Flags:     serveFlags,
	})
	if err != nil {
		return err
	}

	server, err := c.newServer(rt, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := server.Shutdown(); err != nil {
			c.logger.Warn("shutting down server", "error", err)
		}
	}()

	c.logger.Debug("loaded configuration",
		"config_dir", rt.Dir,
		"max_upload_bytes", rt.MaxMediaBytes(),
		"gemini_base_url", rt.Viper.GetString("gemini.base_url"),
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}

func (c *ServeCommander) newServer(rt *start.Runtime, m *metrics.Metrics) (*web.Server, error) {
	server, err := web.NewServer(web.Config{
		ListenAddr:    rt.Viper.GetString("server.listen"),
		SessionTTL:    rt.SessionTTL(),
		MaxMediaBytes: rt.MaxMediaBytes(),
		MCP:           rt.Viper.GetBool("server.mcp"),
	}, rt.Gateway, m, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating web server: %w", err)
	}
	return server, nil
}
