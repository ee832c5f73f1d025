package web

import (
	"errors"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/logger"
	"github.com/kazitrust/kazitrust/pkg/metrics"
	"github.com/kazitrust/kazitrust/pkg/views"
	kazimcp "github.com/kazitrust/kazitrust/web/mcp"
)

// formOverhead is the body allowance for multipart framing on top of the
// media limit.
const formOverhead = 1 << 20

// Server is the KaziTrust web server.
type Server struct {
	config   Config
	gateway  gateway.Gateway
	metrics  *metrics.Metrics
	logger   *slog.Logger
	app      *fiber.App
	sessions *SessionStore
	pages    *template.Template

	stop     chan struct{}
	stopOnce sync.Once
}

// NewServer creates the web server. The gateway is shared by every session;
// metrics may be nil, in which case /metrics is not mounted.
func NewServer(config Config, gw gateway.Gateway, m *metrics.Metrics, log *slog.Logger) (*Server, error) {
	if gw == nil {
		return nil, errors.New("gateway is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if config.MaxMediaBytes <= 0 {
		config.MaxMediaBytes = views.DefaultMaxMediaBytes
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	// Form values are kept by the views after the request returns.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		BodyLimit:             int(config.MaxMediaBytes + formOverhead),
	})

	s := &Server{
		config:  config,
		gateway: gw,
		metrics: m,
		logger:  log.With("component", "web"),
		app:     app,
		pages:   pages,
		stop:    make(chan struct{}),
	}

	var onCount func(int)
	if m != nil {
		onCount = m.SetActiveSessions
		app.Use(s.observeRequest)
	}
	s.sessions = NewSessionStore(views.Deps{
		Gateway:       gw,
		Logger:        s.logger,
		MaxMediaBytes: config.MaxMediaBytes,
	}, config.SessionTTL, s.logger, onCount)

	app.Get("/ping", s.handlePing)
	app.Get("/", s.handlePage)
	app.Post("/nav/:view", s.handleNavigate)
	app.Post("/search", s.handleSearch)
	app.Post("/translate", s.handleTranslate)
	app.Post("/media", s.handleMedia)
	app.Post("/chat", s.handleChat)
	app.Get("/speech/:clip", s.handleSpeech)

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	if config.MCP {
		mcpServer, err := kazimcp.NewServer(kazimcp.Config{
			Gateway: gw,
			Logger:  s.logger,
		})
		if err != nil {
			return nil, err
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// observeRequest records every request against its route pattern.
func (s *Server) observeRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	s.metrics.ObserveHTTPRequest(c.Method(), c.Route().Path, statusText(status), time.Since(start))
	return err
}

// Sessions exposes the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Run starts the web server on the configured address and sweeps idle
// sessions until Shutdown.
func (s *Server) Run() error {
	s.logger.Info("starting web server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.MCP,
		"session_ttl", s.config.SessionTTL.String(),
	)

	if s.config.SessionTTL > 0 {
		go s.sweep(s.config.SessionTTL / 2)
	}

	return s.app.Listen(s.config.ListenAddr)
}

func (s *Server) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sessions.Sweep()
		}
	}
}

// Shutdown gracefully shuts down the web server and discards all sessions.
func (s *Server) Shutdown() error {
	s.stopOnce.Do(func() { close(s.stop) })
	err := s.app.Shutdown()
	s.sessions.Close()
	return err
}
