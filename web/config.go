// Package web serves the KaziTrust browser front end: one page with the
// navigation rail and the active task view, backed by a per-browser
// views.Shell.
package web

import (
	"time"
)

// Config is the web server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// SessionTTL is how long an idle browser session is kept.
	SessionTTL time.Duration

	// MaxMediaBytes is the contract upload limit.
	MaxMediaBytes int64

	// MCP mounts the MCP tool endpoint at /mcp.
	MCP bool
}
