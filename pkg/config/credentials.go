package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// API key environment variables, in order of precedence.
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
)

// LoadDotEnv loads KEY=value pairs from a .env file in the working directory
// and from the resolved config directory, without overriding variables that
// are already set. Missing files are ignored.
func LoadDotEnv(configDir string) error {
	paths := []string{".env"}
	if configDir != "" {
		paths = append(paths, filepath.Join(configDir, ".env"))
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the Gemini API key from the environment, or "" when unset.
func APIKey() string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return os.Getenv(EnvAPIKeyFallback)
}
