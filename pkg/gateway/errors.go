package gateway

import (
	"context"
	"errors"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

var (
	// ErrTransport covers network failures and non-2xx responses.
	ErrTransport = errors.New("model service request failed")

	// ErrUpstreamParse is returned when a structured response is not valid JSON.
	ErrUpstreamParse = errors.New("model service returned an unparseable response")

	// ErrNoAudio is returned by FetchSpeech when no audio payload was returned.
	ErrNoAudio = errors.New("model service returned no audio")

	ErrInvalidLanguage = legal.ErrInvalidLanguage
)

// Outcome classifies err into a short label for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrUpstreamParse):
		return "parse"
	case errors.Is(err, ErrNoAudio):
		return "no_audio"
	case errors.Is(err, ErrInvalidLanguage):
		return "invalid_input"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
