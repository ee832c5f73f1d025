// Package gateway defines the boundary between kazitrust and the hosted
// generative-language service. Views depend on Gateway; pkg/gateway/gemini
// provides the production implementation.
package gateway

import (
	"context"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

// Operation names, used for logging and metrics labels.
const (
	OpSpeech    = "speech"
	OpTranslate = "translate"
	OpSearch    = "search"
	OpMedia     = "media"
	OpChat      = "chat"
)

// Gateway issues the five model requests kazitrust needs. Implementations
// must be safe for concurrent use.
type Gateway interface {
	// FetchSpeech synthesizes text as raw 24kHz mono 16-bit PCM. It returns
	// ErrNoAudio when the response carries no audio payload.
	FetchSpeech(ctx context.Context, text string) ([]byte, error)

	// TranslateLegalese rewrites a legal passage in lang with an explanation
	// and statutory citations.
	TranslateLegalese(ctx context.Context, text string, lang legal.Language) (legal.TranslationResult, error)

	// SearchLaborLaws answers a labor-rights question in lang, grounded on web
	// search results.
	SearchLaborLaws(ctx context.Context, query string, lang legal.Language) (legal.SearchResult, error)

	// AnalyzeMedia summarizes a contract image or video and flags risks.
	AnalyzeMedia(ctx context.Context, media []byte, mimeType string) (legal.MediaAnalysisResult, error)

	// ChatWithWorker continues a counseling conversation. prior holds the
	// turns before message and may be empty.
	ChatWithWorker(ctx context.Context, prior []legal.Turn, message string) (string, error)
}
