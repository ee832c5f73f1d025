package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

// Recorder receives one observation per gateway call. *metrics.Metrics
// satisfies it.
type Recorder interface {
	ObserveGatewayCall(operation, outcome string, elapsed time.Duration)
	ObserveSpeech(pcmBytes int)
}

type instrumented struct {
	next     Gateway
	recorder Recorder
	logger   *slog.Logger
}

// Instrument wraps next so every call is logged and, when recorder is not
// nil, recorded as a metric. Errors pass through unchanged.
func Instrument(next Gateway, recorder Recorder, logger *slog.Logger) Gateway {
	return &instrumented{
		next:     next,
		recorder: recorder,
		logger:   logger.With("component", "gateway"),
	}
}

func (g *instrumented) observe(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	elapsed := time.Since(start)
	if g.recorder != nil {
		g.recorder.ObserveGatewayCall(op, Outcome(err), elapsed)
	}

	attrs = append(attrs, "operation", op, "elapsed", elapsed)
	if err != nil {
		g.logger.WarnContext(ctx, "gateway call failed", append(attrs, "error", err)...)
		return
	}
	g.logger.DebugContext(ctx, "gateway call", attrs...)
}

func (g *instrumented) FetchSpeech(ctx context.Context, text string) ([]byte, error) {
	start := time.Now()
	pcm, err := g.next.FetchSpeech(ctx, text)
	if err == nil && g.recorder != nil {
		g.recorder.ObserveSpeech(len(pcm))
	}
	g.observe(ctx, OpSpeech, start, err, "chars", len(text), "pcm_bytes", len(pcm))
	return pcm, err
}

func (g *instrumented) TranslateLegalese(ctx context.Context, text string, lang legal.Language) (legal.TranslationResult, error) {
	start := time.Now()
	res, err := g.next.TranslateLegalese(ctx, text, lang)
	g.observe(ctx, OpTranslate, start, err, "language", lang, "citations", len(res.Citations))
	return res, err
}

func (g *instrumented) SearchLaborLaws(ctx context.Context, query string, lang legal.Language) (legal.SearchResult, error) {
	start := time.Now()
	res, err := g.next.SearchLaborLaws(ctx, query, lang)
	g.observe(ctx, OpSearch, start, err, "language", lang, "sources", len(res.Sources))
	return res, err
}

func (g *instrumented) AnalyzeMedia(ctx context.Context, media []byte, mimeType string) (legal.MediaAnalysisResult, error) {
	start := time.Now()
	res, err := g.next.AnalyzeMedia(ctx, media, mimeType)
	g.observe(ctx, OpMedia, start, err, "mime_type", mimeType, "bytes", len(media), "warnings", len(res.Warnings))
	return res, err
}

func (g *instrumented) ChatWithWorker(ctx context.Context, prior []legal.Turn, message string) (string, error) {
	start := time.Now()
	reply, err := g.next.ChatWithWorker(ctx, prior, message)
	g.observe(ctx, OpChat, start, err, "prior_turns", len(prior))
	return reply, err
}
