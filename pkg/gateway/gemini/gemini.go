// Package gemini implements gateway.Gateway over the Gemini generateContent
// REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/legal"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultVoice   = "Kore"

	DefaultSpeechModel    = "gemini-2.5-flash-preview-tts"
	DefaultTranslateModel = "gemini-flash-lite-latest"
	DefaultSearchModel    = "gemini-3-flash-preview"
	DefaultMediaModel     = "gemini-3-pro-preview"
	DefaultChatModel      = "gemini-3-pro-preview"

	roleUser  = "user"
	roleModel = "model"

	// maxErrorBody bounds how much of a failed response is kept in APIError.
	maxErrorBody = 4096
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini API key is not set (GEMINI_API_KEY)")

// Models names the model used for each gateway operation.
type Models struct {
	Speech    string
	Translate string
	Search    string
	Media     string
	Chat      string
}

// Config holds the settings for a Client. Zero values fall back to the
// defaults above.
type Config struct {
	APIKey  string
	BaseURL string
	Voice   string
	Models  Models

	// HTTPClient overrides the default client with a 5 minute timeout.
	HTTPClient *http.Client
}

// APIError is a non-2xx response from the Gemini API. It matches
// gateway.ErrTransport under errors.Is.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error (status %d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return gateway.ErrTransport
}

// Client talks to the Gemini API. It is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	voice      string
	models     Models
	httpClient *http.Client
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		voice:      orDefault(cfg.Voice, DefaultVoice),
		httpClient: cfg.HTTPClient,
		models: Models{
			Speech:    orDefault(cfg.Models.Speech, DefaultSpeechModel),
			Translate: orDefault(cfg.Models.Translate, DefaultTranslateModel),
			Search:    orDefault(cfg.Models.Search, DefaultSearchModel),
			Media:     orDefault(cfg.Models.Media, DefaultMediaModel),
			Chat:      orDefault(cfg.Models.Chat, DefaultChatModel),
		},
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			// Speech synthesis and video analysis can be slow.
			Timeout: 5 * time.Minute,
		}
	}
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FetchSpeech synthesizes text with the configured prebuilt voice.
func (c *Client) FetchSpeech(ctx context.Context, text string) ([]byte, error) {
	req := &generateRequest{
		Contents: []content{{Parts: []part{{Text: speechPrompt(text)}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: c.voice}},
			},
		},
	}

	resp, err := c.generate(ctx, c.models.Speech, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, gateway.ErrNoAudio
	}
	inline := resp.Candidates[0].Content.Parts[0].InlineData
	if inline == nil || inline.Data == "" {
		return nil, gateway.ErrNoAudio
	}

	pcm, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode audio payload: %w", gateway.ErrUpstreamParse, err)
	}
	return pcm, nil
}

// TranslateLegalese translates text into lang using a JSON response schema.
func (c *Client) TranslateLegalese(ctx context.Context, text string, lang legal.Language) (legal.TranslationResult, error) {
	if !lang.Valid() {
		return legal.TranslationResult{}, fmt.Errorf("%w: %q", gateway.ErrInvalidLanguage, lang)
	}

	req := &generateRequest{
		Contents: []content{{Role: roleUser, Parts: []part{{Text: translatePrompt(text, lang)}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   translationSchema,
		},
	}

	resp, err := c.generate(ctx, c.models.Translate, req)
	if err != nil {
		return legal.TranslationResult{}, err
	}

	var payload translationPayload
	if err := decodeStructured(resp.text(), &payload); err != nil {
		return legal.TranslationResult{}, err
	}

	return legal.TranslationResult{
		Original:    text,
		Translated:  payload.Translated,
		Explanation: payload.Explanation,
		Citations:   nonNil(payload.Citations),
	}, nil
}

// SearchLaborLaws answers query in lang with Google Search grounding.
func (c *Client) SearchLaborLaws(ctx context.Context, query string, lang legal.Language) (legal.SearchResult, error) {
	if !lang.Valid() {
		return legal.SearchResult{}, fmt.Errorf("%w: %q", gateway.ErrInvalidLanguage, lang)
	}

	req := &generateRequest{
		Contents: []content{{Role: roleUser, Parts: []part{{Text: searchPrompt(query, lang)}}}},
		Tools:    []tool{{GoogleSearch: &struct{}{}}},
	}

	resp, err := c.generate(ctx, c.models.Search, req)
	if err != nil {
		return legal.SearchResult{}, err
	}

	return legal.SearchResult{
		Text:    resp.text(),
		Sources: resp.sources(),
	}, nil
}

// AnalyzeMedia sends media inline with the contract-risk instruction.
func (c *Client) AnalyzeMedia(ctx context.Context, media []byte, mimeType string) (legal.MediaAnalysisResult, error) {
	req := &generateRequest{
		Contents: []content{{
			Role: roleUser,
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(media)}},
				{Text: mediaInstruction},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	}

	resp, err := c.generate(ctx, c.models.Media, req)
	if err != nil {
		return legal.MediaAnalysisResult{}, err
	}

	var payload analysisPayload
	if err := decodeStructured(resp.text(), &payload); err != nil {
		return legal.MediaAnalysisResult{}, err
	}

	return legal.MediaAnalysisResult{
		Summary:   payload.Summary,
		KeyPoints: nonNil(payload.KeyPoints),
		Warnings:  nonNil(payload.Warnings),
	}, nil
}

// ChatWithWorker sends the conversation so far plus message under the
// KaziTrust persona and returns the reply text.
func (c *Client) ChatWithWorker(ctx context.Context, prior []legal.Turn, message string) (string, error) {
	req := &generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: chatPersona}}},
		Contents:          append(historyContents(prior), content{Role: roleUser, Parts: []part{{Text: message}}}),
	}

	resp, err := c.generate(ctx, c.models.Chat, req)
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// historyContents converts prior turns to API contents. The API requires a
// conversation to open with a user turn, so assistant turns before the first
// user turn (such as the greeting) are dropped.
func historyContents(prior []legal.Turn) []content {
	contents := make([]content, 0, len(prior)+1)
	for _, turn := range prior {
		role := roleUser
		if turn.Role == legal.RoleAssistant {
			role = roleModel
		}
		if role == roleModel && len(contents) == 0 {
			continue
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: turn.Content}}})
	}
	return contents
}

func (c *Client) generate(ctx context.Context, model string, body *generateRequest) (*generateResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", gateway.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", gateway.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", gateway.ErrUpstreamParse, err)
	}
	return &result, nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Status = parsed.Error.Status
		apiErr.Message = parsed.Error.Message
		return apiErr
	}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// text concatenates the non-thought text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// sources returns the web grounding chunks of the first candidate that carry
// a URI, in order and without de-duplication.
func (r *generateResponse) sources() []legal.GroundingSource {
	sources := []legal.GroundingSource{}
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return sources
	}
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, legal.GroundingSource{
			Title: orDefault(chunk.Web.Title, defaultSourceTitle),
			URI:   chunk.Web.URI,
		})
	}
	return sources
}

// decodeStructured parses a JSON-schema response. An empty body is treated
// as an empty object.
func decodeStructured(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "{}"
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: %w", gateway.ErrUpstreamParse, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
