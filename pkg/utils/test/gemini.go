package testutils

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/kazitrust/kazitrust/pkg/gateway"
)

// FakeGemini is an httptest server speaking the generateContent API. It
// tells operations apart by the shape of the request body and answers with
// the canned body configured for that operation.
type FakeGemini struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]string
	status    int
	calls     map[string]int
}

// NewFakeGemini starts a fake. Callers must Close it.
func NewFakeGemini() *FakeGemini {
	f := &FakeGemini{
		responses: make(map[string]string),
		calls:     make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// Respond sets the JSON body returned for op (one of the gateway.Op*
// constants).
func (f *FakeGemini) Respond(op, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[op] = body
}

// Fail makes every call answer with status and a Gemini error body.
func (f *FakeGemini) Fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// Calls returns how many requests were classified as op.
func (f *FakeGemini) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FakeGemini) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	op := classify(string(raw))

	f.mu.Lock()
	f.calls[op]++
	status, body := f.status, f.responses[op]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":` + strconv.Itoa(status) + `,"message":"fake failure","status":"UNAVAILABLE"}}`))
		return
	}
	if body == "" {
		body = GeminiText("")
	}
	_, _ = w.Write([]byte(body))
}

func classify(body string) string {
	switch {
	case strings.Contains(body, `"responseModalities"`):
		return gateway.OpSpeech
	case strings.Contains(body, `"googleSearch"`):
		return gateway.OpSearch
	case strings.Contains(body, `"inlineData"`):
		return gateway.OpMedia
	case strings.Contains(body, `"responseSchema"`):
		return gateway.OpTranslate
	}
	return gateway.OpChat
}

type fakePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *fakeInlineData `json:"inlineData,omitempty"`
}

type fakeInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

func candidateJSON(parts []fakePart, grounding any) string {
	cand := map[string]any{
		"content": map[string]any{"role": "model", "parts": parts},
	}
	if grounding != nil {
		cand["groundingMetadata"] = grounding
	}
	data, _ := json.Marshal(map[string]any{"candidates": []any{cand}})
	return string(data)
}

// GeminiText is a response whose single candidate holds text.
func GeminiText(text string) string {
	return candidateJSON([]fakePart{{Text: text}}, nil)
}

// GeminiJSON is a structured-output response carrying v as JSON text.
func GeminiJSON(v any) string {
	data, _ := json.Marshal(v)
	return GeminiText(string(data))
}

// GeminiAudio is a speech response carrying pcm as inline audio.
func GeminiAudio(pcm []byte) string {
	return candidateJSON([]fakePart{{InlineData: &fakeInlineData{
		MimeType: "audio/L16;codec=pcm;rate=24000",
		Data:     base64.StdEncoding.EncodeToString(pcm),
	}}}, nil)
}

// GeminiGrounded is a search response citing one web source.
func GeminiGrounded(text, title, uri string) string {
	return candidateJSON([]fakePart{{Text: text}}, map[string]any{
		"groundingChunks": []any{
			map[string]any{"web": map[string]any{"title": title, "uri": uri}},
		},
	})
}

// Env points the kazitrust settings layer at f and sets a test API key for
// the rest of the test.
func (f *FakeGemini) Env(t interface{ Setenv(key, value string) }) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("KAZITRUST_GEMINI_BASE_URL", f.URL)
}
