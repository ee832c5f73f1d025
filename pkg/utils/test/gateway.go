package testutils

import (
	"context"
	"sync"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/legal"
)

// MockGateway is a gateway.Gateway that returns configured results and
// records every call. It is safe for concurrent use.
type MockGateway struct {
	mu sync.Mutex

	Speech       []byte
	Translation  legal.TranslationResult
	Search       legal.SearchResult
	Analysis     legal.MediaAnalysisResult
	Reply        string
	SpeechErr    error
	TranslateErr error
	SearchErr    error
	MediaErr     error
	ChatErr      error

	// Release, when non-nil, blocks every call until a value is received or
	// the context is done.
	Release chan struct{}

	// Started receives one value as each call begins, if non-nil.
	Started chan string

	calls       map[string]int
	lastText    string
	lastLang    legal.Language
	lastMime    string
	lastPrior   []legal.Turn
	lastMessage string
}

var _ gateway.Gateway = (*MockGateway)(nil)

// NewMockGateway creates a mock returning a one-sample PCM payload and empty
// results.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		Speech: []byte{0x00, 0x40},
		calls:  make(map[string]int),
	}
}

// Calls returns how many times op was invoked.
func (m *MockGateway) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// LastLanguage returns the language of the most recent translate or search call.
func (m *MockGateway) LastLanguage() legal.Language {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLang
}

// LastText returns the text or query of the most recent call that took one.
func (m *MockGateway) LastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastText
}

// LastMimeType returns the mime type of the most recent media call.
func (m *MockGateway) LastMimeType() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMime
}

// LastChat returns the arguments of the most recent chat call.
func (m *MockGateway) LastChat() ([]legal.Turn, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrior, m.lastMessage
}

func (m *MockGateway) begin(ctx context.Context, op string) error {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
	release, started := m.Release, m.Started
	m.mu.Unlock()

	if started != nil {
		started <- op
	}
	if release == nil {
		return nil
	}
	select {
	case <-release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockGateway) FetchSpeech(ctx context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	m.lastText = text
	m.mu.Unlock()
	if err := m.begin(ctx, gateway.OpSpeech); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SpeechErr != nil {
		return nil, m.SpeechErr
	}
	return append([]byte(nil), m.Speech...), nil
}

func (m *MockGateway) TranslateLegalese(ctx context.Context, text string, lang legal.Language) (legal.TranslationResult, error) {
	m.mu.Lock()
	m.lastText, m.lastLang = text, lang
	m.mu.Unlock()
	if err := m.begin(ctx, gateway.OpTranslate); err != nil {
		return legal.TranslationResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TranslateErr != nil {
		return legal.TranslationResult{}, m.TranslateErr
	}
	res := m.Translation
	res.Original = text
	return res, nil
}

func (m *MockGateway) SearchLaborLaws(ctx context.Context, query string, lang legal.Language) (legal.SearchResult, error) {
	m.mu.Lock()
	m.lastText, m.lastLang = query, lang
	m.mu.Unlock()
	if err := m.begin(ctx, gateway.OpSearch); err != nil {
		return legal.SearchResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SearchErr != nil {
		return legal.SearchResult{}, m.SearchErr
	}
	return m.Search, nil
}

func (m *MockGateway) AnalyzeMedia(ctx context.Context, _ []byte, mimeType string) (legal.MediaAnalysisResult, error) {
	m.mu.Lock()
	m.lastMime = mimeType
	m.mu.Unlock()
	if err := m.begin(ctx, gateway.OpMedia); err != nil {
		return legal.MediaAnalysisResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MediaErr != nil {
		return legal.MediaAnalysisResult{}, m.MediaErr
	}
	return m.Analysis, nil
}

func (m *MockGateway) ChatWithWorker(ctx context.Context, prior []legal.Turn, message string) (string, error) {
	m.mu.Lock()
	m.lastPrior = append([]legal.Turn(nil), prior...)
	m.lastMessage = message
	m.mu.Unlock()
	if err := m.begin(ctx, gateway.OpChat); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ChatErr != nil {
		return "", m.ChatErr
	}
	return m.Reply, nil
}
