// Package legal holds the domain types exchanged between the model gateway
// and the task views.
package legal

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a counseling conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TranslationResult is a plain-language rendering of a legal passage.
type TranslationResult struct {
	Original    string   `json:"original"`
	Translated  string   `json:"translated"`
	Explanation string   `json:"explanation"`
	Citations   []string `json:"citations"`
}

// MediaAnalysisResult is the contract-risk assessment of an uploaded image or
// video.
type MediaAnalysisResult struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Warnings  []string `json:"warnings"`
}

// Passed reports whether the analysis found no warnings.
func (r MediaAnalysisResult) Passed() bool {
	return len(r.Warnings) == 0
}

// GroundingSource is a web page the search answer was grounded on.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// SearchResult is a grounded answer to a labor-rights question.
type SearchResult struct {
	Text    string            `json:"text"`
	Sources []GroundingSource `json:"sources"`
}

// Language is the output language of a translation or search answer.
type Language string

const (
	English   Language = "English"
	Kiswahili Language = "Kiswahili"
	Sheng     Language = "Sheng"
)

// ErrInvalidLanguage is returned for a language outside English, Kiswahili
// and Sheng.
var ErrInvalidLanguage = errors.New("invalid language")

// Languages lists the supported languages in display order.
func Languages() []Language {
	return []Language{English, Kiswahili, Sheng}
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	switch l {
	case English, Kiswahili, Sheng:
		return true
	}
	return false
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage accepts a language name case-insensitively, plus the short
// codes "en" and "sw".
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en":
		return English, nil
	case "kiswahili", "swahili", "sw":
		return Kiswahili, nil
	case "sheng":
		return Sheng, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
}
