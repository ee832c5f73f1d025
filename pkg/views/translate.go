package views

import (
	"context"
	"strings"

	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/speech"
)

// Clip keys of the translate view.
const (
	ClipTranslated  = "translated"
	ClipExplanation = "explanation"
)

// TranslateState is a point-in-time copy of a TranslateView.
type TranslateState struct {
	Text     string
	Language legal.Language
	Busy     bool
	Result   *legal.TranslationResult
	Error    string
}

// TranslateView is the law translator: a legal passage rewritten in plain
// Kiswahili, Sheng or English.
type TranslateView struct {
	base

	text   string
	lang   legal.Language
	result *legal.TranslationResult
	errMsg string
}

func newTranslateView(deps Deps) *TranslateView {
	return &TranslateView{
		base: newBase(ViewTranslate, deps),
		lang: legal.Kiswahili,
	}
}

// Submit translates text into lang. Blank text is ignored.
func (v *TranslateView) Submit(ctx context.Context, text string, lang legal.Language) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !lang.Valid() {
		return legal.ErrInvalidLanguage
	}

	v.mu.Lock()
	if err := v.beginLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	v.text, v.lang = text, lang
	v.mu.Unlock()

	res, err := v.deps.Gateway.TranslateLegalese(ctx, text, lang)

	v.mu.Lock()
	defer v.mu.Unlock()
	if endErr := v.endLocked(); endErr != nil {
		return endErr
	}

	v.resetClipsLocked()
	if err != nil {
		v.logger.Warn("translation failed", "error", err)
		v.result, v.errMsg = nil, TranslateFallback
		return nil
	}
	if res.Citations == nil {
		res.Citations = []string{}
	}
	v.result, v.errMsg = &res, ""
	return nil
}

// Snapshot copies the view state.
func (v *TranslateView) Snapshot() TranslateState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := TranslateState{
		Text:     v.text,
		Language: v.lang,
		Busy:     v.busy,
		Error:    v.errMsg,
	}
	if v.result != nil {
		res := *v.result
		res.Citations = append([]string{}, v.result.Citations...)
		state.Result = &res
	}
	return state
}

// Clip returns the speech clip over the translated text or the explanation.
func (v *TranslateView) Clip(key string) (*speech.Clip, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.result == nil {
		return nil, false
	}
	var text string
	switch key {
	case ClipTranslated:
		text = v.result.Translated
	case ClipExplanation:
		text = v.result.Explanation
	}
	if text == "" {
		return nil, false
	}
	return v.clipLocked(key, text), true
}
