package views

import (
	"context"
	"strings"

	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/speech"
)

// ClipAnswer keys the speech clip over a search answer.
const ClipAnswer = "answer"

var searchSuggestions = []string{
	"Minimum wage for house help in Nairobi",
	"Termination without notice laws",
	"Annual leave allowance",
	"Unpaid salary dispute process",
	"Mandatory NHIF contributions",
}

// Suggestions returns the canned rights-search queries.
func Suggestions() []string {
	return append([]string(nil), searchSuggestions...)
}

// SearchState is a point-in-time copy of a SearchView.
type SearchState struct {
	Query       string
	Language    legal.Language
	Busy        bool
	Result      *legal.SearchResult
	Error       string
	Suggestions []string
}

// SearchView is the rights explorer: a labor-law question answered with
// grounded sources.
type SearchView struct {
	base

	query  string
	lang   legal.Language
	result *legal.SearchResult
	errMsg string
}

func newSearchView(deps Deps) *SearchView {
	return &SearchView{
		base: newBase(ViewSearch, deps),
		lang: legal.English,
	}
}

// Submit asks query in lang. Blank queries are ignored. Gateway failures
// are logged and shown as SearchFallback.
func (v *SearchView) Submit(ctx context.Context, query string, lang legal.Language) error {
	query = strings.TrimSpace(query)
	if query == "" {
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
	v.query, v.lang = query, lang
	v.mu.Unlock()

	res, err := v.deps.Gateway.SearchLaborLaws(ctx, query, lang)

	v.mu.Lock()
	defer v.mu.Unlock()
	if endErr := v.endLocked(); endErr != nil {
		return endErr
	}

	v.resetClipsLocked()
	if err != nil {
		v.logger.Warn("search failed", "error", err)
		v.result, v.errMsg = nil, SearchFallback
		return nil
	}
	v.result, v.errMsg = &res, ""
	return nil
}

// Snapshot copies the view state.
func (v *SearchView) Snapshot() SearchState {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := SearchState{
		Query:       v.query,
		Language:    v.lang,
		Busy:        v.busy,
		Error:       v.errMsg,
		Suggestions: Suggestions(),
	}
	if v.result != nil {
		res := *v.result
		res.Sources = append([]legal.GroundingSource(nil), v.result.Sources...)
		state.Result = &res
	}
	return state
}

// Clip returns the speech clip for key over the current result. Only
// ClipAnswer is defined.
func (v *SearchView) Clip(key string) (*speech.Clip, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.result == nil || key != ClipAnswer || v.result.Text == "" {
		return nil, false
	}
	return v.clipLocked(key, v.result.Text), true
}
