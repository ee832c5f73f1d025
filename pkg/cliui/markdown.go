package cliui

import (
	"fmt"
	"strings"

	"github.com/kazitrust/kazitrust/pkg/legal"
)

// SearchMarkdown formats a grounded answer with its numbered sources.
func SearchMarkdown(r legal.SearchResult) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(r.Text))
	b.WriteString("\n")

	if len(r.Sources) > 0 {
		b.WriteString("\n### Sources\n\n")
		for i, s := range r.Sources {
			fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, s.Title, s.URI)
		}
	}
	return b.String()
}

// TranslationMarkdown formats a translation: the plain rendering, why it
// matters, then the cited acts.
func TranslationMarkdown(r legal.TranslationResult) string {
	var b strings.Builder
	b.WriteString("## Simplified\n\n")
	b.WriteString(strings.TrimSpace(r.Translated))
	b.WriteString("\n\n## Why this matters\n\n")
	b.WriteString(strings.TrimSpace(r.Explanation))
	b.WriteString("\n")
	bullets(&b, "Cited law", r.Citations)
	return b.String()
}

// AnalysisMarkdown formats a contract assessment. A result without warnings
// is flagged as passing the basic check.
func AnalysisMarkdown(r legal.MediaAnalysisResult) string {
	var b strings.Builder
	b.WriteString("## Summary\n\n")
	b.WriteString(strings.TrimSpace(r.Summary))
	b.WriteString("\n")
	bullets(&b, "Key points", r.KeyPoints)

	if r.Passed() {
		b.WriteString("\n**No red flags found.** The contract passes the basic check.\n")
	} else {
		bullets(&b, "Red flags", r.Warnings)
	}
	return b.String()
}

func bullets(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
