package tuicmder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kazitrust/kazitrust/pkg/cliui"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/speech"
	"github.com/kazitrust/kazitrust/pkg/utils"
	"github.com/kazitrust/kazitrust/pkg/views"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dividerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("42")).Bold(true)
	criticalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	passStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	counselorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func (m tuiModel) View() string {
	header := renderHeaderLine(m.width,
		titleStyle.Render("KaziTrust"),
		mutedStyle.Render("Haki yako, sauti yako · "+m.shell.ActiveID().Label()),
	)

	lines := []string{header, renderRule(m.width), m.renderRail(), ""}
	lines = append(lines, m.scrolled(m.renderBody())...)

	if footer := m.renderClipLine(); footer != "" {
		lines = append(lines, "", footer)
	}
	if m.hasInput() {
		lines = append(lines, "", m.renderInputLine())
	}
	if m.status != "" {
		lines = append(lines, warnStyle.Render(m.status))
	}
	lines = append(lines, "", mutedStyle.Render(m.help.View(m.keys)))

	return strings.Join(lines, "\n")
}

func (m tuiModel) renderRail() string {
	entries := m.shell.Rail()
	parts := make([]string, 0, len(entries))
	for i, e := range entries {
		label := fmt.Sprintf(" %d %s ", i+1, e.Label)
		if e.Active {
			parts = append(parts, highlightStyle.Render(label))
			continue
		}
		parts = append(parts, mutedStyle.Render(label))
	}
	return strings.Join(parts, " ")
}

// scrolled drops the first m.scroll body lines, keeping the last one.
func (m tuiModel) scrolled(body string) []string {
	lines := strings.Split(body, "\n")
	skip := clamp(m.scroll, len(lines)-1)
	return lines[skip:]
}

func (m tuiModel) renderBody() string {
	switch v := m.shell.Active().(type) {
	case *views.DashboardView:
		return m.renderDashboard(v)
	case *views.SearchView:
		return m.renderSearch(v.Snapshot())
	case *views.TranslateView:
		return m.renderTranslate(v.Snapshot())
	case *views.MediaView:
		return m.renderMedia(v.Snapshot())
	case *views.ChatView:
		return m.renderChat(v.Snapshot())
	}
	return ""
}

func (m tuiModel) renderDashboard(v *views.DashboardView) string {
	lines := []string{sectionStyle.Render("Tools"), renderRule(m.width)}
	for i, card := range v.Cards() {
		lines = append(lines,
			fmt.Sprintf("%s %s", accentStyle.Render(strconv.Itoa(i+2)), sectionStyle.Render(card.Title)),
			"  "+mutedStyle.Render(card.Description),
		)
	}

	counselor := v.Counselor()
	lines = append(lines, "",
		fmt.Sprintf("%s %s", accentStyle.Render("5"), sectionStyle.Render(counselor.Title)),
		"  "+mutedStyle.Render(counselor.Description),
		"", sectionStyle.Render("Legal updates"), renderRule(m.width),
	)

	for _, u := range v.Updates() {
		status := mutedStyle.Render(u.Status)
		if u.Critical() {
			status = criticalStyle.Render(u.Status)
		}
		lines = append(lines,
			fmt.Sprintf("%-8s %s  %s", status, u.Title, mutedStyle.Render(u.Date+" · "+u.Tag)),
			"         "+mutedStyle.Render(u.URL),
		)
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderSearch(s views.SearchState) string {
	lines := []string{m.renderLanguage()}

	switch {
	case s.Busy:
		lines = append(lines, m.spinner.View()+" Searching labor laws")
	case s.Error != "":
		lines = append(lines, warnStyle.Render(s.Error))
	case s.Result != nil:
		lines = append(lines, mutedStyle.Render("Q: "+utils.Truncate(s.Query, max(m.width-6, 40))), m.renderMarkdown(cliui.SearchMarkdown(*s.Result)))
	default:
		lines = append(lines, sectionStyle.Render("Try asking"))
		for _, q := range s.Suggestions {
			lines = append(lines, "  "+mutedStyle.Render("· "+q))
		}
		lines = append(lines, mutedStyle.Render("press s to fill a suggestion"))
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderTranslate(s views.TranslateState) string {
	lines := []string{m.renderLanguage()}

	switch {
	case s.Busy:
		lines = append(lines, m.spinner.View()+" Translating into "+s.Language.String())
	case s.Error != "":
		lines = append(lines, warnStyle.Render(s.Error))
	case s.Result != nil:
		lines = append(lines, m.renderMarkdown(cliui.TranslationMarkdown(*s.Result)))
	default:
		lines = append(lines, mutedStyle.Render("Paste legal text to get a plain-language version."))
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderMedia(s views.MediaState) string {
	lines := []string{mutedStyle.Render(fmt.Sprintf("Photos and videos up to %s", formatBytes(s.Limit)))}

	if s.FileName != "" {
		lines = append(lines, fmt.Sprintf("%s  %s  %s", utils.Truncate(s.FileName, 48), mutedStyle.Render(s.MimeType), mutedStyle.Render(formatBytes(int64(s.Size)))))
	}

	switch {
	case s.Busy:
		lines = append(lines, m.spinner.View()+" Analyzing "+s.FileName)
	case s.Error != "":
		lines = append(lines, warnStyle.Render(s.Error))
	case s.Result != nil:
		verdict := warnStyle.Render(fmt.Sprintf("%d red flags", len(s.Result.Warnings)))
		if s.Passed() {
			verdict = passStyle.Render("Passed")
		}
		lines = append(lines, verdict, m.renderMarkdown(cliui.AnalysisMarkdown(*s.Result)))
	}
	return strings.Join(lines, "\n")
}

func (m tuiModel) renderChat(s views.ChatState) string {
	lines := make([]string, 0, len(s.Turns)*2+1)
	for _, t := range s.Turns {
		if t.Role == legal.RoleUser {
			lines = append(lines, userStyle.Render("you> ")+t.Content)
		} else {
			lines = append(lines, counselorStyle.Render("kazitrust> ")+t.Content)
		}
		lines = append(lines, "")
	}
	if s.Busy {
		lines = append(lines, m.spinner.View()+" KaziTrust is thinking")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func (m tuiModel) renderLanguage() string {
	langs := legal.Languages()
	parts := make([]string, len(langs))
	for i, l := range langs {
		if l == m.lang {
			parts[i] = accentStyle.Render("[" + l.String() + "]")
		} else {
			parts[i] = mutedStyle.Render(l.String())
		}
	}
	return mutedStyle.Render("language (tab): ") + strings.Join(parts, " ")
}

// renderClipLine shows the listen button of the selected clip.
func (m tuiModel) renderClipLine() string {
	keys := m.clipKeys()
	if len(keys) == 0 {
		return ""
	}

	clipKey := keys[m.clipIndex%len(keys)]
	state := m.playerState()
	button := accentStyle.Render("♪ " + state.Label())
	if state == speech.Playing {
		button = highlightStyle.Render(" ♪ " + state.Label() + " ")
	}

	line := fmt.Sprintf("%s  %s", button, mutedStyle.Render(clipLabel(clipKey)))
	if len(keys) > 1 {
		line += mutedStyle.Render(fmt.Sprintf("  (%d/%d)", m.clipIndex%len(keys)+1, len(keys)))
	}
	return line
}

func (m tuiModel) renderInputLine() string {
	if m.input.Focused() {
		return m.input.View()
	}
	return mutedStyle.Render(m.input.View())
}

// renderMarkdown renders md with glamour, cached by width.
func (m tuiModel) renderMarkdown(md string) string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	cacheKey := strconv.Itoa(width) + "\x00" + md
	if out, ok := m.markdown[cacheKey]; ok {
		return out
	}

	out, err := cliui.RenderMarkdownWidth(md, width)
	if err != nil {
		m.logger.Debug("rendering markdown", "error", err)
		out = md
	}
	out = strings.TrimRight(out, "\n")
	m.markdown[cacheKey] = out
	return out
}

func clipLabel(clipKey string) string {
	switch clipKey {
	case views.ClipAnswer:
		return "answer"
	case views.ClipTranslated:
		return "translation"
	case views.ClipExplanation:
		return "why this matters"
	case views.ClipSummary:
		return "summary"
	}
	if n, ok := strings.CutPrefix(clipKey, "warning-"); ok {
		if i, err := strconv.Atoi(n); err == nil {
			return fmt.Sprintf("red flag %d", i+1)
		}
	}
	return clipKey
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func clamp(value, upper int) int {
	if value < 0 {
		return 0
	}
	if value > upper {
		return upper
	}
	return value
}

func renderHeaderLine(width int, left, right string) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth+1 >= lineWidth {
		return strings.TrimSpace(left + " " + right)
	}
	spacing := lineWidth - leftWidth - rightWidth
	return left + strings.Repeat(" ", spacing) + right
}

func renderRule(width int) string {
	lineWidth := width
	if lineWidth <= 0 {
		lineWidth = 80
	}
	return dividerStyle.Render(strings.Repeat("─", lineWidth))
}
