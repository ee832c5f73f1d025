package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/views"
)

//go:embed templates/*.html
var templateFS embed.FS

type dashboardData struct {
	Cards     []views.Card
	Counselor views.Card
	Updates   []views.Update
}

// pageData is everything the layout needs for one render. Exactly one of
// the view fields is set.
type pageData struct {
	Rail        []views.RailEntry
	Active      views.ViewID
	Languages   []legal.Language
	MaxUploadMB int64

	Dashboard *dashboardData
	Search    *views.SearchState
	Translate *views.TranslateState
	Media     *views.MediaState
	Chat      *views.ChatState
}

var pageFuncs = template.FuncMap{
	"warningClip": views.WarningClip,
	"isUser":      func(t legal.Turn) bool { return t.Role == legal.RoleUser },
	"dict":        dict,
}

// dict builds a map from alternating keys and values so a partial can take
// more than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

func parsePages() (*template.Template, error) {
	t, err := template.New("pages").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return t, nil
}

func newPageData(shell *views.Shell) pageData {
	data := pageData{
		Rail:        shell.Rail(),
		Languages:   legal.Languages(),
		MaxUploadMB: shell.MaxMediaBytes() >> 20,
	}

	active := shell.Active()
	data.Active = active.ID()

	switch v := active.(type) {
	case *views.DashboardView:
		data.Dashboard = &dashboardData{Cards: v.Cards(), Counselor: v.Counselor(), Updates: v.Updates()}
	case *views.SearchView:
		st := v.Snapshot()
		data.Search = &st
	case *views.TranslateView:
		st := v.Snapshot()
		data.Translate = &st
	case *views.MediaView:
		st := v.Snapshot()
		data.Media = &st
	case *views.ChatView:
		st := v.Snapshot()
		data.Chat = &st
	}
	return data
}

func (s *Server) render(c *fiber.Ctx, shell *views.Shell) error {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "layout", newPageData(shell)); err != nil {
		s.logger.Error("rendering page", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to render page"})
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
