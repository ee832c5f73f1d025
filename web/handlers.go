package web

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kazitrust/kazitrust/pkg/gateway"
	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/speech"
	"github.com/kazitrust/kazitrust/pkg/views"
)

// ErrorResponse is the JSON body of every non-page error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// clipper is a view that offers speech clips over its result.
type clipper interface {
	Clip(key string) (*speech.Clip, bool)
}

func statusText(code int) string {
	return strconv.Itoa(code)
}

// shell resolves the caller's session, issuing a cookie for a new one.
func (s *Server) shell(c *fiber.Ctx) *views.Shell {
	shell, id, created := s.sessions.Get(c.Cookies(sessionCookie))
	if created {
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return shell
}

// activate navigates to id and returns the view as T. Navigate builds the
// view type that matches id, so the assertion holds.
func activate[T views.View](shell *views.Shell, id views.ViewID) T {
	v, _ := shell.Navigate(id).(T)
	return v
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handlePage renders the rail and the active view.
func (s *Server) handlePage(c *fiber.Ctx) error {
	return s.render(c, s.shell(c))
}

// handleNavigate switches the active view.
func (s *Server) handleNavigate(c *fiber.Ctx) error {
	id, err := views.ParseViewID(c.Params("view"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}

	s.shell(c).Navigate(id)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// handleSearch submits a rights question to the search view.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	lang, err := formLanguage(c, legal.English)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	v := activate[*views.SearchView](s.shell(c), views.ViewSearch)
	return s.submitted(c, v.Submit(c.UserContext(), c.FormValue("query"), lang))
}

// handleTranslate submits a legal passage to the translate view.
func (s *Server) handleTranslate(c *fiber.Ctx) error {
	lang, err := formLanguage(c, legal.Kiswahili)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	v := activate[*views.TranslateView](s.shell(c), views.ViewTranslate)
	return s.submitted(c, v.Submit(c.UserContext(), c.FormValue("text"), lang))
}

// handleMedia submits an uploaded contract image or video.
func (s *Server) handleMedia(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "a file upload named \"file\" is required"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "failed to read upload"})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.config.MaxMediaBytes+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "failed to read upload"})
	}

	mimeType := views.DetectMediaType(fh.Filename, fh.Header.Get(fiber.HeaderContentType), data)
	v := activate[*views.MediaView](s.shell(c), views.ViewMedia)
	return s.submitted(c, v.Submit(c.UserContext(), fh.Filename, mimeType, data))
}

// handleChat sends one message to the counselor.
func (s *Server) handleChat(c *fiber.Ctx) error {
	v := activate[*views.ChatView](s.shell(c), views.ViewChat)
	return s.submitted(c, v.Submit(c.UserContext(), c.FormValue("message")))
}

// handleSpeech streams a result clip as WAV, as an attachment when
// ?download=1 is set.
func (s *Server) handleSpeech(c *fiber.Ctx) error {
	cv, ok := s.shell(c).Active().(clipper)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no speech available for this view"})
	}

	clip, ok := cv.Clip(c.Params("clip"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no speech available for this text"})
	}

	wav, err := clip.WAV(c.UserContext())
	if err != nil {
		s.logger.Warn("speech unavailable", "clip", c.Params("clip"), "error", err)
		status := fiber.StatusBadGateway
		if errors.Is(err, gateway.ErrNoAudio) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(ErrorResponse{Error: views.SpeechFallback})
	}

	c.Set(fiber.HeaderContentType, "audio/wav")
	if c.Query("download") == "1" {
		c.Attachment(speech.DownloadName(time.Now()))
		c.Set(fiber.HeaderContentType, "audio/wav")
	}
	return c.SendStream(bytes.NewReader(wav), len(wav))
}

// submitted maps the outcome of a view submission to a response. Results
// and fallbacks are shown on the page, so most outcomes redirect back.
func (s *Server) submitted(c *fiber.Ctx, err error) error {
	switch {
	case err == nil,
		errors.Is(err, views.ErrViewClosed),
		errors.Is(err, views.ErrMediaTooLarge),
		errors.Is(err, views.ErrUnsupportedMedia):
		return c.Redirect("/", fiber.StatusSeeOther)
	case errors.Is(err, views.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, legal.ErrInvalidLanguage):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	s.logger.Error("submission failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "request failed"})
}

// formLanguage reads the "language" form field, defaulting to def.
func formLanguage(c *fiber.Ctx, def legal.Language) (legal.Language, error) {
	raw := c.FormValue("language")
	if raw == "" {
		return def, nil
	}
	return legal.ParseLanguage(raw)
}
