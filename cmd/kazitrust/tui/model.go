package tuicmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kazitrust/kazitrust/pkg/legal"
	"github.com/kazitrust/kazitrust/pkg/speech"
	"github.com/kazitrust/kazitrust/pkg/views"
)

func init() {
	// Force TrueColor profile to fix lipgloss color detection issue
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)
}

type keyMap struct {
	Views    key.Binding
	Type     key.Binding
	Send     key.Binding
	Stop     key.Binding
	Language key.Binding
	Suggest  key.Binding
	Play     key.Binding
	Clip     key.Binding
	Save     key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Views, k.Type, k.Send, k.Stop, k.Language, k.Play, k.Clip, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Views, k.Type, k.Send, k.Stop, k.Language, k.Suggest},
		{k.Play, k.Clip, k.Save, k.Up, k.Down, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Views:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "views")),
		Type:     key.NewBinding(key.WithKeys("i", "/"), key.WithHelp("i", "type")),
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Stop:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop typing")),
		Language: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "language")),
		Suggest:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suggestion")),
		Play:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "listen")),
		Clip:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next clip")),
		Save:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save wav")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// submittedMsg reports the end of a view submission.
type submittedMsg struct {
	view views.ViewID
	err  error
}

// toggledMsg reports the end of a player toggle.
type toggledMsg struct {
	err error
}

// playerStateMsg is sent whenever the player changes state.
type playerStateMsg speech.State

// savedMsg reports a WAV download written to disk.
type savedMsg struct {
	path string
	err  error
}

// clipper is implemented by the views that offer speech clips.
type clipper interface {
	Clip(key string) (*speech.Clip, bool)
}

type busyView interface {
	Busy() bool
}

type tuiModel struct {
	ctx     context.Context
	shell   *views.Shell
	logger  *slog.Logger
	newSink func() speech.Sink
	saveDir string

	keys    keyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model

	lang      legal.Language
	clipIndex int
	scroll    int
	pending   int
	status    string
	width     int
	height    int

	player       *speech.Player
	playerClip   *speech.Clip
	playerEvents chan speech.State

	// markdown caches glamour output by source and width.
	markdown map[string]string
}

func newTUIModel(ctx context.Context, shell *views.Shell, newSink func() speech.Sink, logger *slog.Logger, saveDir string) tuiModel {
	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 4000
	input.Cursor.SetMode(cursor.CursorStatic)

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = accentStyle

	m := tuiModel{
		ctx:          ctx,
		shell:        shell,
		logger:       logger,
		newSink:      newSink,
		saveDir:      saveDir,
		keys:         defaultKeyMap(),
		help:         help.New(),
		input:        input,
		spinner:      spin,
		lang:         legal.English,
		playerEvents: make(chan speech.State, 16),
		markdown:     make(map[string]string),
	}
	m.resetInput()
	return m
}

func (m tuiModel) Init() bubbletea.Cmd {
	return waitForPlayer(m.playerEvents)
}

func (m tuiModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 20)
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submittedMsg:
		m.pending = max(m.pending-1, 0)
		m.status = submitStatus(msg.err)
		if msg.err != nil && !errors.Is(msg.err, views.ErrViewClosed) {
			m.logger.Debug("submission rejected", "view", string(msg.view), "error", msg.err)
		}
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.logger.Warn("playback failed", "error", msg.err)
			m.status = views.SpeechFallback
		}
		return m, nil

	case playerStateMsg:
		return m, waitForPlayer(m.playerEvents)

	case savedMsg:
		if msg.err != nil {
			m.logger.Warn("saving audio failed", "error", msg.err)
			m.status = views.SpeechFallback
			return m, nil
		}
		m.status = "Saved " + msg.path
		return m, nil

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m tuiModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, bubbletea.Quit
	}

	if m.input.Focused() {
		switch msg.String() {
		case "enter":
			return m.submit()
		case "esc":
			m.input.Blur()
			return m, nil
		case "tab":
			m.cycleLanguage()
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, bubbletea.Quit
	case "1", "2", "3", "4", "5":
		return m.navigate(views.IDs()[int(msg.String()[0]-'1')])
	case "i", "/", "enter":
		if m.hasInput() {
			cmd := m.input.Focus()
			return m, cmd
		}
	case "tab":
		m.cycleLanguage()
	case "s":
		return m.suggest()
	case "p":
		return m.togglePlayback()
	case "c":
		m.cycleClip()
	case "w":
		return m.saveClip()
	case "j", "down":
		m.scroll++
	case "k", "up":
		m.scroll = max(m.scroll-1, 0)
	}

	return m, nil
}

// navigate activates id, stopping playback of the previous view.
func (m tuiModel) navigate(id views.ViewID) (bubbletea.Model, bubbletea.Cmd) {
	if m.shell.ActiveID() == id {
		return m, nil
	}

	m.closePlayer()
	m.shell.Navigate(id)
	m.clipIndex = 0
	m.scroll = 0
	m.status = ""
	m.resetInput()

	if m.hasInput() {
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

// resetInput clears the input and sets its placeholder and the default
// language for the active view.
func (m *tuiModel) resetInput() {
	m.input.Reset()
	m.input.Blur()

	switch m.shell.ActiveID() {
	case views.ViewSearch:
		m.input.Placeholder = "Ask about your rights, e.g. " + views.Suggestions()[0]
		m.lang = legal.English
	case views.ViewTranslate:
		m.input.Placeholder = "Paste a contract clause or a section of the law"
		m.lang = legal.Kiswahili
	case views.ViewMedia:
		m.input.Placeholder = "Path to a photo or video of your contract"
	case views.ViewChat:
		m.input.Placeholder = "Describe your situation"
	default:
		m.input.Placeholder = ""
	}
}

func (m tuiModel) hasInput() bool {
	return m.shell.ActiveID() != views.ViewDashboard
}

func (m tuiModel) hasLanguage() bool {
	id := m.shell.ActiveID()
	return id == views.ViewSearch || id == views.ViewTranslate
}

func (m *tuiModel) cycleLanguage() {
	if !m.hasLanguage() {
		return
	}
	langs := legal.Languages()
	for i, l := range langs {
		if l == m.lang {
			m.lang = langs[(i+1)%len(langs)]
			return
		}
	}
	m.lang = langs[0]
}

// suggest fills the search input with the next canned question.
func (m tuiModel) suggest() (bubbletea.Model, bubbletea.Cmd) {
	if m.shell.ActiveID() != views.ViewSearch {
		return m, nil
	}

	suggestions := views.Suggestions()
	next := suggestions[0]
	for i, s := range suggestions {
		if s == m.input.Value() {
			next = suggestions[(i+1)%len(suggestions)]
		}
	}
	m.input.SetValue(next)
	cmd := m.input.Focus()
	return m, cmd
}

// submit sends the input to the active view. The view call runs as a
// command; its result arrives as a submittedMsg.
func (m tuiModel) submit() (bubbletea.Model, bubbletea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	var run func(ctx context.Context) error
	lang := m.lang
	switch v := m.shell.Active().(type) {
	case *views.SearchView:
		run = func(ctx context.Context) error { return v.Submit(ctx, value, lang) }
	case *views.TranslateView:
		run = func(ctx context.Context) error { return v.Submit(ctx, value, lang) }
	case *views.MediaView:
		limit := m.shell.MaxMediaBytes()
		run = func(ctx context.Context) error {
			data, mimeType, err := views.ReadMediaFile(value, limit)
			if err != nil {
				return err
			}
			return v.Submit(ctx, filepath.Base(value), mimeType, data)
		}
	case *views.ChatView:
		run = func(ctx context.Context) error { return v.Submit(ctx, value) }
	default:
		return m, nil
	}

	if b, ok := m.shell.Active().(busyView); ok && b.Busy() {
		m.status = submitStatus(views.ErrBusy)
		return m, nil
	}

	// A new result replaces the clips, so the old player goes too.
	m.closePlayer()
	m.clipIndex = 0
	m.scroll = 0
	m.status = ""
	m.pending++

	m.input.Reset()
	if m.shell.ActiveID() != views.ViewChat {
		m.input.Blur()
	}

	id := m.shell.ActiveID()
	ctx := m.ctx
	submit := func() bubbletea.Msg {
		return submittedMsg{view: id, err: run(ctx)}
	}
	return m, bubbletea.Batch(submit, m.spinner.Tick)
}

// submitStatus is the status line shown after a submission. Errors the view
// already displays are not repeated.
func submitStatus(err error) string {
	switch {
	case err == nil,
		errors.Is(err, views.ErrViewClosed),
		errors.Is(err, views.ErrMediaTooLarge),
		errors.Is(err, views.ErrUnsupportedMedia):
		return ""
	case errors.Is(err, views.ErrBusy):
		return "Please wait, the last request is still running."
	}
	return err.Error()
}

// clipKeys lists the clips the active view currently offers.
func (m tuiModel) clipKeys() []string {
	switch v := m.shell.Active().(type) {
	case *views.SearchView:
		if s := v.Snapshot(); s.Result != nil && s.Result.Text != "" {
			return []string{views.ClipAnswer}
		}
	case *views.TranslateView:
		if s := v.Snapshot(); s.Result != nil {
			return []string{views.ClipTranslated, views.ClipExplanation}
		}
	case *views.MediaView:
		if s := v.Snapshot(); s.Result != nil {
			keys := []string{views.ClipSummary}
			for i := range s.Result.Warnings {
				keys = append(keys, views.WarningClip(i))
			}
			return keys
		}
	}
	return nil
}

// currentClip returns the selected clip of the active view.
func (m tuiModel) currentClip() (*speech.Clip, string, bool) {
	keys := m.clipKeys()
	if len(keys) == 0 {
		return nil, "", false
	}
	cv, ok := m.shell.Active().(clipper)
	if !ok {
		return nil, "", false
	}
	clipKey := keys[m.clipIndex%len(keys)]
	clip, ok := cv.Clip(clipKey)
	return clip, clipKey, ok
}

func (m *tuiModel) cycleClip() {
	keys := m.clipKeys()
	if len(keys) < 2 {
		return
	}
	m.closePlayer()
	m.clipIndex = (m.clipIndex + 1) % len(keys)
}

// togglePlayback presses the listen button of the selected clip.
func (m tuiModel) togglePlayback() (bubbletea.Model, bubbletea.Cmd) {
	clip, _, ok := m.currentClip()
	if !ok {
		m.status = "Nothing to listen to yet."
		return m, nil
	}

	if m.player == nil || m.playerClip != clip {
		m.closePlayer()
		m.player = speech.NewPlayer(clip, m.newSink(), m.logger)
		m.playerClip = clip
		events := m.playerEvents
		m.player.OnChange(func(s speech.State) {
			select {
			case events <- s:
			default:
			}
		})
	}

	m.status = ""
	player := m.player
	ctx := m.ctx
	return m, func() bubbletea.Msg {
		return toggledMsg{err: player.Toggle(ctx)}
	}
}

// playerState is the state of the player bound to the selected clip.
func (m tuiModel) playerState() speech.State {
	if m.player == nil {
		return speech.Idle
	}
	return m.player.State()
}

func (m *tuiModel) closePlayer() {
	if m.player == nil {
		return
	}
	if err := m.player.Close(); err != nil {
		m.logger.Warn("stopping playback", "error", err)
	}
	m.player = nil
	m.playerClip = nil
}

// saveClip writes the selected clip as a WAV file in saveDir.
func (m tuiModel) saveClip() (bubbletea.Model, bubbletea.Cmd) {
	clip, _, ok := m.currentClip()
	if !ok {
		m.status = "Nothing to save yet."
		return m, nil
	}

	ctx := m.ctx
	dir := m.saveDir
	return m, func() bubbletea.Msg {
		wav, err := clip.WAV(ctx)
		if err != nil {
			return savedMsg{err: err}
		}
		path := filepath.Join(dir, speech.DownloadName(time.Now()))
		if err := os.WriteFile(path, wav, 0o644); err != nil {
			return savedMsg{err: fmt.Errorf("writing WAV: %w", err)}
		}
		return savedMsg{path: path}
	}
}

func waitForPlayer(events <-chan speech.State) bubbletea.Cmd {
	return func() bubbletea.Msg {
		return playerStateMsg(<-events)
	}
}
