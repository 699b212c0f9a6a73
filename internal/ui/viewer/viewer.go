// Package viewer is the Bubble Tea host for one highlighted document. It
// scrolls the rendered lines, cycles themes and reloads the file when the
// watcher reports a save.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/ezhl/internal/document"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/keys"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/pubsub"
	"github.com/zjrosen/ezhl/internal/theme"
	"github.com/zjrosen/ezhl/internal/ui/logpanel"
)

// Config wires a viewer to its document and optional event sources.
type Config struct {
	Doc         *document.Document
	Theme       theme.ThemeConfig
	LineNumbers bool

	// Changes signals that the file was written. Nil disables reloads on save.
	Changes <-chan struct{}

	// Events is the broker the document publishes highlight events on.
	Events *pubsub.Broker[highlight.LineHighlighted]

	// SaveTheme persists the current preset when "s" is pressed.
	SaveTheme func(preset string) error
}

// fileChangedMsg is sent when the watcher reports a write.
type fileChangedMsg struct{}

// Model is the viewer state.
type Model struct {
	ctx         context.Context
	doc         *document.Document
	themeCfg    theme.ThemeConfig
	lineNumbers bool
	changes     <-chan struct{}
	saveTheme   func(string) error

	viewport viewport.Model
	help     help.Model
	showHelp bool
	logs     logpanel.Model
	logFeed  *log.LogListener
	hlFeed   *pubsub.ContinuousListener[highlight.LineHighlighted]

	// flash is the result of the last action; it replaces lastLog in the
	// status bar until the next key press.
	flash   string
	lastLog string
	width   int
	height  int
	ready   bool
}

// New creates the viewer. ctx bounds the event subscriptions.
func New(ctx context.Context, cfg Config) Model {
	m := Model{
		ctx:         ctx,
		doc:         cfg.Doc,
		themeCfg:    cfg.Theme,
		lineNumbers: cfg.LineNumbers,
		changes:     cfg.Changes,
		saveTheme:   cfg.SaveTheme,
		help:        help.New(),
		logs:        logpanel.New(0, 0, cfg.Doc.Chrome()),
		logFeed:     log.NewListener(ctx),
	}
	if cfg.Events != nil {
		m.hlFeed = pubsub.NewContinuousListener(ctx, cfg.Events, pubsub.ThemeChangedEvent)
	}
	return m
}

// Init starts listening for saves, log entries and highlight events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForChange()}
	if m.logFeed != nil {
		cmds = append(cmds, m.logFeed.Listen())
	}
	if m.hlFeed != nil {
		cmds = append(cmds, m.hlFeed.Listen())
	}
	return tea.Batch(cmds...)
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch, ctx := m.changes, m.ctx
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		m.layout()
		m.logs.SetSize(msg.Width, msg.Height)
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		if m.logs.Visible() {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)

	case logpanel.CloseMsg:
		return m, nil

	case fileChangedMsg:
		m.reload()
		return m, m.waitForChange()

	case log.LogEvent:
		m.lastLog = log.LastEntry()
		m.logs.Refresh()
		return m, m.logFeed.Listen()

	case pubsub.Event[highlight.LineHighlighted]:
		if msg.Type == pubsub.ThemeChangedEvent {
			m.flash = "theme: " + m.doc.ThemeName()
		}
		return m, m.hlFeed.Listen()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch {
	case key.Matches(msg, keys.Viewer.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Viewer.NextTheme):
		m.cycleTheme(1)
		return m, nil
	case key.Matches(msg, keys.Viewer.PrevTheme):
		m.cycleTheme(-1)
		return m, nil
	case key.Matches(msg, keys.Viewer.Reload):
		m.reload()
		return m, nil
	case key.Matches(msg, keys.Viewer.LineNumbers):
		m.lineNumbers = !m.lineNumbers
		m.refreshContent()
		return m, nil
	case key.Matches(msg, keys.Viewer.SaveTheme):
		m.persistTheme()
		return m, nil
	case key.Matches(msg, keys.Viewer.Logs):
		m.logs.Toggle()
		return m, nil
	case key.Matches(msg, keys.Viewer.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return m, nil
	case key.Matches(msg, keys.Viewer.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, keys.Viewer.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// layout sizes the viewport to what the status bar and help leave free.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.help.Width = m.width
	reserved := 1
	if m.showHelp {
		reserved += lipgloss.Height(m.help.FullHelpView(keys.Viewer.FullHelp()))
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-reserved, 1)
}

func (m *Model) cycleTheme(delta int) {
	next := m.themeCfg
	next.Preset = theme.Next(m.themeCfg.Preset, delta)
	if err := m.doc.SetTheme(m.ctx, next); err != nil {
		log.ErrorErr(log.CatUI, "Theme switch failed", err, "preset", next.Preset)
		m.flash = err.Error()
		return
	}
	m.themeCfg = next
	m.logs.SetChrome(m.doc.Chrome())
	m.flash = "theme: " + next.Preset
	m.refreshContent()
}

func (m *Model) persistTheme() {
	if m.saveTheme == nil {
		m.flash = "no config file to save to"
		return
	}
	if err := m.saveTheme(m.themeCfg.Preset); err != nil {
		log.ErrorErr(log.CatUI, "Saving theme failed", err)
		m.flash = err.Error()
		return
	}
	m.flash = "saved theme " + m.themeCfg.Preset
}

func (m *Model) reload() {
	stats, err := m.doc.Reload(m.ctx)
	if err != nil {
		log.ErrorErr(log.CatUI, "Reload failed", err, "path", m.doc.Path())
		m.flash = err.Error()
		return
	}
	m.flash = fmt.Sprintf("reloaded: %d lines rescanned", stats.Rescanned)
	m.refreshContent()
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	lines := make([]string, m.doc.LineCount())
	for i := range lines {
		lines[i] = ansi.Truncate(m.doc.RenderLine(i, m.lineNumbers), m.width, "")
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

// View renders the viewport, optional help, the status bar and any open
// log panel.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	body := m.viewport.View() + "\n"
	if m.showHelp {
		body += m.help.FullHelpView(keys.Viewer.FullHelp()) + "\n"
	}
	return m.logs.Overlay(body + m.statusBar())
}

// statusBar shows file, language, theme and the block-comment state at
// the top visible line, then the last action's result or log entry.
func (m Model) statusBar() string {
	chrome := m.doc.Chrome()
	top := m.viewport.YOffset

	state := "code"
	if m.doc.State(top-1) == highlight.InsideBlockComment {
		state = "comment"
	}
	left := chrome.Accent.Render(" "+m.doc.Path()+" ") +
		chrome.Status.Render(fmt.Sprintf(" %s · %s · %d:%d · %s ",
			m.doc.Language().Name, m.doc.ThemeName(), top+1, m.doc.LineCount(), state))

	msg := m.flash
	if msg == "" {
		msg = m.lastLog
	}
	room := m.width - lipgloss.Width(left)
	if room <= 1 || msg == "" {
		return ansi.Truncate(left, m.width, "")
	}
	right := chrome.Muted.Render(" " + ansi.Truncate(msg, room-1, "…"))
	return left + right
}
