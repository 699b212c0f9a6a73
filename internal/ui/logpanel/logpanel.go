// Package logpanel provides an in-app log viewer drawn over the viewer so
// recent log entries can be read without leaving the TUI.
package logpanel

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/ezhl/internal/keys"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/theme"
)

const (
	viewportMaxHeight = 20
	viewportMinHeight = 3
	boxMaxWidth       = 140
	boxMinWidth       = 30
)

// CloseMsg is sent when the panel closes itself.
type CloseMsg struct{}

// Model is the log panel state.
type Model struct {
	visible  bool
	minLevel log.Level
	width    int
	height   int
	chrome   theme.Chrome
	viewport viewport.Model
}

// New creates a hidden panel of the given size.
func New(width, height int, chrome theme.Chrome) Model {
	return Model{
		minLevel: log.LevelDebug,
		width:    width,
		height:   height,
		chrome:   chrome,
	}
}

// Update handles keys while the panel is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.LogPanel.Clear):
			log.ClearBuffer()
			m.refresh()
		case key.Matches(msg, keys.LogPanel.LevelDebug):
			m.setLevel(log.LevelDebug)
		case key.Matches(msg, keys.LogPanel.LevelInfo):
			m.setLevel(log.LevelInfo)
		case key.Matches(msg, keys.LogPanel.LevelWarn):
			m.setLevel(log.LevelWarn)
		case key.Matches(msg, keys.LogPanel.LevelError):
			m.setLevel(log.LevelError)
		case key.Matches(msg, keys.LogPanel.Down):
			m.viewport.ScrollDown(1)
		case key.Matches(msg, keys.LogPanel.Up):
			m.viewport.ScrollUp(1)
		case key.Matches(msg, keys.LogPanel.Top):
			m.viewport.GotoTop()
		case key.Matches(msg, keys.LogPanel.Bottom):
			m.viewport.GotoBottom()
		case key.Matches(msg, keys.LogPanel.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.LogPanel.Close):
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}
	return m, nil
}

func (m *Model) setLevel(l log.Level) {
	m.minLevel = l
	m.refresh()
}

// View renders the panel box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	width := m.boxWidth()
	divider := m.chrome.Gutter.Render(strings.Repeat("─", width))

	var b strings.Builder
	b.WriteString(m.chrome.Accent.UnsetBackground().PaddingLeft(1).Render("Logs"))
	b.WriteString("\n" + divider + "\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n" + divider + "\n")
	b.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.chrome.Gutter.GetForeground()).
		Width(width).
		Render(b.String())
}

// Overlay draws the panel centred over bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return place(m.width, m.height, m.View(), bg)
}

// Visible reports whether the panel is shown.
func (m Model) Visible() bool { return m.visible }

// Toggle shows or hides the panel.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
	}
}

// SetSize records the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refresh()
}

// SetChrome restyles the panel after a theme change.
func (m *Model) SetChrome(c theme.Chrome) {
	m.chrome = c
	m.refresh()
}

// Refresh reloads entries, e.g. after a new one was logged.
func (m *Model) Refresh() {
	if m.visible {
		m.refresh()
	}
}

func (m *Model) refresh() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Header, footer and borders take six rows.
	h := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	m.viewport = viewport.New(m.boxWidth()-2, h)
	m.viewport.SetContent(m.content(m.boxWidth() - 2))
	m.viewport.GotoBottom()
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) content(width int) string {
	var lines []string
	for _, entry := range log.RecentEntries() {
		if level, ok := entryLevel(entry); ok && level < m.minLevel {
			continue
		}
		lines = append(lines, m.colorize(entry, width))
	}
	if len(lines) == 0 {
		return m.chrome.Muted.Italic(true).Render("No logs to display")
	}
	return strings.Join(lines, "\n")
}

// entryLevel reads the level out of a formatted entry
// ("2006-01-02T15:04:05 [WARN] [cat] msg").
func entryLevel(entry string) (log.Level, bool) {
	_, rest, ok := strings.Cut(entry, " [")
	if !ok {
		return log.LevelDebug, false
	}
	name, _, ok := strings.Cut(rest, "]")
	if !ok {
		return log.LevelDebug, false
	}
	return log.ParseLevel(name)
}

func (m Model) colorize(entry string, width int) string {
	entry = strings.TrimSuffix(entry, "\n")
	if ansi.StringWidth(entry) > width {
		entry = ansi.Truncate(entry, width-3, "...")
	}
	level, _ := entryLevel(entry)
	switch level {
	case log.LevelError, log.LevelWarn:
		return m.chrome.Accent.UnsetBackground().UnsetBold().Render(entry)
	case log.LevelDebug:
		return m.chrome.Muted.Render(entry)
	default:
		return entry
	}
}

func (m Model) filterHint() string {
	k := keys.LogPanel
	hints := []string{m.chrome.Muted.Render("[" + k.Clear.Help().Key + "] Clear")}
	for _, f := range []struct {
		binding key.Binding
		level   log.Level
	}{
		{k.LevelDebug, log.LevelDebug}, {k.LevelInfo, log.LevelInfo}, {k.LevelWarn, log.LevelWarn}, {k.LevelError, log.LevelError},
	} {
		label := "[" + f.binding.Help().Key + "] " + f.level.String()
		if f.level == m.minLevel {
			hints = append(hints, lipgloss.NewStyle().Bold(true).Render(label))
		} else {
			hints = append(hints, m.chrome.Muted.Render(label))
		}
	}
	return strings.Join(hints, "  ")
}

// place draws fg centred over bg, keeping the ANSI styling of both.
func place(width, height int, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, strings.Repeat(" ", width))
	}

	x := max((width-lipgloss.Width(fg))/2, 0)
	y := max((height-len(fgLines))/2, 0)

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLine := bgLines[row]
		left := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		var right string
		if end := x + ansi.StringWidth(line); end < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, end, "")
		}
		bgLines[row] = left + line + right
	}
	return strings.Join(bgLines, "\n")
}
