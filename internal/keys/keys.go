// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// ViewerKeyMap defines the keybindings of the document viewer.
type ViewerKeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Actions
	NextTheme   key.Binding
	PrevTheme   key.Binding
	SaveTheme   key.Binding
	Reload      key.Binding
	LineNumbers key.Binding
	Logs        key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// Viewer holds the default viewer keybindings.
var Viewer = ViewerKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "scroll down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "b"),
		key.WithHelp("b/pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", " ", "f"),
		key.WithHelp("f/pgdn", "page down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),

	NextTheme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "next theme"),
	),
	PrevTheme: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "previous theme"),
	),
	SaveTheme: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save theme"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload file"),
	),
	LineNumbers: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "line numbers"),
	),
	Logs: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logs"),
	),

	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns keybindings for the short help view.
func (k ViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTheme, k.Reload, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k ViewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom}, // Navigation
		{k.NextTheme, k.PrevTheme, k.SaveTheme},               // Theme
		{k.Reload, k.LineNumbers, k.Logs},                     // Actions
		{k.Help, k.Quit},                                      // General
	}
}

// LogPanelKeyMap defines the keybindings of the log panel.
type LogPanelKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	Clear      key.Binding
	LevelDebug key.Binding
	LevelInfo  key.Binding
	LevelWarn  key.Binding
	LevelError key.Binding

	Close key.Binding
	Quit  key.Binding
}

// LogPanel holds the default log panel keybindings.
var LogPanel = LogPanelKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "scroll up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "scroll down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	LevelDebug: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "debug+"),
	),
	LevelInfo: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "info+"),
	),
	LevelWarn: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "warn+"),
	),
	LevelError: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "error"),
	),
	Close: key.NewBinding(
		key.WithKeys("L", "esc"),
		key.WithHelp("esc", "close"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp returns keybindings for the short help view.
func (k LogPanelKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.LevelDebug, k.LevelInfo, k.LevelWarn, k.LevelError, k.Close}
}

// FullHelp returns keybindings for the full help view.
func (k LogPanelKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Clear, k.LevelDebug, k.LevelInfo, k.LevelWarn, k.LevelError},
		{k.Close, k.Quit},
	}
}
