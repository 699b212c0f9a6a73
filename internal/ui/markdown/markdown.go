// Package markdown renders ezhl's reference docs, such as the rule order of
// a table, as styled terminal markdown.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/ezhl/internal/highlight"
)

// noMarginStyle is a JSON style that removes document margins.
// It inherits from auto (dark/light detection) but overrides margin to 0.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with ezhl's configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a markdown renderer with the given width.
func New(width int) (*Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// RuleTable documents t's rules in application order. Later rows paint
// over earlier ones.
func RuleTable(t *highlight.RuleTable, blockComments bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Rules: %s\n\n", t.Name())
	b.WriteString("Rules run top to bottom; a later rule overwrites what an earlier one painted. ")
	b.WriteString("`yield` rules only paint cells nothing else claimed.\n\n")
	b.WriteString("| # | Category | Mode | Pattern | Notes |\n")
	b.WriteString("|---|----------|------|---------|-------|\n")
	for i, r := range t.Rules() {
		notes := r.Doc()
		if r.Group() > 0 {
			notes += fmt.Sprintf(" (group %d)", r.Group())
		}
		// Double backticks let patterns contain a backtick.
		fmt.Fprintf(&b, "| %d | %s | %s | `` %s `` | %s |\n",
			i+1, r.Category(), r.Mode(), escapeCell(r.Pattern()), escapeCell(notes))
	}
	if blockComments {
		fmt.Fprintf(&b, "| %d | %s | paint | `/* ... */` | block comments, carried across lines |\n",
			t.Len()+1, highlight.Comment)
	}
	return b.String()
}

// escapeCell keeps pipes inside a table cell from splitting it.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
