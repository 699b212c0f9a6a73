package document

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/ezhl/internal/highlight"
)

// gutterSeparator sits between the line number and the text.
const gutterSeparator = " │ "

// RenderLine returns line i drawn with its tokens, prefixed by the gutter
// when lineNumbers is set.
func (d *Document) RenderLine(i int, lineNumbers bool) string {
	text := highlight.Render(d.lines[i], d.Tokens(i))
	if !lineNumbers {
		return text
	}
	return d.Gutter(i) + text
}

// Gutter returns the styled line number column for line i.
func (d *Document) Gutter(i int) string {
	width := len(strconv.Itoa(max(len(d.lines), 1)))
	return d.chrome.Gutter.Render(fmt.Sprintf("%*d", width, i+1) + gutterSeparator)
}

// Render writes every line, highlighted, to w.
func (d *Document) Render(w io.Writer, lineNumbers bool) error {
	for i := range d.lines {
		if _, err := io.WriteString(w, d.RenderLine(i, lineNumbers)+"\n"); err != nil {
			return fmt.Errorf("writing line %d: %w", i+1, err)
		}
	}
	return nil
}

// SpanRecord is one classified span in a form suited to JSON output.
type SpanRecord struct {
	Line     int    `json:"line"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	StartCol int    `json:"start_col"`
	EndCol   int    `json:"end_col"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Spans lists every span in the document in line order. Start and End are
// byte offsets; the columns are terminal display columns.
func (d *Document) Spans() []SpanRecord {
	var out []SpanRecord
	for i, line := range d.lines {
		for _, t := range d.Tokens(i) {
			out = append(out, SpanRecord{
				Line:     i + 1,
				Start:    t.Start,
				End:      t.End,
				StartCol: ColumnOf(line, t.Start),
				EndCol:   ColumnOf(line, t.End),
				Category: t.Category.String(),
				Text:     line[t.Start:t.End],
			})
		}
	}
	return out
}

// ColumnOf returns the display column of byte offset off in line. Wide
// graphemes count two columns. An offset inside a grapheme maps to the
// column where that grapheme starts.
func ColumnOf(line string, off int) int {
	if off <= 0 {
		return 0
	}
	col, pos := 0, 0
	state := -1
	rest := line
	for len(rest) > 0 {
		cluster, next, _, newState := uniseg.StepString(rest, state)
		if pos+len(cluster) > off {
			break
		}
		col += runewidth.StringWidth(cluster)
		pos += len(cluster)
		rest, state = next, newState
	}
	return col
}
