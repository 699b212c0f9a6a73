package highlight

import "strings"

const (
	blockOpen  = "/*"
	blockClose = "*/"
)

// Scanner classifies single lines with a rule table.
// A Scanner holds no per-document state and is safe to share.
type Scanner struct {
	table         *RuleTable
	blockComments bool
	language      string
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithBlockComments enables `/* ... */` comments that may span lines.
func WithBlockComments() ScannerOption {
	return func(s *Scanner) { s.blockComments = true }
}

// WithLanguage attaches a display name to the scanner.
func WithLanguage(name string) ScannerOption {
	return func(s *Scanner) { s.language = name }
}

// NewScanner builds a scanner over table.
func NewScanner(table *RuleTable, opts ...ScannerOption) *Scanner {
	s := &Scanner{table: table, language: table.Name()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEZScanner returns the scanner for EZ source.
func NewEZScanner() *Scanner {
	return NewScanner(EZRules(), WithBlockComments(), WithLanguage("EZ"))
}

// Language returns the scanner's display name.
func (s *Scanner) Language() string { return s.language }

// Table returns the rule table the scanner applies.
func (s *Scanner) Table() *RuleTable { return s.table }

// BlockComments reports whether the scanner tracks block comments.
func (s *Scanner) BlockComments() bool { return s.blockComments }

// Scan classifies one line given the state the previous line ended in.
// Spans are sorted, non-overlapping and merged where adjacent cells share a
// category. The returned state is what the next line starts in.
func (s *Scanner) Scan(line string, in ScanState) ([]Span, ScanState) {
	if !s.blockComments {
		in = Normal
	}
	if line == "" {
		return nil, in
	}

	canvas := make([]Category, len(line))
	for _, r := range s.table.rules {
		r.paint(canvas, line)
	}

	out := Normal
	if s.blockComments {
		out = paintBlockComments(canvas, line, in)
	}
	return collapse(canvas), out
}

// paintBlockComments paints every block comment region of line over the
// canvas and returns the state for the next line.
func paintBlockComments(canvas []Category, line string, in ScanState) ScanState {
	start, from := 0, 0
	if in != InsideBlockComment {
		i := strings.Index(line, blockOpen)
		if i < 0 {
			return Normal
		}
		// The closer is searched past the opener, so "/*/" stays open.
		start, from = i, i+len(blockOpen)
	}

	for {
		j := strings.Index(line[from:], blockClose)
		if j < 0 {
			fill(canvas[start:], Comment)
			return InsideBlockComment
		}
		end := from + j + len(blockClose)
		fill(canvas[start:end], Comment)

		i := strings.Index(line[end:], blockOpen)
		if i < 0 {
			return Normal
		}
		start = end + i
		from = start + len(blockOpen)
	}
}

func fill(cells []Category, c Category) {
	for i := range cells {
		cells[i] = c
	}
}

func painted(cells []Category) bool {
	for _, c := range cells {
		if c != None {
			return true
		}
	}
	return false
}

// collapse turns a canvas into runs of equal, non-empty categories.
func collapse(canvas []Category) []Span {
	var spans []Span
	for i := 0; i < len(canvas); {
		c := canvas[i]
		j := i + 1
		for j < len(canvas) && canvas[j] == c {
			j++
		}
		if c != None {
			spans = append(spans, Span{Start: i, End: j, Category: c})
		}
		i = j
	}
	return spans
}
