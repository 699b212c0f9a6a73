// Package highlight classifies EZ source text into styled spans, one line at
// a time, carrying block-comment state from each line to the next.
//
// A Scanner applies an ordered RuleTable to a single line and resolves
// overlapping matches on a per-line canvas where later paint wins. A
// Highlighter owns the per-line scan states of one document and turns spans
// into lipgloss-styled Tokens using the Theme it was given.
package highlight

import "fmt"

// Category names a visual class of source text.
type Category int

const (
	None Category = iota
	Keyword
	Type
	Builtin
	String
	Number
	Comment
	Operator
	Function
	Variable
	Constant
	Identifier
	Interpolation
	Attribute

	numCategories
)

var categoryNames = [numCategories]string{
	None:          "none",
	Keyword:       "keyword",
	Type:          "type",
	Builtin:       "builtin",
	String:        "string",
	Number:        "number",
	Comment:       "comment",
	Operator:      "operator",
	Function:      "function",
	Variable:      "variable",
	Constant:      "constant",
	Identifier:    "identifier",
	Interpolation: "interpolation",
	Attribute:     "attribute",
}

func (c Category) String() string {
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the styled categories.
func (c Category) Valid() bool {
	return c > None && c < numCategories
}

// ParseCategory returns the category with the given lowercase name.
func ParseCategory(name string) (Category, error) {
	for c := Keyword; c < numCategories; c++ {
		if categoryNames[c] == name {
			return c, nil
		}
	}
	return None, fmt.Errorf("unknown category %q", name)
}

// AllCategories lists every styled category in declaration order.
func AllCategories() []Category {
	out := make([]Category, 0, numCategories-1)
	for c := Keyword; c < numCategories; c++ {
		out = append(out, c)
	}
	return out
}

// ScanState is the only information carried from one line to the next.
type ScanState uint8

const (
	Normal ScanState = iota
	InsideBlockComment
)

func (s ScanState) String() string {
	switch s {
	case Normal:
		return "normal"
	case InsideBlockComment:
		return "inside-block-comment"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Span is a classified byte range [Start, End) of a single line.
type Span struct {
	Start    int
	End      int
	Category Category
}

// Len returns the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }
