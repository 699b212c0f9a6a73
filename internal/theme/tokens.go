// Package theme resolves configured theme presets and overrides into the
// highlight.Theme the highlighter consumes, plus the colours of the viewer's
// chrome.
package theme

import (
	"strings"

	"github.com/zjrosen/ezhl/internal/highlight"
)

// ColorToken represents a named, themeable color.
type ColorToken string

// Syntax tokens, one per highlight category.
const (
	TokenKeyword       ColorToken = "syntax.keyword"
	TokenType          ColorToken = "syntax.type"
	TokenBuiltin       ColorToken = "syntax.builtin"
	TokenString        ColorToken = "syntax.string"
	TokenNumber        ColorToken = "syntax.number"
	TokenComment       ColorToken = "syntax.comment"
	TokenOperator      ColorToken = "syntax.operator"
	TokenFunction      ColorToken = "syntax.function"
	TokenVariable      ColorToken = "syntax.variable"
	TokenConstant      ColorToken = "syntax.constant"
	TokenIdentifier    ColorToken = "syntax.identifier"
	TokenInterpolation ColorToken = "syntax.interpolation"
	TokenAttribute     ColorToken = "syntax.attribute"
)

// Chrome tokens for the viewer and gutter.
const (
	TokenGutter       ColorToken = "ui.gutter"
	TokenStatusFg     ColorToken = "ui.status.fg"
	TokenStatusBg     ColorToken = "ui.status.bg"
	TokenStatusAccent ColorToken = "ui.status.accent"
	TokenTextMuted    ColorToken = "ui.text.muted"
)

// AllTokens returns every valid token, syntax tokens first.
func AllTokens() []ColorToken {
	tokens := make([]ColorToken, 0, 18)
	for _, c := range highlight.AllCategories() {
		tokens = append(tokens, SyntaxToken(c))
	}
	return append(tokens, TokenGutter, TokenStatusFg, TokenStatusBg, TokenStatusAccent, TokenTextMuted)
}

// SyntaxToken returns the token for category c.
func SyntaxToken(c highlight.Category) ColorToken {
	return ColorToken("syntax." + c.String())
}

// Category returns the highlight category of a syntax token.
func (t ColorToken) Category() (highlight.Category, bool) {
	name, ok := strings.CutPrefix(string(t), "syntax.")
	if !ok {
		return highlight.None, false
	}
	c, err := highlight.ParseCategory(name)
	return c, err == nil
}

// ParseToken accepts a full token ("syntax.keyword", "ui.gutter") or a bare
// category name ("keyword").
func ParseToken(key string) (ColorToken, bool) {
	if c, err := highlight.ParseCategory(key); err == nil {
		return SyntaxToken(c), true
	}
	tok := ColorToken(key)
	for _, valid := range AllTokens() {
		if tok == valid {
			return tok, true
		}
	}
	return "", false
}
