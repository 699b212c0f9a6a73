package theme

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/zjrosen/ezhl/internal/highlight"
)

// chromaTokens maps each category to the closest chroma token type.
var chromaTokens = map[highlight.Category]chroma.TokenType{
	highlight.Keyword:       chroma.Keyword,
	highlight.Type:          chroma.KeywordType,
	highlight.Builtin:       chroma.NameBuiltin,
	highlight.String:        chroma.LiteralString,
	highlight.Number:        chroma.LiteralNumber,
	highlight.Comment:       chroma.Comment,
	highlight.Operator:      chroma.Operator,
	highlight.Function:      chroma.NameFunction,
	highlight.Variable:      chroma.NameVariable,
	highlight.Constant:      chroma.NameConstant,
	highlight.Identifier:    chroma.Name,
	highlight.Interpolation: chroma.LiteralStringInterpol,
	highlight.Attribute:     chroma.NameDecorator,
}

// ChromaStyles lists the chroma style names usable as "chroma:<name>".
func ChromaStyles() []string {
	return styles.Names()
}

// FromChroma converts a registered chroma style into a preset. Categories
// the style leaves uncoloured take its plain text colour.
func FromChroma(name string) (Preset, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown chroma style: %s", name)
	}

	text := style.Get(chroma.Text)
	colors := make(map[ColorToken]string, len(chromaTokens)+5)
	for cat, tt := range chromaTokens {
		entry := style.Get(tt)
		switch {
		case entry.Colour.IsSet():
			colors[SyntaxToken(cat)] = entry.Colour.String()
		case text.Colour.IsSet():
			colors[SyntaxToken(cat)] = text.Colour.String()
		}
	}

	if text.Colour.IsSet() {
		colors[TokenStatusFg] = text.Colour.String()
	}
	if text.Background.IsSet() {
		colors[TokenStatusBg] = text.Background.String()
	}
	if ln := style.Get(chroma.LineNumbers); ln.Colour.IsSet() {
		colors[TokenGutter] = ln.Colour.String()
	}
	if c := style.Get(chroma.Comment); c.Colour.IsSet() {
		colors[TokenTextMuted] = c.Colour.String()
	}

	return Preset{
		Name:        ChromaPrefix + name,
		Description: "Imported from the chroma " + name + " style",
		Colors:      colors,
	}, nil
}
