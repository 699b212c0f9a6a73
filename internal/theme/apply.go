package theme

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/log"
)

// ChromaPrefix selects a chroma style as the preset, e.g. "chroma:monokai".
const ChromaPrefix = "chroma:"

// Override changes one token. Nil Bold or Italic keeps the preset's value.
type Override struct {
	Foreground string
	Bold       *bool
	Italic     *bool
}

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset    string
	Overrides map[string]Override
}

// Keywords are bold and comments italic in every preset unless overridden.
var defaultAttrs = map[highlight.Category]highlight.Descriptor{
	highlight.Keyword: {Bold: true},
	highlight.Comment: {Italic: true},
}

type resolved struct {
	name   string
	colors map[ColorToken]string
	syntax map[highlight.Category]highlight.Descriptor
}

// Resolve builds the highlight theme for cfg.
// Order: default preset, then the named preset, then overrides.
func Resolve(cfg ThemeConfig) (highlight.Theme, error) {
	r, err := resolve(cfg)
	if err != nil {
		return highlight.Theme{}, err
	}
	return highlight.Theme{Name: r.name, Styles: r.syntax}, nil
}

// Chrome holds the non-syntax styles the viewer and renderer draw with.
type Chrome struct {
	Gutter lipgloss.Style
	Status lipgloss.Style
	Accent lipgloss.Style
	Muted  lipgloss.Style
}

// ResolveChrome builds the chrome styles for cfg.
func ResolveChrome(cfg ThemeConfig) (Chrome, error) {
	r, err := resolve(cfg)
	if err != nil {
		return Chrome{}, err
	}
	c := r.colors
	return Chrome{
		Gutter: lipgloss.NewStyle().Foreground(lipgloss.Color(c[TokenGutter])),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c[TokenStatusFg])).
			Background(lipgloss.Color(c[TokenStatusBg])),
		Accent: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c[TokenStatusAccent])).
			Background(lipgloss.Color(c[TokenStatusBg])),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color(c[TokenTextMuted])),
	}, nil
}

func resolve(cfg ThemeConfig) (resolved, error) {
	colors := maps.Clone(DefaultPreset.Colors)
	name := "default"

	switch {
	case strings.HasPrefix(cfg.Preset, ChromaPrefix):
		style := strings.TrimPrefix(cfg.Preset, ChromaPrefix)
		imported, err := FromChroma(style)
		if err != nil {
			return resolved{}, err
		}
		maps.Copy(colors, imported.Colors)
		name = cfg.Preset
	case cfg.Preset != "" && cfg.Preset != "default":
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return resolved{}, fmt.Errorf("unknown theme preset: %s (available: %s)",
				cfg.Preset, strings.Join(Names(), ", "))
		}
		maps.Copy(colors, preset.Colors)
		name = preset.Name
	}

	syntax := make(map[highlight.Category]highlight.Descriptor)
	for _, c := range highlight.AllCategories() {
		d := defaultAttrs[c]
		d.Foreground = colors[SyntaxToken(c)]
		syntax[c] = d
	}

	// Sorted so the first invalid key reported is stable.
	for _, key := range slices.Sorted(maps.Keys(cfg.Overrides)) {
		ov := cfg.Overrides[key]
		token, ok := ParseToken(key)
		if !ok {
			return resolved{}, fmt.Errorf("unknown color token: %s", key)
		}
		if ov.Foreground != "" && !highlight.ValidHexColor(ov.Foreground) {
			return resolved{}, fmt.Errorf("invalid hex color for %s: %s", key, ov.Foreground)
		}

		cat, isSyntax := token.Category()
		if !isSyntax {
			if ov.Bold != nil || ov.Italic != nil {
				return resolved{}, fmt.Errorf("%s: bold and italic apply to syntax tokens only", key)
			}
			if ov.Foreground != "" {
				colors[token] = ov.Foreground
			}
			continue
		}

		d := syntax[cat]
		if ov.Foreground != "" {
			d.Foreground = ov.Foreground
			colors[token] = ov.Foreground
		}
		if ov.Bold != nil {
			d.Bold = *ov.Bold
		}
		if ov.Italic != nil {
			d.Italic = *ov.Italic
		}
		syntax[cat] = d
	}

	log.Debug(log.CatTheme, "Resolved theme", "preset", name, "overrides", len(cfg.Overrides))
	return resolved{name: name, colors: colors, syntax: syntax}, nil
}
