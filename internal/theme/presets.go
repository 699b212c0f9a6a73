package theme

import (
	"maps"
	"slices"
)

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":          DefaultPreset,
	"light":            LightPreset,
	"catppuccin-mocha": CatppuccinMochaPreset,
	"dracula":          DraculaPreset,
	"nord":             NordPreset,
	"high-contrast":    HighContrastPreset,
}

// DefaultPreset is the dark scheme of the EZ IDE.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Dark theme of the EZ IDE, bold keywords and italic comments on a terminal background",
	Colors: map[ColorToken]string{
		TokenKeyword:       "#C678DD",
		TokenType:          "#E5C07B",
		TokenBuiltin:       "#56B6C2",
		TokenString:        "#98C379",
		TokenNumber:        "#D19A66",
		TokenComment:       "#5C6370",
		TokenOperator:      "#ABB2BF",
		TokenFunction:      "#61AFEF",
		TokenVariable:      "#E06C75",
		TokenConstant:      "#D19A66",
		TokenIdentifier:    "#ABB2BF",
		TokenInterpolation: "#E06C75",
		TokenAttribute:     "#D19A66",

		TokenGutter:       "#4B5263",
		TokenStatusFg:     "#ABB2BF",
		TokenStatusBg:     "#21252B",
		TokenStatusAccent: "#61AFEF",
		TokenTextMuted:    "#5C6370",
	},
}

// LightPreset is the light scheme of the EZ IDE.
var LightPreset = Preset{
	Name:        "light",
	Description: "Light theme of the EZ IDE for bright terminals",
	Colors: map[ColorToken]string{
		TokenKeyword:       "#A626A4",
		TokenType:          "#C18401",
		TokenBuiltin:       "#0184BC",
		TokenString:        "#50A14F",
		TokenNumber:        "#986801",
		TokenComment:       "#A0A1A7",
		TokenOperator:      "#383A42",
		TokenFunction:      "#4078F2",
		TokenVariable:      "#E45649",
		TokenConstant:      "#986801",
		TokenIdentifier:    "#383A42",
		TokenInterpolation: "#E45649",
		TokenAttribute:     "#986801",

		TokenGutter:       "#9D9D9F",
		TokenStatusFg:     "#383A42",
		TokenStatusBg:     "#E5E5E6",
		TokenStatusAccent: "#4078F2",
		TokenTextMuted:    "#A0A1A7",
	},
}

// CatppuccinMochaPreset is based on the Catppuccin Mocha palette.
var CatppuccinMochaPreset = Preset{
	Name:        "catppuccin-mocha",
	Description: "Soothing pastel theme (dark)",
	Colors: map[ColorToken]string{
		TokenKeyword:       "#CBA6F7",
		TokenType:          "#F9E2AF",
		TokenBuiltin:       "#89DCEB",
		TokenString:        "#A6E3A1",
		TokenNumber:        "#FAB387",
		TokenComment:       "#6C7086",
		TokenOperator:      "#94E2D5",
		TokenFunction:      "#89B4FA",
		TokenVariable:      "#F38BA8",
		TokenConstant:      "#FAB387",
		TokenIdentifier:    "#CDD6F4",
		TokenInterpolation: "#F38BA8",
		TokenAttribute:     "#FAB387",

		TokenGutter:       "#585B70",
		TokenStatusFg:     "#CDD6F4",
		TokenStatusBg:     "#181825",
		TokenStatusAccent: "#CBA6F7",
		TokenTextMuted:    "#6C7086",
	},
}

// DraculaPreset is based on the Dracula color scheme.
var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		TokenKeyword:       "#FF79C6",
		TokenType:          "#8BE9FD",
		TokenBuiltin:       "#8BE9FD",
		TokenString:        "#F1FA8C",
		TokenNumber:        "#BD93F9",
		TokenComment:       "#6272A4",
		TokenOperator:      "#FF79C6",
		TokenFunction:      "#50FA7B",
		TokenVariable:      "#FFB86C",
		TokenConstant:      "#BD93F9",
		TokenIdentifier:    "#F8F8F2",
		TokenInterpolation: "#FFB86C",
		TokenAttribute:     "#BD93F9",

		TokenGutter:       "#6272A4",
		TokenStatusFg:     "#F8F8F2",
		TokenStatusBg:     "#44475A",
		TokenStatusAccent: "#BD93F9",
		TokenTextMuted:    "#6272A4",
	},
}

// NordPreset is based on the Nord color palette.
var NordPreset = Preset{
	Name:        "nord",
	Description: "Arctic, north-bluish color palette",
	Colors: map[ColorToken]string{
		TokenKeyword:       "#81A1C1",
		TokenType:          "#8FBCBB",
		TokenBuiltin:       "#88C0D0",
		TokenString:        "#A3BE8C",
		TokenNumber:        "#B48EAD",
		TokenComment:       "#616E88",
		TokenOperator:      "#81A1C1",
		TokenFunction:      "#88C0D0",
		TokenVariable:      "#D8DEE9",
		TokenConstant:      "#B48EAD",
		TokenIdentifier:    "#D8DEE9",
		TokenInterpolation: "#D8DEE9",
		TokenAttribute:     "#B48EAD",

		TokenGutter:       "#4C566A",
		TokenStatusFg:     "#ECEFF4",
		TokenStatusBg:     "#3B4252",
		TokenStatusAccent: "#88C0D0",
		TokenTextMuted:    "#616E88",
	},
}

// HighContrastPreset maximizes contrast for accessibility.
var HighContrastPreset = Preset{
	Name:        "high-contrast",
	Description: "Maximum contrast for accessibility",
	Colors: map[ColorToken]string{
		TokenKeyword:       "#FFFF00",
		TokenType:          "#FFAA00",
		TokenBuiltin:       "#00FFFF",
		TokenString:        "#00FF00",
		TokenNumber:        "#FF00FF",
		TokenComment:       "#AAAAAA",
		TokenOperator:      "#FFFFFF",
		TokenFunction:      "#00AAFF",
		TokenVariable:      "#FF5555",
		TokenConstant:      "#FF00FF",
		TokenIdentifier:    "#FFFFFF",
		TokenInterpolation: "#FF5555",
		TokenAttribute:     "#FF00FF",

		TokenGutter:       "#FFFFFF",
		TokenStatusFg:     "#000000",
		TokenStatusBg:     "#FFFFFF",
		TokenStatusAccent: "#0000FF",
		TokenTextMuted:    "#CCCCCC",
	},
}

// Names returns the built-in preset names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// Next returns the preset delta steps after current in Names order,
// wrapping around. Unknown names start from the first preset.
func Next(current string, delta int) string {
	names := Names()
	i := slices.Index(names, current)
	if i < 0 {
		return names[0]
	}
	n := len(names)
	return names[((i+delta)%n+n)%n]
}
