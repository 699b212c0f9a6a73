package highlight

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/ezhl/internal/log"
)

// Descriptor describes how one category is drawn.
type Descriptor struct {
	// Foreground is a "#rrggbb" or "#rgb" colour. Empty means the terminal
	// default.
	Foreground string
	Bold       bool
	Italic     bool
}

// Style builds the lipgloss style for d.
func (d Descriptor) Style() lipgloss.Style {
	s := lipgloss.NewStyle().Bold(d.Bold).Italic(d.Italic)
	if d.Foreground != "" {
		s = s.Foreground(lipgloss.Color(d.Foreground))
	}
	return s
}

// Theme maps categories to descriptors. Missing categories fall back to
// DefaultDescriptor.
type Theme struct {
	Name   string
	Styles map[Category]Descriptor
}

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidHexColor reports whether s is a "#rgb" or "#rrggbb" colour.
func ValidHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

// Dark defaults, used when a theme leaves a category out.
var defaultDescriptors = map[Category]Descriptor{
	Keyword:       {Foreground: "#C678DD", Bold: true},
	Type:          {Foreground: "#E5C07B"},
	Builtin:       {Foreground: "#56B6C2"},
	String:        {Foreground: "#98C379"},
	Number:        {Foreground: "#D19A66"},
	Comment:       {Foreground: "#5C6370", Italic: true},
	Operator:      {Foreground: "#ABB2BF"},
	Function:      {Foreground: "#61AFEF"},
	Variable:      {Foreground: "#E06C75"},
	Constant:      {Foreground: "#D19A66"},
	Identifier:    {Foreground: "#ABB2BF"},
	Interpolation: {Foreground: "#E06C75"},
	Attribute:     {Foreground: "#D19A66"},
}

// DefaultDescriptor returns the built-in descriptor for c.
func DefaultDescriptor(c Category) Descriptor {
	return defaultDescriptors[c]
}

// DefaultTheme returns a copy of the built-in dark theme.
func DefaultTheme() Theme {
	styles := make(map[Category]Descriptor, len(defaultDescriptors))
	for c, d := range defaultDescriptors {
		styles[c] = d
	}
	return Theme{Name: "default", Styles: styles}
}

// Registry holds the resolved style for every category of one theme.
type Registry struct {
	theme       string
	descriptors [numCategories]Descriptor
	styles      [numCategories]lipgloss.Style
}

// NewRegistry resolves theme. Categories the theme omits, or gives an
// unparseable colour, use DefaultDescriptor and are logged.
func NewRegistry(theme Theme) *Registry {
	r := &Registry{theme: theme.Name}
	r.styles[None] = lipgloss.NewStyle()
	for _, c := range AllCategories() {
		d, ok := theme.Styles[c]
		switch {
		case !ok:
			log.Warn(log.CatTheme, "Theme missing category, using default", "theme", theme.Name, "category", c)
			d = DefaultDescriptor(c)
		case d.Foreground != "" && !ValidHexColor(d.Foreground):
			log.Warn(log.CatTheme, "Theme colour invalid, using default",
				"theme", theme.Name, "category", c, "color", d.Foreground)
			d = DefaultDescriptor(c)
		}
		r.descriptors[c] = d
		r.styles[c] = d.Style()
	}
	return r
}

// ThemeName returns the name of the theme the registry was built from.
func (r *Registry) ThemeName() string { return r.theme }

// Style returns the style for c. Unknown categories get an empty style.
func (r *Registry) Style(c Category) lipgloss.Style {
	if c < 0 || c >= numCategories {
		return lipgloss.NewStyle()
	}
	return r.styles[c]
}

// Descriptor returns the resolved descriptor for c.
func (r *Registry) Descriptor(c Category) Descriptor {
	if c < 0 || c >= numCategories {
		return Descriptor{}
	}
	return r.descriptors[c]
}
