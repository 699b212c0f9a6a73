package highlight

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/zjrosen/ezhl/internal/log"
)

// Rule table identifiers a Language may select.
const (
	RulesEZ      = "ez"
	RulesGeneric = "generic"
)

// Language binds file extensions to a rule table.
type Language struct {
	ID         string
	Name       string
	Extensions []string
	Rules      string
}

// NewScanner returns the scanner for the language's rule table.
func (l Language) NewScanner() *Scanner {
	if l.Rules == RulesEZ {
		return NewScanner(EZRules(), WithBlockComments(), WithLanguage(l.Name))
	}
	return NewGenericScanner(l.Name)
}

// DefaultLanguages returns the built-in language list.
func DefaultLanguages() []Language {
	return []Language{
		{ID: "ez", Name: "EZ", Extensions: []string{".ez"}, Rules: RulesEZ},
	}
}

// Languages selects a Language for a file path.
type Languages struct {
	byExt       map[string]Language
	list        []Language
	chromaHints bool
}

// NewLanguages validates langs and indexes them by extension. When
// chromaHints is set, unknown files are labelled with chroma's lexer name.
func NewLanguages(langs []Language, chromaHints bool) (*Languages, error) {
	l := &Languages{byExt: make(map[string]Language), chromaHints: chromaHints}
	for i, lang := range langs {
		if lang.ID == "" {
			return nil, fmt.Errorf("languages[%d]: id is required", i)
		}
		if lang.Rules != RulesEZ && lang.Rules != RulesGeneric {
			return nil, fmt.Errorf("languages[%d] (%s): unknown rules %q (must be %s or %s)",
				i, lang.ID, lang.Rules, RulesEZ, RulesGeneric)
		}
		if lang.Name == "" {
			lang.Name = lang.ID
		}
		for _, ext := range lang.Extensions {
			ext = normalizeExt(ext)
			if prev, ok := l.byExt[ext]; ok {
				return nil, fmt.Errorf("languages[%d] (%s): extension %s already claimed by %s", i, lang.ID, ext, prev.ID)
			}
			l.byExt[ext] = lang
		}
		l.list = append(l.list, lang)
	}
	return l, nil
}

// All returns the configured languages in order.
func (l *Languages) All() []Language {
	out := make([]Language, len(l.list))
	copy(out, l.list)
	return out
}

// ForPath picks the language for path by extension. Anything unknown gets
// the generic rules, named after chroma's lexer when hints are on or the
// extension otherwise.
func (l *Languages) ForPath(path string) Language {
	ext := normalizeExt(filepath.Ext(path))
	if lang, ok := l.byExt[ext]; ok {
		return lang
	}

	name := strings.TrimPrefix(ext, ".")
	if l.chromaHints {
		if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
			name = lexer.Config().Name
		}
	}
	if name == "" {
		name = "text"
	}
	log.Debug(log.CatRules, "Using generic rules", "path", path, "language", name)
	return Language{ID: strings.ToLower(name), Name: name, Rules: RulesGeneric}
}

// NewClassifier builds a facade for a document in lang.
func NewClassifier(lang Language, theme Theme, opts ...Option) *Highlighter {
	return New(lang.NewScanner(), theme, opts...)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
