package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLanguages_ForPath(t *testing.T) {
	langs, err := NewLanguages(DefaultLanguages(), false)
	require.NoError(t, err)

	ez := langs.ForPath("src/main.EZ")
	require.Equal(t, "ez", ez.ID)
	require.Equal(t, RulesEZ, ez.Rules)
	require.True(t, ez.NewScanner().BlockComments())

	other := langs.ForPath("script.py")
	require.Equal(t, RulesGeneric, other.Rules)
	require.Equal(t, "py", other.Name)
	require.False(t, other.NewScanner().BlockComments())

	none := langs.ForPath("Makefile")
	require.Equal(t, "text", none.Name)
}

func TestLanguages_ChromaHints(t *testing.T) {
	langs, err := NewLanguages(DefaultLanguages(), true)
	require.NoError(t, err)

	py := langs.ForPath("/tmp/script.py")
	require.Equal(t, "Python", py.Name)
	require.Equal(t, RulesGeneric, py.Rules)
	require.Equal(t, "Python", py.NewScanner().Language())

	// Configured extensions win over chroma.
	require.Equal(t, "EZ", langs.ForPath("a.ez").Name)
}

func TestNewLanguages_Validation(t *testing.T) {
	tests := []struct {
		name    string
		langs   []Language
		wantErr string
	}{
		{"missing id", []Language{{Rules: RulesEZ}}, "languages[0]: id is required"},
		{"unknown rules", []Language{{ID: "x", Rules: "lisp"}}, `unknown rules "lisp"`},
		{
			"duplicate extension",
			[]Language{{ID: "a", Rules: RulesEZ, Extensions: []string{"ez"}}, {ID: "b", Rules: RulesGeneric, Extensions: []string{".EZ"}}},
			"extension .ez already claimed by a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLanguages(tt.langs, false)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLanguages_NameDefaultsToID(t *testing.T) {
	langs, err := NewLanguages([]Language{{ID: "ezt", Rules: RulesEZ, Extensions: []string{".ezt"}}}, false)
	require.NoError(t, err)
	require.Equal(t, "ezt", langs.ForPath("x.ezt").Name)
	require.Len(t, langs.All(), 1)
}

func TestNewClassifier(t *testing.T) {
	h := NewClassifier(Language{ID: "ez", Name: "EZ", Rules: RulesEZ}, DefaultTheme())
	require.Equal(t, "EZ", h.Scanner().Language())
	require.Equal(t, []Span{{0, 2, Keyword}}, spansOf(h.Classify(0, "if")))
}
