package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRuleTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		specs   []RuleSpec
		wantErr string
	}{
		{
			name:    "bad pattern names the rule",
			specs:   []RuleSpec{{Pattern: `\bok\b`, Category: Keyword}, {Pattern: `(unclosed`, Category: String}},
			wantErr: "test rule 1 (string)",
		},
		{
			name:    "group out of range",
			specs:   []RuleSpec{{Pattern: `a(b)`, Category: Function, Group: 2}},
			wantErr: "group 2 out of range",
		},
		{
			name:    "invalid category",
			specs:   []RuleSpec{{Pattern: `a`}},
			wantErr: "invalid category none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleTable("test", tt.specs)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMustRuleTable_Panics(t *testing.T) {
	require.Panics(t, func() {
		MustRuleTable("broken", []RuleSpec{{Pattern: `[`, Category: Number}})
	})
}

func TestEZRules_Order(t *testing.T) {
	require.NotPanics(t, MustCompileTables)

	table := EZRules()
	require.Same(t, table, EZRules())
	require.Equal(t, "ez", table.Name())

	want := []Category{
		Keyword, Type, Builtin, Function, Function, Type, Attribute,
		Number, Operator, String, Interpolation, String, String, Comment,
	}
	rules := table.Rules()
	require.Len(t, rules, len(want))
	for i, r := range rules {
		require.Equal(t, want[i], r.Category(), "rule %d", i)
		require.NotEmpty(t, r.Doc(), "rule %d", i)
	}
	require.Equal(t, Yield, rules[4].Mode())
	require.Equal(t, 1, rules[2].Group())
	require.Equal(t, 0, rules[0].Group())
}

func TestRuleTable_RulesIsACopy(t *testing.T) {
	table := GenericRules()
	rules := table.Rules()
	rules[0] = Rule{}
	require.Equal(t, Number, table.Rules()[0].Category())
	require.Equal(t, 5, table.Len())
}

func TestEZVocabulary(t *testing.T) {
	s := NewEZScanner()
	for _, kw := range EZKeywords {
		spans, _ := s.Scan(kw, Normal)
		require.Equal(t, []Span{{0, len(kw), Keyword}}, spans, "keyword %s", kw)
	}
	for _, ty := range EZTypes {
		spans, _ := s.Scan(ty, Normal)
		require.Equal(t, []Span{{0, len(ty), Type}}, spans, "type %s", ty)
	}
	for _, b := range EZBuiltins {
		spans, _ := s.Scan(b+"()", Normal)
		require.Equal(t, []Span{{0, len(b), Builtin}}, spans, "builtin %s", b)

		// Without a call the name is a plain identifier.
		spans, _ = s.Scan(b, Normal)
		require.Empty(t, spans, "bare builtin %s", b)
	}
}
