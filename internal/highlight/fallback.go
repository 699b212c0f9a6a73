package highlight

import "sync"

// GenericRuleSpecs is the small rule set used for files that are not EZ.
func GenericRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{Pattern: `\b[0-9]+\.?[0-9]*\b`, Category: Number, Doc: "numbers"},
		{Pattern: `"[^"]*"`, Category: String, Doc: "double-quoted strings"},
		{Pattern: `'[^']*'`, Category: String, Doc: "single-quoted strings"},
		{Pattern: `//.*`, Category: Comment, Doc: "`//` comments"},
		{Pattern: `#.*`, Category: Comment, Doc: "`#` comments"},
	}
}

var genericRules = sync.OnceValue(func() *RuleTable {
	return MustRuleTable("generic", GenericRuleSpecs())
})

// GenericRules returns the compiled fallback table.
func GenericRules() *RuleTable { return genericRules() }

// NewGenericScanner returns a fallback scanner labelled with language.
// The label is informational and does not change the rules.
// The fallback has no block comments, so its state is always Normal.
func NewGenericScanner(language string) *Scanner {
	if language == "" {
		language = "text"
	}
	return NewScanner(GenericRules(), WithLanguage(language))
}
