package highlight

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/zjrosen/ezhl/internal/log"
)

// Mode controls how a rule's matches interact with cells painted by earlier
// rules.
type Mode int

const (
	// Paint overwrites whatever earlier rules painted.
	Paint Mode = iota
	// Yield skips any match whose styled range touches an already painted
	// cell.
	Yield
)

func (m Mode) String() string {
	if m == Yield {
		return "yield"
	}
	return "paint"
}

// RuleSpec is the uncompiled form of a Rule.
type RuleSpec struct {
	Pattern  string
	Category Category
	// Group selects the capture group to style. 0 styles the whole match.
	Group int
	Mode  Mode
	// Doc is a short human description shown by `ezhl rules`.
	Doc string
}

// Rule is a compiled, immutable classification rule.
type Rule struct {
	re       *regexp.Regexp
	category Category
	group    int
	mode     Mode
	doc      string
}

func (r Rule) Pattern() string { return r.re.String() }
func (r Rule) Category() Category { return r.category }
func (r Rule) Group() int { return r.group }
func (r Rule) Mode() Mode { return r.mode }
func (r Rule) Doc() string { return r.doc }

// paint applies every non-overlapping leftmost match of r to canvas.
func (r Rule) paint(canvas []Category, line string) {
	for _, m := range r.re.FindAllStringSubmatchIndex(line, -1) {
		start, end := m[2*r.group], m[2*r.group+1]
		if start < 0 || end <= start {
			continue
		}
		if r.mode == Yield && painted(canvas[start:end]) {
			continue
		}
		fill(canvas[start:end], r.category)
	}
}

// RuleTable is an ordered list of rules. Order is paint order.
type RuleTable struct {
	name  string
	rules []Rule
}

// NewRuleTable compiles specs in order. A bad pattern, an out of range group
// or an unknown category is reported with the rule's index.
func NewRuleTable(name string, specs []RuleSpec) (*RuleTable, error) {
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		if !s.Category.Valid() {
			return nil, fmt.Errorf("%s rule %d: invalid category %s", name, i, s.Category)
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s rule %d (%s): %w", name, i, s.Category, err)
		}
		if s.Group < 0 || s.Group > re.NumSubexp() {
			return nil, fmt.Errorf("%s rule %d (%s): group %d out of range, pattern has %d groups",
				name, i, s.Category, s.Group, re.NumSubexp())
		}
		rules = append(rules, Rule{re: re, category: s.Category, group: s.Group, mode: s.Mode, doc: s.Doc})
	}
	log.Debug(log.CatRules, "Compiled rule table", "table", name, "rules", len(rules))
	return &RuleTable{name: name, rules: rules}, nil
}

// MustRuleTable is NewRuleTable for tables fixed at build time.
func MustRuleTable(name string, specs []RuleSpec) *RuleTable {
	t, err := NewRuleTable(name, specs)
	if err != nil {
		panic(err)
	}
	return t
}

// Name identifies the table in logs and cache keys.
func (t *RuleTable) Name() string { return t.name }

// Len returns the number of rules.
func (t *RuleTable) Len() int { return len(t.rules) }

// Rules returns a copy of the rules in paint order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// EZ vocabulary.
var (
	EZKeywords = []string{
		"temp", "const", "do", "return", "if", "or", "otherwise", "for", "for_each",
		"as_long_as", "loop", "break", "continue", "in", "not_in", "range", "import",
		"using", "struct", "enum", "nil", "new", "true", "false", "module", "private",
		"use", "when", "is", "default", "cast",
	}
	EZTypes = []string{"int", "float", "string", "bool", "char", "void", "any"}

	EZBuiltins = []string{
		"println", "print", "input", "len", "append", "remove", "contains", "keys",
		"values", "type_of", "to_string", "to_int", "to_float", "abs", "min", "max",
		"floor", "ceil", "round", "sqrt", "pow", "sin", "cos", "tan", "log", "exp",
		"random", "seed", "time", "sleep", "format", "split", "join", "trim", "upper",
		"lower", "replace", "starts_with", "ends_with", "substring", "index_of",
		"last_index_of", "char_at", "parse_int", "parse_float", "read_file",
		"write_file", "file_exists",
	}
)

func wordAlternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// EZRuleSpecs returns the EZ rule specs in paint order.
func EZRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{Pattern: `\b(?:` + wordAlternation(EZKeywords) + `)\b`, Category: Keyword, Doc: "keywords"},
		{Pattern: `\b(?:` + wordAlternation(EZTypes) + `)\b`, Category: Type, Doc: "primitive types"},
		{Pattern: `\b(` + wordAlternation(EZBuiltins) + `)\s*\(`, Category: Builtin, Group: 1, Doc: "built-in functions before `(`"},
		{Pattern: `\bdo\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`, Category: Function, Group: 1, Doc: "function declarations after `do`"},
		{Pattern: `\b([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`, Category: Function, Group: 1, Mode: Yield, Doc: "calls, never over keywords, types or built-ins"},
		{Pattern: `\bconst\s+([A-Z][a-zA-Z0-9_]*)\s+(?:struct|enum)\b`, Category: Type, Group: 1, Doc: "struct and enum names"},
		{Pattern: `@[a-zA-Z_][a-zA-Z0-9_]*`, Category: Attribute, Doc: "attributes"},
		{Pattern: `\b[0-9][0-9_]*\.?[0-9_]*(?:[eE][+-]?[0-9_]+)?\b`, Category: Number, Doc: "numbers"},
		{Pattern: `[+\-*/%=<>!&|^~:]+|->|\.\.`, Category: Operator, Doc: "operators"},
		{Pattern: `'(?:[^'\\]|\\.)'`, Category: String, Doc: "char literals"},
		{Pattern: `\$\{[^}]*\}`, Category: Interpolation, Doc: "interpolation"},
		{Pattern: `"(?:[^"\\]|\\.)*"`, Category: String, Doc: "strings"},
		{Pattern: "`[^`]*`", Category: String, Doc: "raw strings"},
		{Pattern: `//.*`, Category: Comment, Doc: "line comments"},
	}
}

var ezRules = sync.OnceValue(func() *RuleTable {
	return MustRuleTable("ez", EZRuleSpecs())
})

// EZRules returns the compiled EZ rule table. The table is immutable and
// shared.
func EZRules() *RuleTable { return ezRules() }

// MustCompileTables forces compilation of every built-in table so a broken
// pattern fails at startup rather than on first use.
func MustCompileTables() {
	_ = EZRules()
	_ = GenericRules()
}
