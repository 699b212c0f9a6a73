package highlight

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/ezhl/internal/cachemanager"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/pubsub"
)

// Token is a span with the style it should be drawn in.
// Tokens of one line are sorted by Start and never overlap; gaps render
// plain.
type Token struct {
	Span
	Style lipgloss.Style
}

// Render draws line with its tokens applied.
func Render(line string, tokens []Token) string {
	if len(tokens) == 0 {
		return line
	}
	var out []byte
	pos := 0
	for _, t := range tokens {
		if t.Start < pos || t.End > len(line) {
			continue
		}
		out = append(out, line[pos:t.Start]...)
		out = append(out, t.Style.Render(line[t.Start:t.End])...)
		pos = t.End
	}
	out = append(out, line[pos:]...)
	return string(out)
}

// LineSource gives the facade access to the host's current text.
type LineSource interface {
	LineCount() int
	Line(i int) string
}

// Classifier is what a host needs from a highlighter.
type Classifier interface {
	Classify(lineIndex int, text string) []Token
	SetTheme(theme Theme)
	RehighlightAll() [][]Token
}

// LineHighlighted is the payload published after each classified line.
// Theme changes publish one event with Line -1 before the rehighlight.
type LineHighlighted struct {
	Line   int
	Tokens []Token
	State  ScanState
}

// ScanResult is a memoised scan of one (state, text) pair.
type ScanResult struct {
	Spans []Span
	Out   ScanState
}

type scanInput struct {
	text string
	in   ScanState
}

type lineRecord struct {
	text    string
	state   ScanState
	tokens  []Token
	scanned bool
}

// Highlighter is the per-document facade. It stores each line's outgoing
// scan state so a line can be classified knowing only its own text.
// A Highlighter is not safe for concurrent use.
type Highlighter struct {
	scanner  *Scanner
	registry *Registry
	lines    []lineRecord
	source   LineSource
	events   *pubsub.Broker[LineHighlighted]
	memo     *cachemanager.ReadThroughCache[string, ScanResult, scanInput]
	memoTTL  time.Duration
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithSource attaches the host's lines. RehighlightAll reads from it.
func WithSource(src LineSource) Option {
	return func(h *Highlighter) { h.source = src }
}

// WithEvents publishes a LineHighlighted event for every classified line.
func WithEvents(broker *pubsub.Broker[LineHighlighted]) Option {
	return func(h *Highlighter) { h.events = broker }
}

// WithScanCache memoises scans keyed by table, incoming state and text.
func WithScanCache(cache cachemanager.CacheManager[string, ScanResult], ttl time.Duration) Option {
	return func(h *Highlighter) {
		h.memoTTL = ttl
		h.memo = cachemanager.NewReadThroughCache("scan", cache, func(_ context.Context, in scanInput) (ScanResult, error) {
			spans, out := h.scanner.Scan(in.text, in.in)
			return ScanResult{Spans: spans, Out: out}, nil
		}, false)
	}
}

// New creates a facade for one document.
func New(scanner *Scanner, theme Theme, opts ...Option) *Highlighter {
	h := &Highlighter{
		scanner:  scanner,
		registry: NewRegistry(theme),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach sets the line source used by RehighlightAll.
func (h *Highlighter) Attach(src LineSource) { h.source = src }

// Scanner returns the scanner in use.
func (h *Highlighter) Scanner() *Scanner { return h.scanner }

// Registry returns the current style registry.
func (h *Highlighter) Registry() *Registry { return h.registry }

// Classify scans text as line lineIndex, starting from the stored state of
// the line before it, records the outgoing state and returns styled tokens.
// A negative index is scanned from Normal and nothing is stored.
func (h *Highlighter) Classify(lineIndex int, text string) []Token {
	if lineIndex < 0 {
		spans, _ := h.scan(text, Normal)
		return h.tokens(spans)
	}

	in := h.State(lineIndex - 1)
	spans, out := h.scan(text, in)
	tokens := h.tokens(spans)

	h.grow(lineIndex + 1)
	rec := &h.lines[lineIndex]
	if rec.scanned && rec.state != out {
		log.Debug(log.CatScan, "Line state changed", "line", lineIndex, "from", rec.state, "to", out)
	}
	*rec = lineRecord{text: text, state: out, tokens: tokens, scanned: true}

	if h.events != nil {
		h.events.Publish(pubsub.HighlightedEvent, LineHighlighted{Line: lineIndex, Tokens: tokens, State: out})
	}
	return tokens
}

// Tokenize classifies a standalone line from Normal without touching the
// stored states.
func (h *Highlighter) Tokenize(line string) []Token {
	return h.Classify(-1, line)
}

// State returns the outgoing state stored for lineIndex. Lines that were
// never scanned, and negative indices, are Normal.
func (h *Highlighter) State(lineIndex int) ScanState {
	if lineIndex < 0 || lineIndex >= len(h.lines) {
		return Normal
	}
	return h.lines[lineIndex].state
}

// Tokens returns the tokens from the last classification of lineIndex.
func (h *Highlighter) Tokens(lineIndex int) []Token {
	if lineIndex < 0 || lineIndex >= len(h.lines) {
		return nil
	}
	return h.lines[lineIndex].tokens
}

// LineCount returns the size of the state store.
func (h *Highlighter) LineCount() int { return len(h.lines) }

// SetTheme rebuilds the style registry and rehighlights every line.
// Stored scan states are kept; the rehighlight recomputes them from the
// same text.
func (h *Highlighter) SetTheme(theme Theme) {
	h.registry = NewRegistry(theme)
	log.Info(log.CatTheme, "Theme changed", "theme", theme.Name, "lines", len(h.lines))
	if h.events != nil {
		h.events.Publish(pubsub.ThemeChangedEvent, LineHighlighted{Line: -1})
	}
	h.RehighlightAll()
}

// RehighlightAll classifies every line in ascending order. Text comes from
// the attached source, or from the text last classified for each line.
func (h *Highlighter) RehighlightAll() [][]Token {
	if h.source != nil {
		n := h.source.LineCount()
		out := make([][]Token, n)
		for i := 0; i < n; i++ {
			out[i] = h.Classify(i, h.source.Line(i))
		}
		return out
	}

	out := make([][]Token, len(h.lines))
	for i := range h.lines {
		out[i] = h.Classify(i, h.lines[i].text)
	}
	return out
}

// InsertLines opens n unscanned lines before index at.
func (h *Highlighter) InsertLines(at, n int) {
	if n <= 0 {
		return
	}
	at = clamp(at, 0, len(h.lines))
	h.lines = append(h.lines[:at], append(make([]lineRecord, n), h.lines[at:]...)...)
}

// RemoveLines drops n lines starting at index at.
func (h *Highlighter) RemoveLines(at, n int) {
	if n <= 0 || at >= len(h.lines) {
		return
	}
	at = clamp(at, 0, len(h.lines))
	end := clamp(at+n, at, len(h.lines))
	h.lines = append(h.lines[:at], h.lines[end:]...)
}

// Truncate drops every stored line from n on.
func (h *Highlighter) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(h.lines) {
		h.lines = h.lines[:n]
	}
}

func (h *Highlighter) grow(n int) {
	if n > len(h.lines) {
		h.lines = append(h.lines, make([]lineRecord, n-len(h.lines))...)
	}
}

func (h *Highlighter) scan(text string, in ScanState) ([]Span, ScanState) {
	if h.memo == nil {
		return h.scanner.Scan(text, in)
	}
	key := h.scanner.table.name + ":" + strconv.Itoa(int(in)) + ":" + text
	res, err := h.memo.GetWithRefresh(context.Background(), key, scanInput{text: text, in: in}, h.memoTTL)
	if err != nil {
		log.ErrorErr(log.CatCache, "Scan memo failed", err)
		return h.scanner.Scan(text, in)
	}
	return res.Spans, res.Out
}

func (h *Highlighter) tokens(spans []Span) []Token {
	if len(spans) == 0 {
		return nil
	}
	out := make([]Token, len(spans))
	for i, s := range spans {
		out[i] = Token{Span: s, Style: h.registry.Style(s.Category)}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var _ Classifier = (*Highlighter)(nil)
