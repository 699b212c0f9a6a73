// Package document owns the text of one file together with its highlighter.
// Edits are applied as line diffs so only the lines whose text or incoming
// block-comment state changed are classified again.
package document

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/ezhl/internal/cachemanager"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/pubsub"
	"github.com/zjrosen/ezhl/internal/theme"
	"github.com/zjrosen/ezhl/internal/tracing"
)

// Options configures a Document. The zero value is valid.
type Options struct {
	// Tracer records open, highlight and replace spans. Nil disables tracing.
	Tracer trace.Tracer

	// Events receives one event per classified line.
	Events *pubsub.Broker[highlight.LineHighlighted]

	// Cache memoises scans. Nil scans every line directly.
	Cache    cachemanager.CacheManager[string, highlight.ScanResult]
	CacheTTL time.Duration
}

// ReplaceStats describes the work done by Replace.
type ReplaceStats struct {
	// FirstLine is the first changed line, or -1 when nothing changed.
	FirstLine int
	Inserted  int
	Removed   int
	// Rescanned counts lines classified again, including inserted ones.
	Rescanned int
}

// Document is one file's lines and highlighter. It implements
// highlight.LineSource. A Document is not safe for concurrent use.
type Document struct {
	path        string
	lang        highlight.Language
	lines       []string
	hl          *highlight.Highlighter
	chrome      theme.Chrome
	tracer      trace.Tracer
	cache       cachemanager.CacheManager[string, highlight.ScanResult]
	highlighted bool
}

// Open reads path and prepares a document in the language langs picks
// for it. Nothing is classified until Highlight.
func Open(ctx context.Context, path string, langs *highlight.Languages, tc theme.ThemeConfig, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return New(ctx, path, string(data), langs, tc, opts)
}

// New prepares a document from text already in memory. path is used for
// language selection and display only.
func New(ctx context.Context, path, text string, langs *highlight.Languages, tc theme.ThemeConfig, opts Options) (*Document, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	_, span := tracer.Start(ctx, tracing.SpanDocumentOpen)
	defer span.End()

	resolved, chrome, err := resolveTheme(tc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	d := &Document{
		path:   path,
		lang:   langs.ForPath(path),
		lines:  SplitLines(text),
		chrome: chrome,
		tracer: tracer,
		cache:  opts.Cache,
	}

	var hlOpts []highlight.Option
	if opts.Events != nil {
		hlOpts = append(hlOpts, highlight.WithEvents(opts.Events))
	}
	if opts.Cache != nil {
		hlOpts = append(hlOpts, highlight.WithScanCache(opts.Cache, opts.CacheTTL))
	}
	d.hl = highlight.NewClassifier(d.lang, resolved, hlOpts...)
	d.hl.Attach(d)

	span.SetAttributes(
		attribute.String(tracing.AttrDocPath, path),
		attribute.Int(tracing.AttrDocLines, len(d.lines)),
		attribute.String(tracing.AttrDocLanguage, d.lang.Name),
		attribute.String(tracing.AttrRuleTable, d.lang.Rules),
	)
	log.Debug(log.CatDoc, "Opened document", "path", path, "lines", len(d.lines), "language", d.lang.Name)
	return d, nil
}

func resolveTheme(tc theme.ThemeConfig) (highlight.Theme, theme.Chrome, error) {
	resolved, err := theme.Resolve(tc)
	if err != nil {
		return highlight.Theme{}, theme.Chrome{}, fmt.Errorf("resolving theme: %w", err)
	}
	chrome, err := theme.ResolveChrome(tc)
	if err != nil {
		return highlight.Theme{}, theme.Chrome{}, fmt.Errorf("resolving theme: %w", err)
	}
	return resolved, chrome, nil
}

// SplitLines splits text into lines. A trailing newline does not start an
// extra line and a "\r" before each newline is dropped.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Path returns the path the document was opened with.
func (d *Document) Path() string { return d.path }

// Language returns the language selected for the document.
func (d *Document) Language() highlight.Language { return d.lang }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns line i.
func (d *Document) Line(i int) string { return d.lines[i] }

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// Text joins the lines with newlines.
func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// Chrome returns the non-syntax styles of the current theme.
func (d *Document) Chrome() theme.Chrome { return d.chrome }

// ThemeName returns the current theme's name.
func (d *Document) ThemeName() string { return d.hl.Registry().ThemeName() }

// Highlighter exposes the underlying facade.
func (d *Document) Highlighter() *highlight.Highlighter { return d.hl }

// State returns the outgoing scan state of line i.
func (d *Document) State(i int) highlight.ScanState { return d.hl.State(i) }

// Tokens returns the styled tokens of line i, highlighting the document
// first if needed.
func (d *Document) Tokens(i int) []highlight.Token {
	if !d.highlighted {
		d.Highlight(context.Background())
	}
	return d.hl.Tokens(i)
}

// Highlight classifies every line from the top.
func (d *Document) Highlight(ctx context.Context) [][]highlight.Token {
	_, span := d.tracer.Start(ctx, tracing.SpanHighlightAll,
		trace.WithAttributes(
			attribute.String(tracing.AttrDocPath, d.path),
			attribute.Int(tracing.AttrDocLines, len(d.lines)),
			attribute.String(tracing.AttrRuleTable, d.hl.Scanner().Table().Name()),
			attribute.String(tracing.AttrThemeName, d.ThemeName()),
		))
	defer span.End()

	d.hl.Truncate(len(d.lines))
	out := d.hl.RehighlightAll()
	d.highlighted = true
	d.recordCommentOpens(span, 0, len(d.lines))
	d.recordCacheStats(span)
	return out
}

// SetTheme switches theme and restyles every line. Scan states are kept.
func (d *Document) SetTheme(ctx context.Context, tc theme.ThemeConfig) error {
	_, span := d.tracer.Start(ctx, tracing.SpanThemeChange)
	defer span.End()

	resolved, chrome, err := resolveTheme(tc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String(tracing.AttrThemeName, resolved.Name))

	d.chrome = chrome
	d.hl.Truncate(len(d.lines))
	d.hl.SetTheme(resolved)
	d.highlighted = true
	return nil
}

// Reload reads the file again and applies the difference.
func (d *Document) Reload(ctx context.Context) (ReplaceStats, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return ReplaceStats{FirstLine: -1}, fmt.Errorf("reading %s: %w", d.path, err)
	}
	return d.Replace(ctx, string(data)), nil
}

// Replace swaps in new text. The line diff is applied to the highlighter's
// state store, then lines are classified from each changed region until a
// line past it ends in the same state it had before the edit.
func (d *Document) Replace(ctx context.Context, text string) ReplaceStats {
	_, span := d.tracer.Start(ctx, tracing.SpanDocumentReplace,
		trace.WithAttributes(attribute.String(tracing.AttrDocPath, d.path)))
	defer span.End()

	newLines := SplitLines(text)
	stats := ReplaceStats{FirstLine: -1}

	if !d.highlighted {
		d.lines = newLines
		d.hl.Truncate(0)
		d.hl.RehighlightAll()
		d.highlighted = true
		stats.Rescanned = len(newLines)
		if len(newLines) > 0 {
			stats.FirstLine = 0
		}
		return stats
	}

	need := d.applyDiff(newLines, &stats)
	d.lines = newLines

	// carry is set while the previous line's outgoing state differs from
	// what it was before the edit.
	carry := false
	for i := range newLines {
		if !need[i] && !carry {
			continue
		}
		prev := d.hl.State(i)
		d.hl.Classify(i, newLines[i])
		stats.Rescanned++
		out := d.hl.State(i)
		carry = out != prev
		if !carry && i+1 < len(newLines) && !need[i+1] {
			span.AddEvent(tracing.EventStateConverged, trace.WithAttributes(attribute.Int("line", i)))
		}
	}

	span.SetAttributes(
		attribute.Int(tracing.AttrDocLines, len(newLines)),
		attribute.Int(tracing.AttrEditFirstLine, stats.FirstLine),
		attribute.Int(tracing.AttrEditInserted, stats.Inserted),
		attribute.Int(tracing.AttrEditRemoved, stats.Removed),
		attribute.Int(tracing.AttrRescanned, stats.Rescanned),
		attribute.Bool(tracing.AttrConverged, stats.Rescanned < len(newLines)),
	)
	d.recordCacheStats(span)
	log.Debug(log.CatDoc, "Applied edit", "path", d.path, "first", stats.FirstLine,
		"inserted", stats.Inserted, "removed", stats.Removed, "rescanned", stats.Rescanned)
	return stats
}

// applyDiff mirrors the line diff from d.lines to newLines in the
// highlighter and returns which new lines must be classified: every
// inserted line and the first line after each changed region.
func (d *Document) applyDiff(newLines []string, stats *ReplaceStats) []bool {
	need := make([]bool, len(newLines))
	mark := func(i int) {
		if i >= 0 && i < len(need) {
			need[i] = true
		}
		if stats.FirstLine < 0 || i < stats.FirstLine {
			stats.FirstLine = min(i, max(len(newLines)-1, 0))
		}
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(joinLines(d.lines), joinLines(newLines))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	pos := 0
	for _, diff := range diffs {
		n := strings.Count(diff.Text, "\n")
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			d.hl.RemoveLines(pos, n)
			stats.Removed += n
			mark(pos)
		case diffmatchpatch.DiffInsert:
			d.hl.InsertLines(pos, n)
			stats.Inserted += n
			for i := pos; i < pos+n; i++ {
				mark(i)
			}
			pos += n
			mark(pos)
		}
	}
	d.hl.Truncate(len(newLines))
	return need
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

func (d *Document) recordCommentOpens(span trace.Span, from, to int) {
	prev := d.hl.State(from - 1)
	for i := from; i < to; i++ {
		out := d.hl.State(i)
		if prev == highlight.Normal && out == highlight.InsideBlockComment {
			span.AddEvent(tracing.EventBlockCommentOpened, trace.WithAttributes(attribute.Int("line", i)))
		}
		prev = out
	}
}

// recordCacheStats adds the scan cache counters to span when the cache
// keeps them.
func (d *Document) recordCacheStats(span trace.Span) {
	c, ok := d.cache.(interface{ Stats() cachemanager.Stats })
	if !ok {
		return
	}
	st := c.Stats()
	span.SetAttributes(
		attribute.Int64(tracing.AttrCacheHits, int64(st.Hits)),
		attribute.Int64(tracing.AttrCacheMisses, int64(st.Misses)),
		attribute.Int(tracing.AttrCacheItems, st.Items),
	)
}
