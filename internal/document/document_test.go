package document

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pgregory.net/rapid"

	"github.com/zjrosen/ezhl/internal/cachemanager"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/theme"
	"github.com/zjrosen/ezhl/internal/tracing"
)

func testLangs(t require.TestingT) *highlight.Languages {
	langs, err := highlight.NewLanguages(highlight.DefaultLanguages(), false)
	require.NoError(t, err)
	return langs
}

func newDoc(t require.TestingT, text string, opts Options) *Document {
	d, err := New(context.Background(), "main.ez", text, testLangs(t), theme.ThemeConfig{}, opts)
	require.NoError(t, err)
	return d
}

func states(d *Document) []highlight.ScanState {
	out := make([]highlight.ScanState, d.LineCount())
	for i := range out {
		out[i] = d.State(i)
	}
	return out
}

func spans(d *Document) [][]highlight.Span {
	out := make([][]highlight.Span, d.LineCount())
	for i := range out {
		for _, tok := range d.Tokens(i) {
			out[i] = append(out[i], tok.Span)
		}
	}
	return out
}

func TestSplitLines(t *testing.T) {
	require.Nil(t, SplitLines(""))
	require.Equal(t, []string{""}, SplitLines("\n"))
	require.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	require.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\n\r\nb"))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.ez")
	require.NoError(t, os.WriteFile(path, []byte("do main() {\n  /* note\n  */ println(1)\n}\n"), 0o644))

	d, err := Open(context.Background(), path, testLangs(t), theme.ThemeConfig{Preset: "nord"}, Options{})
	require.NoError(t, err)
	require.Equal(t, path, d.Path())
	require.Equal(t, "EZ", d.Language().Name)
	require.Equal(t, "nord", d.ThemeName())
	require.Equal(t, 4, d.LineCount())

	d.Highlight(context.Background())
	require.Equal(t, []highlight.ScanState{
		highlight.Normal, highlight.InsideBlockComment, highlight.Normal, highlight.Normal,
	}, states(d))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.ez"), testLangs(t), theme.ThemeConfig{}, Options{})
	require.ErrorContains(t, err, "missing.ez")

	_, err = New(context.Background(), "a.ez", "", testLangs(t), theme.ThemeConfig{Preset: "neon"}, Options{})
	require.ErrorContains(t, err, "resolving theme: unknown theme preset: neon")
}

func TestNew_UnknownExtensionUsesGenericRules(t *testing.T) {
	d, err := New(context.Background(), "notes.txt", "/* x", testLangs(t), theme.ThemeConfig{}, Options{})
	require.NoError(t, err)
	require.Equal(t, highlight.RulesGeneric, d.Language().Rules)
	d.Highlight(context.Background())
	require.Equal(t, highlight.Normal, d.State(0))
}

func TestReplace_InsertPlainLineRescansLocally(t *testing.T) {
	d := newDoc(t, "do a()\ntemp x = 1\ntemp y = 2\ntemp z = 3\n", Options{})
	d.Highlight(context.Background())

	stats := d.Replace(context.Background(), "do a()\ntemp x = 1\ntemp w = 0\ntemp y = 2\ntemp z = 3\n")
	require.Equal(t, ReplaceStats{FirstLine: 2, Inserted: 1, Removed: 0, Rescanned: 2}, stats)
	require.Equal(t, "temp w = 0", d.Line(2))
	require.Equal(t, 5, d.Highlighter().LineCount())
}

func TestReplace_OpeningCommentPropagates(t *testing.T) {
	d := newDoc(t, "do a()\ntemp x = 1\ntemp y = 2\ntemp z = 3", Options{})
	d.Highlight(context.Background())

	stats := d.Replace(context.Background(), "do a()\ntemp x = 1 /*\ntemp y = 2\ntemp z = 3")
	require.Equal(t, 1, stats.FirstLine)
	require.Equal(t, 1, stats.Inserted)
	require.Equal(t, 1, stats.Removed)
	require.Equal(t, 3, stats.Rescanned)
	require.Equal(t, []highlight.ScanState{
		highlight.Normal, highlight.InsideBlockComment, highlight.InsideBlockComment, highlight.InsideBlockComment,
	}, states(d))
	require.Equal(t, []highlight.Span{{Start: 0, End: 10, Category: highlight.Comment}}, spans(d)[3])
}

func TestReplace_NoChange(t *testing.T) {
	d := newDoc(t, "a\nb", Options{})
	d.Highlight(context.Background())
	require.Equal(t, ReplaceStats{FirstLine: -1}, d.Replace(context.Background(), "a\nb\n"))
}

func TestReplace_BeforeHighlightScansEverything(t *testing.T) {
	d := newDoc(t, "a", Options{})
	stats := d.Replace(context.Background(), "/* a\nb */")
	require.Equal(t, ReplaceStats{FirstLine: 0, Rescanned: 2}, stats)
	require.Equal(t, []highlight.ScanState{highlight.InsideBlockComment, highlight.Normal}, states(d))
}

func TestReplace_DeleteEverything(t *testing.T) {
	d := newDoc(t, "/* a\nb\nc */", Options{})
	d.Highlight(context.Background())
	stats := d.Replace(context.Background(), "")
	require.Equal(t, 3, stats.Removed)
	require.Equal(t, 0, d.LineCount())
	require.Equal(t, 0, d.Highlighter().LineCount())
}

// editLine draws lines from a small vocabulary so edits often open, close
// or move block comments.
func editLine(t *rapid.T, label string) string {
	return rapid.SampledFrom([]string{
		"", "do f()", "temp x = 1", "/*", "*/", "a /* b", "c */ d", "/* one */", `"s /* t"`, "// x */",
	}).Draw(t, label)
}

func TestReplace_MatchesFreshHighlight(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		before := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) string { return editLine(t, "l") }), 0, 10).Draw(t, "before")
		after := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) string { return editLine(t, "l") }), 0, 10).Draw(t, "after")

		d := newDoc(t, strings.Join(before, "\n"), Options{})
		d.Highlight(context.Background())
		d.Replace(context.Background(), strings.Join(after, "\n"))

		fresh := newDoc(t, strings.Join(after, "\n"), Options{})
		fresh.Highlight(context.Background())

		require.Equal(t, fresh.Lines(), d.Lines())
		require.Equal(t, states(fresh), states(d))
		require.Equal(t, spans(fresh), spans(d))
	})
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.ez")
	require.NoError(t, os.WriteFile(path, []byte("temp a = 1\n"), 0o644))
	d, err := Open(context.Background(), path, testLangs(t), theme.ThemeConfig{}, Options{})
	require.NoError(t, err)
	d.Highlight(context.Background())

	require.NoError(t, os.WriteFile(path, []byte("temp a = 1\n/* b\n"), 0o644))
	stats, err := d.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Inserted)
	require.Equal(t, highlight.InsideBlockComment, d.State(1))

	require.NoError(t, os.Remove(path))
	_, err = d.Reload(context.Background())
	require.Error(t, err)
}

func TestSetTheme(t *testing.T) {
	d := newDoc(t, "/* a\nb */ do", Options{})
	d.Highlight(context.Background())
	before := spans(d)

	require.NoError(t, d.SetTheme(context.Background(), theme.ThemeConfig{Preset: "dracula"}))
	require.Equal(t, "dracula", d.ThemeName())
	require.Equal(t, before, spans(d))
	require.Equal(t, []highlight.ScanState{highlight.InsideBlockComment, highlight.Normal}, states(d))

	require.Error(t, d.SetTheme(context.Background(), theme.ThemeConfig{Preset: "neon"}))
	require.Equal(t, "dracula", d.ThemeName())
}

func TestRender(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "temp x = 1"
	}
	d := newDoc(t, strings.Join(lines, "\n"), Options{})

	var buf bytes.Buffer
	require.NoError(t, d.Render(&buf, true))
	out := strings.Split(strings.TrimSuffix(ansi.Strip(buf.String()), "\n"), "\n")
	require.Len(t, out, 10)
	require.Equal(t, " 1 │ temp x = 1", out[0])
	require.Equal(t, "10 │ temp x = 1", out[9])

	buf.Reset()
	require.NoError(t, d.Render(&buf, false))
	require.True(t, strings.HasPrefix(ansi.Strip(buf.String()), "temp x = 1\n"))
}

func TestSpans(t *testing.T) {
	d := newDoc(t, "temp 世界 = \"\u00e9\"", Options{})
	got := d.Spans()
	require.Equal(t, []SpanRecord{
		{Line: 1, Start: 0, End: 4, StartCol: 0, EndCol: 4, Category: "keyword", Text: "temp"},
		{Line: 1, Start: 12, End: 13, StartCol: 10, EndCol: 11, Category: "operator", Text: "="},
		{Line: 1, Start: 14, End: 18, StartCol: 12, EndCol: 15, Category: "string", Text: "\"\u00e9\""},
	}, got)
}

func TestColumnOf(t *testing.T) {
	require.Equal(t, 0, ColumnOf("abc", 0))
	require.Equal(t, 2, ColumnOf("abc", 2))
	require.Equal(t, 4, ColumnOf("世界x", 6))
	require.Equal(t, 5, ColumnOf("世界x", 7))
	// Offset inside a combining sequence maps to the grapheme start.
	require.Equal(t, 0, ColumnOf("e\u0301x", 1))
	require.Equal(t, 1, ColumnOf("e\u0301x", 3))
	require.Equal(t, 3, ColumnOf("abc", 99))
}

func TestScanCacheOption(t *testing.T) {
	cache := cachemanager.NewInMemoryCacheManager[string, highlight.ScanResult]("doc", time.Minute, time.Minute)
	d := newDoc(t, "do f()", Options{Cache: cache, CacheTTL: time.Minute})
	d.Highlight(context.Background())
	require.Equal(t, 1, cache.Stats().Items)
}

func TestTracing_HighlightRecordsCacheStats(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	cache := cachemanager.NewInMemoryCacheManager[string, highlight.ScanResult]("doc", time.Minute, 0)
	d := newDoc(t, "do f()\ndo f()", Options{Tracer: tp.Tracer("test"), Cache: cache, CacheTTL: time.Minute})
	d.Highlight(context.Background())

	var attrs map[string]any
	for _, s := range recorder.Ended() {
		if s.Name() == tracing.SpanHighlightAll {
			attrs = make(map[string]any)
			for _, kv := range s.Attributes() {
				attrs[string(kv.Key)] = kv.Value.AsInterface()
			}
		}
	}
	require.NotNil(t, attrs, "highlight span not recorded")
	require.Equal(t, int64(1), attrs[tracing.AttrCacheHits])
	require.Equal(t, int64(1), attrs[tracing.AttrCacheMisses])
	require.Equal(t, int64(1), attrs[tracing.AttrCacheItems])
}

func TestTracing_ReplaceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	d := newDoc(t, "a\nb\nc\nd", Options{Tracer: tp.Tracer("test")})
	d.Highlight(context.Background())
	d.Replace(context.Background(), "a\nb2\nc\nd")

	ended := recorder.Ended()
	require.Len(t, ended, 3)
	require.Equal(t, tracing.SpanDocumentOpen, ended[0].Name())
	require.Equal(t, tracing.SpanHighlightAll, ended[1].Name())

	replace := ended[2]
	require.Equal(t, tracing.SpanDocumentReplace, replace.Name())
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range replace.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	require.Equal(t, int64(1), attrs[tracing.AttrEditFirstLine].AsInt64())
	require.Equal(t, int64(2), attrs[tracing.AttrRescanned].AsInt64())
	require.True(t, attrs[tracing.AttrConverged].AsBool())

	var names []string
	for _, ev := range replace.Events() {
		names = append(names, ev.Name)
	}
	require.Contains(t, names, tracing.EventStateConverged)
}
