package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name   string
		fields []any
		want   string
	}{
		{
			name: "no fields",
			want: "2026-03-04T05:06:07 [WARN] [theme] missing category\n",
		},
		{
			name:   "paired fields",
			fields: []any{"theme", "nord", "category", "attribute"},
			want:   "2026-03-04T05:06:07 [WARN] [theme] missing category theme=nord category=attribute\n",
		},
		{
			name:   "orphan key",
			fields: []any{"theme", "nord", "category"},
			want:   "2026-03-04T05:06:07 [WARN] [theme] missing category theme=nord category=<missing>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Format(ts, LevelWarn, CatTheme, "missing category", tt.fields...))
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		got, ok := ParseLevel(strings.ToLower(l.String()))
		require.True(t, ok)
		require.Equal(t, l, got)
	}
	_, ok := ParseLevel("loud")
	require.False(t, ok)
}

func TestLogger_WritesAndBuffers(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	Info(CatScan, "scanned", "line", 3)
	Debug(CatScan, "state", "out", "inside")

	require.Contains(t, buf.String(), "[INFO] [scan] scanned line=3")
	require.Len(t, RecentEntries(), 2)
	require.Contains(t, LastEntry(), "[DEBUG] [scan] state out=inside")
	require.False(t, strings.HasSuffix(LastEntry(), "\n"))

	ClearBuffer()
	require.Empty(t, RecentEntries())
	require.Empty(t, LastEntry())
}

func TestLogger_MinLevelAndDisabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	SetMinLevel(LevelWarn)
	Info(CatConfig, "ignored")
	Warn(CatConfig, "kept")
	require.NotContains(t, buf.String(), "ignored")
	require.Contains(t, buf.String(), "kept")

	SetEnabled(false)
	Error(CatConfig, "silent")
	require.NotContains(t, buf.String(), "silent")
}

func TestLogger_BufferIsBounded(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	t.Cleanup(func() { defaultLogger = nil })

	for i := 0; i < DefaultBufferSize+25; i++ {
		Debug(CatCache, "tick", "i", i)
	}
	entries := RecentEntries()
	require.Len(t, entries, DefaultBufferSize)
	require.Contains(t, entries[0], "i=25")
}

func TestErrorErr_NilError(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(func() { defaultLogger = nil })

	ErrorErr(CatDoc, "reload failed", nil)
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	InitWriter(&bytes.Buffer{})
	t.Cleanup(func() { defaultLogger = nil })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := defaultLogger.broker.Subscribe(ctx)
	Warn(CatWatcher, "dropped")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "[WARN] [watcher] dropped")
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}

	require.NotNil(t, NewListener(ctx))
}

func TestNoLogger_IsSilent(t *testing.T) {
	defaultLogger = nil
	require.NotPanics(t, func() {
		Debug(CatUI, "nothing")
		ClearBuffer()
	})
	require.Nil(t, RecentEntries())
	require.Empty(t, LastEntry())
	require.Nil(t, NewListener(context.Background()))
}
