package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/ezhl/internal/watcher"
)

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.ez", "do main() {}")

	w, err := watcher.New(watcher.Config{
		Paths:    []string{src},
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid saves should coalesce into a single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(src, []byte(fmt.Sprintf("temp x = %d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.ez", "x")
	other := writeSource(t, dir, "notes.txt", "initial")

	w, err := watcher.New(watcher.Config{
		Paths:    []string{src},
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(other, []byte("changed"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_MultipleFilesInDifferentDirs(t *testing.T) {
	a := writeSource(t, t.TempDir(), "a.ez", "a")
	b := writeSource(t, t.TempDir(), "b.ez", "b")

	w, err := watcher.New(watcher.Config{
		Paths:    []string{a, b},
		Debounce: 30 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(b, []byte("changed"), 0644))

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for second file")
	}
}

func TestWatcher_RecreatedFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "main.ez", "x")

	w, err := watcher.New(watcher.Config{
		Paths:    []string{src},
		Debounce: 30 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	// Editors that save atomically remove and recreate the file.
	require.NoError(t, os.Remove(src))
	writeSource(t, dir, "main.ez", "y")

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for recreated file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	src := writeSource(t, t.TempDir(), "main.ez", "x")

	w, err := watcher.New(watcher.DefaultConfig(src))
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_RequiresPaths(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.EqualError(t, err, "watcher: no paths to watch")
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/src/a.ez", "/src/b.ez")

	assert.Equal(t, []string{"/src/a.ez", "/src/b.ez"}, cfg.Paths)
	assert.Equal(t, watcher.DefaultDebounce, cfg.Debounce)
}
