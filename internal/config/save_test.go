package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThemePreset_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ezhl", "config.yaml")

	require.NoError(t, SaveThemePreset(configPath, "nord"))

	cfg := loadConfigFromYAML(t, readFile(t, configPath))
	require.Equal(t, "nord", cfg.Theme.Preset)
}

func TestSaveThemePreset_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my settings
theme:
  preset: default # picked by hand
  colors:
    keyword: "#FF0000"
cache:
  enabled: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	require.NoError(t, SaveThemePreset(configPath, "dracula"))

	content := readFile(t, configPath)
	assert.Contains(t, content, "# my settings")
	assert.Contains(t, content, "# picked by hand")
	assert.Contains(t, content, "preset: dracula")

	cfg := loadConfigFromYAML(t, content)
	require.Equal(t, "dracula", cfg.Theme.Preset)
	require.Equal(t, "#FF0000", cfg.Theme.Colors["keyword"])
	require.False(t, cfg.Cache.Enabled)
}

func TestSaveThemePreset_AddsMissingThemeSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("watch:\n  debounce: 1s\n"), 0o644))

	require.NoError(t, SaveThemePreset(configPath, "chroma:monokai"))

	cfg := loadConfigFromYAML(t, readFile(t, configPath))
	require.Equal(t, "chroma:monokai", cfg.Theme.Preset)
	require.Equal(t, "1s", cfg.Watch.Debounce.String())
}

func TestSaveThemePreset_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("theme: [unclosed"), 0o644))

	require.ErrorContains(t, SaveThemePreset(configPath, "nord"), "parsing config")
}

func TestSaveThemePreset_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveThemePreset(configPath, "light"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.yaml", entries[0].Name())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
