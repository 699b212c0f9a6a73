// Package config provides configuration types and defaults for ezhl.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/ezhl/internal/flags"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/theme"
	"github.com/zjrosen/ezhl/internal/tracing"
)

// Config holds all configuration options for ezhl.
type Config struct {
	Theme     ThemeConfig      `mapstructure:"theme"`
	Languages []LanguageConfig `mapstructure:"languages"`
	UI        UIConfig         `mapstructure:"ui"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Watch     WatchConfig      `mapstructure:"watch"`
	Tracing   tracing.Config   `mapstructure:"tracing"`
	Flags     map[string]bool  `mapstructure:"flags"`
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base (optional).
	// Valid values: "default", "light", "catppuccin-mocha", "dracula",
	// "nord", "high-contrast", or "chroma:<style>".
	Preset string `mapstructure:"preset"`

	// Colors overrides individual tokens. A value is either a hex colour
	// or a mapping with foreground, bold and italic keys.
	// Example YAML:
	//   colors:
	//     keyword: "#C678DD"
	//     comment: { foreground: "#5C6370", italic: true }
	//     ui:
	//       gutter: "#4B5263"
	Colors map[string]any `mapstructure:"colors"`
}

// LanguageConfig binds file extensions to a rule table.
type LanguageConfig struct {
	ID         string   `mapstructure:"id"`
	Name       string   `mapstructure:"name"`
	Extensions []string `mapstructure:"extensions"`
	Rules      string   `mapstructure:"rules"` // "ez" or "generic"
}

// UIConfig holds output options shared by the highlight and view commands.
type UIConfig struct {
	LineNumbers bool `mapstructure:"line_numbers"`
}

// CacheConfig configures the scan memo.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// WatchConfig configures reload-on-save in the viewer.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// overrideKeys are the keys that mark a colors entry as a single override
// rather than a nested group of tokens.
var overrideKeys = []string{"foreground", "bold", "italic"}

// Overrides converts Colors into theme overrides keyed by dotted token.
func (t ThemeConfig) Overrides() (map[string]theme.Override, error) {
	result := make(map[string]theme.Override)
	if err := flattenColors("", t.Colors, result); err != nil {
		return nil, err
	}
	return result, nil
}

// flattenColors recursively flattens nested maps into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]theme.Override) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = theme.Override{Foreground: val}
		case map[string]any:
			if isOverride(val) {
				ov, err := parseOverride(key, val)
				if err != nil {
					return err
				}
				result[key] = ov
				continue
			}
			if err := flattenColors(key, val, result); err != nil {
				return err
			}
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			if err := flattenColors(prefix, map[string]any{k: converted}, result); err != nil {
				return err
			}
		default:
			return fmt.Errorf("theme.colors.%s: expected a color or a mapping, got %T", key, v)
		}
	}
	return nil
}

func isOverride(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !slices.Contains(overrideKeys, k) {
			return false
		}
	}
	return true
}

func parseOverride(key string, m map[string]any) (theme.Override, error) {
	var ov theme.Override
	if fg, ok := m["foreground"]; ok {
		s, ok := fg.(string)
		if !ok {
			return ov, fmt.Errorf("theme.colors.%s.foreground: expected a string, got %T", key, fg)
		}
		ov.Foreground = s
	}
	for _, attr := range []string{"bold", "italic"} {
		raw, ok := m[attr]
		if !ok {
			continue
		}
		b, ok := raw.(bool)
		if !ok {
			return ov, fmt.Errorf("theme.colors.%s.%s: expected a boolean, got %T", key, attr, raw)
		}
		if attr == "bold" {
			ov.Bold = &b
		} else {
			ov.Italic = &b
		}
	}
	return ov, nil
}

// ThemeConfig converts the theme section for the theme package.
func (c Config) ThemeConfig() (theme.ThemeConfig, error) {
	overrides, err := c.Theme.Overrides()
	if err != nil {
		return theme.ThemeConfig{}, err
	}
	return theme.ThemeConfig{Preset: c.Theme.Preset, Overrides: overrides}, nil
}

// LanguageList returns the configured languages, or the built-in list when
// none are configured.
func (c Config) LanguageList() []highlight.Language {
	if len(c.Languages) == 0 {
		return highlight.DefaultLanguages()
	}
	out := make([]highlight.Language, len(c.Languages))
	for i, l := range c.Languages {
		out[i] = highlight.Language{ID: l.ID, Name: l.Name, Extensions: l.Extensions, Rules: l.Rules}
	}
	return out
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/ezhl/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ezhl", "traces", "traces.jsonl")
}

// Validate checks cfg and returns the first problem, naming its key.
func Validate(cfg Config) error {
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	if _, err := highlight.NewLanguages(cfg.LanguageList(), false); err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Flags)) {
		if _, known := flags.Defaults()[name]; !known {
			log.Warn(log.CatConfig, "Unknown flag ignored", "flag", name)
		}
	}
	return nil
}

// ValidateTheme checks the preset name and every colour override.
func ValidateTheme(t ThemeConfig) error {
	if t.Preset != "" && t.Preset != "default" {
		if style, ok := strings.CutPrefix(t.Preset, theme.ChromaPrefix); ok {
			if _, err := theme.FromChroma(style); err != nil {
				return fmt.Errorf("theme.preset: %w", err)
			}
		} else if _, ok := theme.Presets[t.Preset]; !ok {
			return fmt.Errorf("theme.preset: unknown preset %q (available: %s)",
				t.Preset, strings.Join(theme.Names(), ", "))
		}
	}

	overrides, err := t.Overrides()
	if err != nil {
		return err
	}
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		ov := overrides[key]
		token, ok := theme.ParseToken(key)
		if !ok {
			return fmt.Errorf("theme.colors.%s: unknown color token", key)
		}
		if ov.Foreground != "" && !highlight.ValidHexColor(ov.Foreground) {
			return fmt.Errorf("theme.colors.%s: invalid hex color %q", key, ov.Foreground)
		}
		if _, isSyntax := token.Category(); !isSyntax && (ov.Bold != nil || ov.Italic != nil) {
			return fmt.Errorf("theme.colors.%s: bold and italic apply to syntax tokens only", key)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Theme:     ThemeConfig{Preset: "default"},
		Languages: nil, // DefaultLanguages via LanguageList
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 150 * time.Millisecond,
		},
		Tracing: tc,
		Flags:   flags.Defaults(),
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# ezhl Configuration

# Theme settings
theme:
  # default | light | catppuccin-mocha | dracula | nord | high-contrast | chroma:<style>
  preset: default
  # Override individual categories with a hex colour or a mapping:
  # colors:
  #   keyword: "#C678DD"
  #   comment: { foreground: "#5C6370", italic: true }
  #   ui:
  #     gutter: "#4B5263"

# Languages map file extensions to a rule table ("ez" or "generic").
# Files matching none of them use the generic rules.
languages:
  - id: ez
    name: EZ
    extensions: [".ez"]
    rules: ez

ui:
  line_numbers: false

# Memoise line scans by incoming state and text
cache:
  enabled: true
  ttl: 10m

# Reload delay after the viewed file is saved
watch:
  debounce: 150ms

# Tracing writes document highlight spans for debugging
# tracing:
#   enabled: false
#   exporter: file        # none | file | stdout | otlp
#   file_path: ~/.config/ezhl/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

flags:
  scan-cache: true
  chroma-hints: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
