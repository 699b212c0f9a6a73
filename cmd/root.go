package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/ezhl/internal/cachemanager"
	"github.com/zjrosen/ezhl/internal/config"
	"github.com/zjrosen/ezhl/internal/document"
	"github.com/zjrosen/ezhl/internal/flags"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/theme"
	"github.com/zjrosen/ezhl/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config.
const localConfigPath = ".ezhl/config.yaml"

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	logFile    string
	cfg        config.Config
	configPath string
	flagReg    *flags.Registry
	logCleanup func()

	// "::" keeps dotted keys such as "ui.gutter" in theme.colors intact.
	v = viper.NewWithOptions(viper.KeyDelimiter("::"))
)

var rootCmd = &cobra.Command{
	Use:   "ezhl",
	Short: "Syntax highlighting for EZ source files",
	Long: `ezhl classifies EZ source line by line with an ordered rule table,
carrying block-comment state from one line to the next, and renders the
result in the terminal.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCleanup != nil {
			logCleanup()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .ezhl/config.yaml, then ~/.config/ezhl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"enable debug logging (also EZHL_DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"debug log path (default: debug.log, or EZHL_LOG)")
}

func setup(_ *cobra.Command, _ []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	highlight.MustCompileTables()
	return loadConfig()
}

// initLogging enables the logger when debug mode is on via flag or env var.
func initLogging() error {
	debug := os.Getenv("EZHL_DEBUG") != "" || debugFlag || logFile != ""
	if !debug || logCleanup != nil {
		return nil
	}

	path := logFile
	if path == "" {
		path = os.Getenv("EZHL_LOG")
	}
	if path == "" {
		path = "debug.log"
	}

	cleanup, err := log.Init(path)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	log.Info(log.CatConfig, "ezhl starting", "version", version, "logPath", path)
	return nil
}

// userConfigPath returns ~/.config/ezhl/config.yaml.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ezhl", "config.yaml")
}

// loadConfig finds, reads and validates the config.
// Lookup order: --config, .ezhl/config.yaml, ~/.config/ezhl/config.yaml.
// When none exists a commented default is written to the user config.
func loadConfig() error {
	setDefaults(config.Defaults())

	switch {
	case cfgFile != "":
		configPath = cfgFile
	case fileExists(localConfigPath):
		configPath = localConfigPath
	default:
		configPath = userConfigPath()
		if configPath != "" && !fileExists(configPath) {
			if err := config.WriteDefaultConfig(configPath); err != nil {
				// Carry on with defaults; saving a theme will fail later.
				log.Warn(log.CatConfig, "Could not write default config", "path", configPath, "error", err)
			}
		}
	}

	if configPath != "" && fileExists(configPath) {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", configPath, err)
		}
		log.Debug(log.CatConfig, "Loaded config", "path", configPath)
	} else if cfgFile != "" {
		return fmt.Errorf("config file not found: %s", cfgFile)
	}

	cfg = config.Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	flagReg = flags.WithDefaults(cfg.Flags)
	return nil
}

func setDefaults(d config.Config) {
	v.SetDefault("theme::preset", d.Theme.Preset)
	v.SetDefault("cache::enabled", d.Cache.Enabled)
	v.SetDefault("cache::ttl", d.Cache.TTL)
	v.SetDefault("watch::debounce", d.Watch.Debounce)
	v.SetDefault("tracing::enabled", d.Tracing.Enabled)
	v.SetDefault("tracing::exporter", d.Tracing.Exporter)
	v.SetDefault("tracing::otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing::sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing::service_name", d.Tracing.ServiceName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// themeConfig returns the configured theme with the preset replaced when
// preset is non-empty.
func themeConfig(preset string) (theme.ThemeConfig, error) {
	tc, err := cfg.ThemeConfig()
	if err != nil {
		return theme.ThemeConfig{}, err
	}
	if preset != "" {
		tc.Preset = preset
		if err := config.ValidateTheme(config.ThemeConfig{Preset: preset}); err != nil {
			return theme.ThemeConfig{}, err
		}
	}
	return tc, nil
}

func languages() (*highlight.Languages, error) {
	return highlight.NewLanguages(cfg.LanguageList(), flagReg.Enabled(flags.FlagChromaHints))
}

// documentOptions builds the per-document options from config and flags.
func documentOptions(tp *tracing.Provider) document.Options {
	opts := document.Options{Tracer: tp.Tracer()}
	if cfg.Cache.Enabled && flagReg.Enabled(flags.FlagScanCache) {
		// No janitor: a CLI run is short and the viewer flushes on exit.
		opts.Cache = cachemanager.NewInMemoryCacheManager[string, highlight.ScanResult]("scan", cfg.Cache.TTL, 0)
		opts.CacheTTL = cfg.Cache.TTL
	}
	return opts
}

// startTracing builds the provider from config. The returned func flushes
// and shuts it down.
func startTracing() (*tracing.Provider, func(), error) {
	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("starting tracing: %w", err)
	}
	return tp, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}
