package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/ezhl/internal/config"
	"github.com/zjrosen/ezhl/internal/document"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/log"
	"github.com/zjrosen/ezhl/internal/pubsub"
	"github.com/zjrosen/ezhl/internal/ui/viewer"
	"github.com/zjrosen/ezhl/internal/watcher"
)

var (
	viewTheme   string
	viewNoWatch bool
)

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Open a file in the interactive viewer",
	Long: `Open FILE in a scrollable, highlighted view. The file is re-read and
incrementally re-highlighted whenever it is saved.

Keys: t/T cycle themes, s saves the theme, n toggles line numbers,
r reloads, L shows logs, q quits.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVarP(&viewTheme, "theme", "t", "", "theme preset (overrides config)")
	viewCmd.Flags().BoolVar(&viewNoWatch, "no-watch", false, "do not reload when the file changes")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	tc, err := themeConfig(viewTheme)
	if err != nil {
		return err
	}
	langs, err := languages()
	if err != nil {
		return err
	}
	tp, stop, err := startTracing()
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := pubsub.NewBroker[highlight.LineHighlighted]()
	defer events.Close()

	opts := documentOptions(tp)
	opts.Events = events
	doc, err := document.Open(ctx, args[0], langs, tc, opts)
	if err != nil {
		return err
	}
	doc.Highlight(ctx)

	vcfg := viewer.Config{
		Doc:         doc,
		Theme:       tc,
		LineNumbers: cfg.UI.LineNumbers,
		Events:      events,
	}
	if configPath != "" {
		path := configPath
		vcfg.SaveTheme = func(preset string) error {
			return config.SaveThemePreset(path, preset)
		}
	}

	if !viewNoWatch {
		wcfg := watcher.DefaultConfig(args[0])
		wcfg.Debounce = cfg.Watch.Debounce
		w, err := watcher.New(wcfg)
		if err != nil {
			return fmt.Errorf("watching %s: %w", args[0], err)
		}
		changes, err := w.Start()
		if err != nil {
			return fmt.Errorf("watching %s: %w", args[0], err)
		}
		defer func() {
			if err := w.Stop(); err != nil {
				log.ErrorErr(log.CatWatcher, "Stopping watcher failed", err)
			}
		}()
		vcfg.Changes = changes
	}

	p := tea.NewProgram(viewer.New(ctx, vcfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
