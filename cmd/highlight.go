package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/ezhl/internal/document"
	"github.com/zjrosen/ezhl/internal/log"
)

// Output formats for the highlight command.
const (
	formatANSI  = "ansi"
	formatSpans = "spans"
)

var (
	hlTheme       string
	hlLineNumbers bool
	hlFormat      string
)

var highlightCmd = &cobra.Command{
	Use:   "highlight FILE...",
	Short: "Print files with syntax highlighting",
	Long: `Classify each file and print it with ANSI colors, or dump the
classified spans as JSON with --format spans. Use "-" to read stdin as EZ.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().StringVarP(&hlTheme, "theme", "t", "", "theme preset (overrides config)")
	highlightCmd.Flags().BoolVarP(&hlLineNumbers, "line-numbers", "n", false, "show line numbers")
	highlightCmd.Flags().StringVarP(&hlFormat, "format", "f", formatANSI, `output format: "ansi" or "spans"`)
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	if hlFormat != formatANSI && hlFormat != formatSpans {
		return fmt.Errorf("--format must be %q or %q, got %q", formatANSI, formatSpans, hlFormat)
	}
	tc, err := themeConfig(hlTheme)
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts := documentOptions(tp)
	out := cmd.OutOrStdout()
	lineNumbers := hlLineNumbers || cfg.UI.LineNumbers

	for _, path := range args {
		var doc *document.Document
		if path == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			doc, err = document.New(ctx, "stdin.ez", string(data), langs, tc, opts)
			if err != nil {
				return err
			}
		} else {
			doc, err = document.Open(ctx, path, langs, tc, opts)
			if err != nil {
				return err
			}
		}
		doc.Highlight(ctx)
		log.Debug(log.CatDoc, "Highlighted", "path", path, "lines", doc.LineCount(), "language", doc.Language().ID)

		if err := writeDocument(out, doc, lineNumbers); err != nil {
			return err
		}
	}
	return nil
}

func writeDocument(w io.Writer, doc *document.Document, lineNumbers bool) error {
	if hlFormat == formatSpans {
		enc := json.NewEncoder(w)
		for _, s := range doc.Spans() {
			if err := enc.Encode(s); err != nil {
				return fmt.Errorf("writing spans: %w", err)
			}
		}
		return nil
	}
	return doc.Render(w, lineNumbers)
}
