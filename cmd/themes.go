package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/zjrosen/ezhl/internal/config"
	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/theme"
)

// previewLine is drawn under each preset with --preview.
const previewLine = `do greet(name string) { println("hi ${name}", 0x1F) } // @std`

var (
	themesChroma  bool
	themesPreview bool
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List theme presets",
	Long: `List the built-in presets and mark the configured one. Any chroma
style also works as a preset, written "chroma:<style>".`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

var themesSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Save NAME as the theme preset in the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemesSet,
}

func init() {
	themesCmd.Flags().BoolVar(&themesChroma, "chroma", false, "also list chroma styles")
	themesCmd.Flags().BoolVarP(&themesPreview, "preview", "p", false, "render a sample under each preset")
	themesCmd.AddCommand(themesSetCmd)
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	current := cfg.Theme.Preset
	if current == "" {
		current = "default"
	}

	bold := lipgloss.NewStyle().Bold(true)
	for _, name := range theme.Names() {
		marker := "  "
		label := name
		if name == current {
			marker = "* "
			label = bold.Render(name)
		}
		fmt.Fprintf(out, "%s%s\n", marker, label)
		if desc := theme.Presets[name].Description; desc != "" {
			fmt.Fprintln(out, indent.String(wordwrap.String(desc, 68), 4))
		}
		if themesPreview {
			if err := writePreview(out, name); err != nil {
				return err
			}
		}
	}

	if themesChroma {
		fmt.Fprintln(out, "\nchroma styles (use as chroma:<style>):")
		fmt.Fprintln(out, indent.String(wordwrap.String(strings.Join(theme.ChromaStyles(), " "), 68), 4))
	}
	return nil
}

func writePreview(w io.Writer, preset string) error {
	tc, err := cfg.ThemeConfig()
	if err != nil {
		return err
	}
	tc.Preset = preset
	resolved, err := theme.Resolve(tc)
	if err != nil {
		return err
	}
	langs, err := languages()
	if err != nil {
		return err
	}
	hl := highlight.NewClassifier(langs.ForPath("preview.ez"), resolved)
	_, err = fmt.Fprintf(w, "    %s\n\n", highlight.Render(previewLine, hl.Tokenize(previewLine)))
	return err
}

func runThemesSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := config.ValidateTheme(config.ThemeConfig{Preset: name}); err != nil {
		return err
	}
	if configPath == "" {
		return fmt.Errorf("no config file to save to; pass --config")
	}
	if err := config.SaveThemePreset(configPath, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s in %s\n", name, configPath)
	return nil
}
