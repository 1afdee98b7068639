package cmd

import (
	"fmt"

	"github.com/deepguide-ai/dg/internal/verify"
	"github.com/spf13/cobra"
)

var generateAllFlag bool

var generateCmd = &cobra.Command{
	Use:   "generate [name...]",
	Short: "Export SVG images and markdown snippets",
	Long: `Export light and dark SVG images for the named demos (or every demo with
--all) and rewrite their markdown snippets.

A failed export falls back to a snippet without images; the command still
succeeds.

Examples:
  dg generate show-help
  dg generate --all`,
	RunE: runGenerate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addGenerateFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func addGenerateFlags(c *cobra.Command) {
	c.Flags().BoolVar(&generateAllFlag, "all", false, "generate assets for every demo")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !generateAllFlag {
		return fmt.Errorf("specify demo names or --all")
	}
	if len(args) > 0 && generateAllFlag {
		return fmt.Errorf("--all cannot be combined with demo names")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	records, err := verify.Select(cfg, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	if len(records) == 0 {
		fmt.Fprintln(out, "No demos found. Run `dg capture` to record your first demo.")
		return nil
	}

	gen := a.generator(cfg)
	if err := gen.Layout.Ensure(); err != nil {
		return err
	}
	themes := a.settings.Capture.Themes
	for i := range records {
		d := &records[i]
		images := 0
		for _, r := range gen.GenerateAll(cmd.Context(), d.Name, themes) {
			if r.Warning != "" {
				fmt.Fprintf(errOut, "warning: %s: %s (%s)\n", d.Name, r.Warning, r.Theme)
				continue
			}
			images++
		}

		snippet, err := gen.Snippet(d, themes)
		if err != nil {
			return err
		}
		path, err := gen.WriteSnippet(d.Name, snippet)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d image(s), snippet %s\n", d.Name, images, path)
	}
	return nil
}
