package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/deepguide-ai/dg/internal/picker"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/deepguide-ai/dg/internal/replay"
	"github.com/deepguide-ai/dg/internal/verify"
	"github.com/spf13/cobra"
)

var (
	validateFormatFlag         string
	validateNonInteractiveFlag bool
	validateDryRunFlag         bool
)

// pickDemos chooses demos interactively; replaced in tests.
var pickDemos = func(cmd *cobra.Command, records []project.DemoRecord) ([]string, error) {
	options := make([]picker.Option, len(records))
	for i, rec := range records {
		options[i] = picker.Option{Value: rec.Name, Label: rec.DisplayName()}
	}
	return picker.Run(cmd.Context(), "Which demos would you like to validate?", options, os.Stdin, cmd.OutOrStdout())
}

// interactiveTerminal reports whether the picker may be shown; replaced in
// tests.
var interactiveTerminal = isTerminal

var validateCmd = &cobra.Command{
	Use:   "validate [name...]",
	Short: "Replay demo commands and check they still behave",
	Long: `Replay the command of every selected demo and compare its exit code with
the expected one. Interactive and manual-only demos are skipped.

With no names, all demos are validated; on a terminal with several demos a
picker is shown unless --non-interactive is set.

Exit code 0 if nothing failed (including when there are no demos), 1 on any
failure, a missing config, or an unknown demo name.

Formats:
  text   Human-readable output (default)
  json   Indented JSON report to stdout
  junit  JUnit XML to stdout (for CI test report ingestion)

Examples:
  dg validate
  dg validate show-help init-project
  dg validate --non-interactive --format junit > dg-report.xml
  dg validate --dry-run
  dg validate --dry-run --format json`,
	RunE: runValidate,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addValidateFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

func addValidateFlags(c *cobra.Command) {
	c.Flags().StringVar(&validateFormatFlag, "format", "text", "Output format: text, json, or junit")
	c.Flags().BoolVar(&validateNonInteractiveFlag, "non-interactive", false, "never prompt; validate all demos when no names are given")
	c.Flags().BoolVar(&validateDryRunFlag, "dry-run", false, "show what would run without executing anything")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(validateFormatFlag)
	switch format {
	case "text", "json", "junit":
	default:
		return fmt.Errorf("invalid format %q: valid values are text, json, junit", validateFormatFlag)
	}
	if validateDryRunFlag && format == "junit" {
		return fmt.Errorf("--dry-run supports --format text or json, not junit")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if len(cfg.Casts) == 0 && format == "text" {
		fmt.Fprintln(out, "No demos found. Run `dg capture` to record your first demo.")
		return nil
	}

	records, err := verify.Select(cfg, args)
	if err != nil {
		return err
	}

	if len(args) == 0 && !validateNonInteractiveFlag && len(records) > 1 && interactiveTerminal() {
		names, err := pickDemos(cmd, records)
		if err != nil {
			if errors.Is(err, picker.ErrCancelled) {
				fmt.Fprintln(errOut, "Operation cancelled.")
				return nil
			}
			return err
		}
		if records, err = verify.Select(cfg, names); err != nil {
			return err
		}
	}

	v := a.validator(cfg)

	if validateDryRunFlag {
		plans := make([]replay.Plan, len(records))
		for i := range records {
			plans[i] = v.Plan(&records[i])
		}
		return writePlans(cmd, format, plans)
	}

	color := verify.ResolveColor(a.settings.Color, os.Stdout)
	orch := &verify.Orchestrator{
		Validator: v,
		Store:     a.store,
		Logger:    a.logger,
	}
	if format == "text" {
		orch.Progress = func(i, total int, rec *project.DemoRecord) {
			fmt.Fprintf(errOut, "Validating %s (%d/%d)...\n", rec.Name, i+1, total)
		}
		orch.Done = func(_ *project.DemoRecord, entry verify.Entry) {
			fmt.Fprintln(out, verify.FormatEntry(entry, color))
		}
	}

	report := orch.Run(cmd.Context(), cfg.Project, records)

	switch format {
	case "json":
		err = verify.FormatJSON(out, report)
	case "junit":
		err = verify.FormatJUnit(out, report)
	default:
		_, err = fmt.Fprint(out, verify.FormatSummary(report, color))
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if code := report.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func writePlans(cmd *cobra.Command, format string, plans []replay.Plan) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	}
	for _, p := range plans {
		switch {
		case p.Skip:
			fmt.Fprintf(out, "○ %s: skip (%s)\n", p.Name, p.Reason)
		case p.Normalized != p.Command:
			fmt.Fprintf(out, "→ %s: %s (as %s, from %s)\n", p.Name, p.Command, p.Normalized, p.Source)
		default:
			fmt.Fprintf(out, "→ %s: %s (from %s)\n", p.Name, p.Command, p.Source)
		}
	}
	return nil
}
