package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/deepguide-ai/dg/internal/doctor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var doctorFormatFlag string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the recording environment",
	Long: `Check the recording engine (asciinema), the image exporter (termsvg), the
project storage, the CI workflow, platform support and terminal size.

Exit code 1 when any check reports an error.

Examples:
  dg doctor
  dg doctor --verbose
  dg doctor --format json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addDoctorFlags(doctorCmd)
	rootCmd.AddCommand(doctorCmd)
}

func addDoctorFlags(c *cobra.Command) {
	c.Flags().StringVar(&doctorFormatFlag, "format", "text", "Output format: text or json")
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(doctorFormatFlag)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: valid values are text, json", doctorFormatFlag)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	d := &doctor.Doctor{
		Recorder: a.asciinema(),
		Exporter: a.termsvg(),
		Store:    a.store,
		GPLOff:   a.settings.GPLOff,
		TermSize: func() (int, int, error) { return term.GetSize(int(os.Stdout.Fd())) },
	}
	report := d.Run(cmd.Context())

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	} else {
		err = doctor.Format(out, report, verboseFlag)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if report.HasErrors() {
		return &ExitError{Code: 1}
	}
	return nil
}
