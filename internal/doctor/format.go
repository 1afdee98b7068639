package doctor

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).PaddingLeft(3)
	headingStyle = lipgloss.NewStyle().Bold(true)
)

func icon(s Status) string {
	switch s {
	case StatusOK:
		return okStyle.Render("✓")
	case StatusWarning:
		return warnStyle.Render("!")
	default:
		return errStyle.Render("✗")
	}
}

// Format writes the report. Details are shown only when verbose.
func Format(w io.Writer, r Report, verbose bool) error {
	if _, err := fmt.Fprintln(w, headingStyle.Render("System Status:")); err != nil {
		return err
	}
	for _, res := range r.Results {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", icon(res.Status), res.Category, res.Message); err != nil {
			return err
		}
		if verbose && res.Details != "" {
			if _, err := fmt.Fprintln(w, detailStyle.Render(res.Details)); err != nil {
				return err
			}
		}
	}

	overall := "All systems operational"
	switch {
	case r.HasErrors():
		overall = errStyle.Render("Issues detected")
	case r.HasWarnings():
		overall = warnStyle.Render("Minor warnings")
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", overall); err != nil {
		return err
	}
	if (r.HasErrors() || r.HasWarnings()) && !verbose {
		_, err := fmt.Fprintln(w, "Run `dg doctor --verbose` for details")
		return err
	}
	return nil
}
