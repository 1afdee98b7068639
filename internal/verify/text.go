package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deepguide-ai/dg/internal/replay"
	"golang.org/x/term"
)

// ColorMode controls ANSI color in text output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ResolveColor decides whether to emit ANSI codes on f.
// Priority: setting (from DG_COLOR) > NO_COLOR env > TTY detection on f.
func ResolveColor(setting string, f *os.File) ColorMode {
	switch strings.ToLower(setting) {
	case "1", "true", "yes", "on", "always":
		return ColorOn
	case "0", "false", "no", "off", "never":
		return ColorOff
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return ColorOff
	}
	if f != nil && term.IsTerminal(int(f.Fd())) {
		return ColorOn
	}
	return ColorOff
}

func paint(code, s string, c ColorMode) string {
	if c == ColorOn {
		return "\033[" + code + "m" + s + "\033[0m"
	}
	return s
}

func red(s string, c ColorMode) string    { return paint("31", s, c) }
func green(s string, c ColorMode) string  { return paint("32", s, c) }
func yellow(s string, c ColorMode) string { return paint("33", s, c) }
func bold(s string, c ColorMode) string   { return paint("1", s, c) }

// FormatEntry renders the single result line of a demo.
func FormatEntry(e Entry, c ColorMode) string {
	switch e.Status {
	case replay.StatusPassed:
		return fmt.Sprintf("%s %s: passed", green("✓", c), e.Name)
	case replay.StatusSkipped:
		return fmt.Sprintf("%s %s: skipped (%s)", yellow("○", c), e.Name, e.Reason)
	default:
		return fmt.Sprintf("%s %s: failed (%s)", red("✗", c), e.Name, e.Reason)
	}
}

// FormatText writes one line per demo followed by a summary.
func FormatText(w io.Writer, report *Report, c ColorMode) error {
	var sb strings.Builder
	for _, e := range report.Entries {
		sb.WriteString(FormatEntry(e, c))
		sb.WriteString("\n")
	}
	sb.WriteString(FormatSummary(report, c))
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatSummary renders the counts line, plus the failed demos and an
// interruption notice when relevant.
func FormatSummary(report *Report, c ColorMode) string {
	var sb strings.Builder
	if report.Total == 0 {
		sb.WriteString("No demos to validate.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\n%s %s passed, %s skipped, %s failed (%d total)\n",
		bold("Result:", c),
		green(fmt.Sprint(report.Passed), c),
		yellow(fmt.Sprint(report.Skipped), c),
		red(fmt.Sprint(report.Failed), c),
		report.Total)

	if report.Failed > 0 {
		sb.WriteString("\nFailed demos:\n")
		for _, e := range report.Entries {
			if e.Status == replay.StatusFailed {
				fmt.Fprintf(&sb, "  - %s: %s\n", e.Name, e.Reason)
			}
		}
	}
	if report.Interrupted {
		sb.WriteString("\nValidation interrupted; remaining demos were not run.\n")
	}
	return sb.String()
}
