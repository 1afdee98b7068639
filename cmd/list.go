package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listFormatFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded demos",
	Long: `List every demo with its validation mode, image status and timestamps.

Formats:
  text   Table (default)
  json   JSON array to stdout

Examples:
  dg list
  dg list --format json | jq '.[] | select(.mode == "manual-only")'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addListFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}

func addListFlags(c *cobra.Command) {
	c.Flags().StringVar(&listFormatFlag, "format", "text", "Output format: text or json")
}

// demoStatus is one row of the listing.
type demoStatus struct {
	Name        string       `json:"name"`
	Title       string       `json:"title"`
	Mode        project.Mode `json:"mode"`
	Interactive bool         `json:"interactive"`
	Command     string       `json:"command,omitempty"`
	HasSVG      bool         `json:"has_svg"`
	Updated     time.Time    `json:"updated"`
	Validated   *time.Time   `json:"validated,omitempty"`
}

func runList(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(listFormatFlag)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: valid values are text, json", listFormatFlag)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}
	layout := a.store.Layout(cfg)

	demos := make([]demoStatus, 0, len(cfg.Casts))
	for i := range cfg.Casts {
		d := &cfg.Casts[i]
		_, statErr := os.Stat(layout.SVGPath(d.Name, "light"))
		demos = append(demos, demoStatus{
			Name:        d.Name,
			Title:       d.Title,
			Mode:        d.EffectiveMode(),
			Interactive: d.Interactive,
			Command:     d.Command,
			HasSVG:      statErr == nil,
			Updated:     d.Updated,
			Validated:   d.Validated,
		})
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(demos)
	}

	if len(demos) == 0 {
		fmt.Fprintln(out, "No demos found yet.")
		fmt.Fprintln(out, "\nNext steps:\n  Run 'dg capture' to record your first demo")
		return nil
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("No.", "Name", "SVG", "Validation", "Title", "Updated", "Validated").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var missing []string
	interactive := 0
	for i, d := range demos {
		svg := "yes"
		if !d.HasSVG {
			svg = "no"
			missing = append(missing, d.Name)
		}
		mode := "Auto"
		if d.Mode == project.ModeManualOnly {
			mode = "Manual"
		}
		if d.Interactive {
			interactive++
		}
		validated := "never"
		if d.Validated != nil {
			validated = humanize.Time(*d.Validated)
		}
		t.Row(strconv.Itoa(i+1), d.Name, svg, mode, d.Title, humanize.Time(d.Updated), validated)
	}
	fmt.Fprintln(out, t.Render())

	if len(missing) > 0 {
		fmt.Fprintf(out, "\nAction needed:\n%d demo(s) need SVG generation:\n", len(missing))
		for _, name := range missing {
			fmt.Fprintf(out, "  • %s\n", name)
		}
		fmt.Fprintln(out, "\nRun 'dg generate --all' to create missing assets.")
	}
	if interactive > 0 {
		fmt.Fprintf(out, "\nNote:\n%d demo(s) contain interactive elements and require manual validation in CI.\n", interactive)
	}
	return nil
}
