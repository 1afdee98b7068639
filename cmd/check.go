package cmd

import (
	"fmt"
	"strings"

	"github.com/deepguide-ai/dg/internal/cast"
	"github.com/deepguide-ai/dg/internal/filter"
	"github.com/deepguide-ai/dg/internal/interactive"
	"github.com/spf13/cobra"
)

var (
	checkStrictFlag bool
	checkCastFlag   string
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] -- <command> [args...]",
	Short: "Check whether a command or recording is interactive",
	Long: `Report whether a command is likely to wait for input (editors, password
prompts, logins), and suggest a non-interactive alternative.

With --cast, scan an existing recording for prompts instead and suggest
output filters for values that change between runs.

Exit code 0 unless --strict is set and the result is interactive.

Examples:
  dg check -- git commit
  dg check --strict -- sudo make install
  dg check --cast .dg/casts/show-help.cast`,
	RunE: runCheck,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addCheckFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

func addCheckFlags(c *cobra.Command) {
	c.Flags().BoolVar(&checkStrictFlag, "strict", false, "exit 1 when the result is interactive")
	c.Flags().StringVar(&checkCastFlag, "cast", "", "scan this recording instead of a command")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	var isInteractive bool

	switch {
	case checkCastFlag != "":
		if len(args) > 0 {
			return fmt.Errorf("--cast cannot be combined with a command")
		}
		r, err := interactive.DetectFile(checkCastFlag)
		if err != nil {
			return fmt.Errorf("failed to read recording: %w", err)
		}
		isInteractive = r.Interactive
		if r.Interactive {
			fmt.Fprintf(out, "Interactive: prompt %q found\n", strings.TrimSpace(r.Payload))
		} else {
			fmt.Fprintln(out, "Not interactive: no prompts found")
		}
		if err := printFilterSuggestions(cmd, checkCastFlag); err != nil {
			return err
		}

	case len(args) > 0:
		command := strings.Join(args, " ")
		reason, ok := interactive.CheckCommand(command)
		isInteractive = ok
		if !ok {
			fmt.Fprintf(out, "Not interactive: %s\n", command)
			break
		}
		fmt.Fprintf(out, "Interactive: %s\n", reason)
		if alt, ok := interactive.SuggestAlternative(command); ok {
			fmt.Fprintf(out, "Try instead: %s\n", alt)
		}

	default:
		return fmt.Errorf("specify a command after -- or --cast <file>")
	}

	if isInteractive && checkStrictFlag {
		return &ExitError{Code: 1}
	}
	return nil
}

// printFilterSuggestions lists filter patterns matching volatile output in
// the recording.
func printFilterSuggestions(cmd *cobra.Command, castPath string) error {
	output, err := cast.OutputFile(castPath)
	if err != nil {
		return err
	}
	suggestions := filter.Suggest(output)
	if len(suggestions) == 0 {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Suggested validation patterns:")
	for _, p := range suggestions {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
