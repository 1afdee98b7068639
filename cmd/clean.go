package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepguide-ai/dg/internal/project"
	"github.com/spf13/cobra"
)

var cleanYesFlag bool

// confirmClean asks before deleting; replaced in tests.
var confirmClean = func(cmd *cobra.Command) (bool, error) {
	if !interactiveTerminal() {
		return false, fmt.Errorf("refusing to remove data without confirmation (use --yes)")
	}
	fmt.Fprint(cmd.OutOrStdout(), "This will remove ALL dg data (config, demos, assets). Continue? [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all dg data from the project",
	Long: `Delete the project config, every recording, image and snippet. The CI
workflow is left in place.

Asks for confirmation on a terminal; pass --yes in scripts.

Examples:
  dg clean
  dg clean --yes`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addCleanFlags(cleanCmd)
	rootCmd.AddCommand(cleanCmd)
}

func addCleanFlags(c *cobra.Command) {
	c.Flags().BoolVarP(&cleanYesFlag, "yes", "y", false, "do not ask for confirmation")
}

func runClean(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if !a.store.Exists() {
		return project.ErrNoConfig
	}

	// .dg is removed even when the config cannot be read
	targets := []string{filepath.Join(a.root, project.ConfigDir)}
	if cfg, err := a.store.Load(); err == nil {
		if base := a.store.Layout(cfg).Base; base != targets[0] {
			targets = append(targets, base)
		}
	}

	for _, dir := range targets {
		if !within(a.root, dir) {
			return fmt.Errorf("refusing to remove %s: outside the project", dir)
		}
	}

	if !cleanYesFlag {
		ok, err := confirmClean(cmd)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Operation cancelled.")
			return nil
		}
	}

	for _, dir := range targets {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		a.logger.Debug("removed", "path", dir)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All dg data removed. Run `dg init` to start fresh.")
	return nil
}

// within reports whether path is strictly inside root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
