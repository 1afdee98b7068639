// Package cmd implements the dg Cobra command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	dirFlag     string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "dg",
	Short: "Record terminal demos and keep them working",
	Long: `dg - record terminal demos, publish them as images, and check in CI that
the commands they show still behave the same way.

Examples:
  # Set up the current project
  dg init

  # Record a demo
  dg capture --title "Show Help"

  # Replay every demo, as CI does
  dg validate --non-interactive

  # Regenerate images and snippets
  dg generate --all`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code for a command that already reported
// its outcome.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func addPersistentFlags(c *cobra.Command) {
	c.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "project directory (default: current directory)")
	c.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging and detailed output")
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addPersistentFlags(rootCmd)
	rootCmd.SetVersionTemplate(fmt.Sprintf("dg version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
}
