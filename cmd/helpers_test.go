package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deepguide-ai/dg/internal/project"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every package-level flag to its default.
func resetFlags() {
	dirFlag, verboseFlag = "", false
	validateFormatFlag, validateNonInteractiveFlag, validateDryRunFlag = "text", false, false
	initProjectFlag, initForceFlag, initNoWorkflowFlag = "", false, false
	captureTitleFlag, captureNameFlag, captureCommandFlag = "", "", ""
	captureOverwriteFlag, captureNoClipboardFlag = false, false
	listFormatFlag = "text"
	generateAllFlag = false
	checkStrictFlag, checkCastFlag = false, ""
	cleanYesFlag = false
	doctorFormatFlag = "text"
}

// makeRoot creates a fresh root carrying the given subcommand.
func makeRoot(t *testing.T, sub *cobra.Command) *cobra.Command {
	t.Helper()
	resetFlags()
	root := &cobra.Command{
		Use:           "dg",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addPersistentFlags(root)
	root.AddCommand(sub)
	return root
}

func newCmd(use string, run func(*cobra.Command, []string) error, flags func(*cobra.Command)) *cobra.Command {
	c := &cobra.Command{Use: use, RunE: run}
	if flags != nil {
		flags(c)
	}
	return c
}

// execute runs root with args and returns what it wrote.
func execute(t *testing.T, root *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// isolate points user settings and engine paths away from the host.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DG_CONFIG", filepath.Join(dir, "settings.toml"))
	t.Setenv("DG_ASCIINEMA_PATH", filepath.Join(dir, "no-asciinema"))
	t.Setenv("DG_TERMSVG_PATH", filepath.Join(dir, "no-termsvg"))
	t.Setenv("DG_COLOR", "0")
}

// setupProject creates an initialized project holding demos and returns its
// root.
func setupProject(t *testing.T, demos ...project.DemoRecord) string {
	t.Helper()
	isolate(t)
	root := t.TempDir()
	store := project.NewStore(root)
	cfg := project.NewConfig("demo-project")
	now := time.Now().UTC()
	for _, d := range demos {
		if d.Title == "" {
			d.Title = d.Name
		}
		d.Created, d.Updated = now, now
		cfg.Casts = append(cfg.Casts, d)
	}
	require.NoError(t, store.Save(cfg))
	require.NoError(t, store.Layout(cfg).Ensure())
	return root
}

func autoDemo(name, command string) project.DemoRecord {
	return project.DemoRecord{Name: name, Command: command, Validation: &project.ValidationSpec{Mode: project.ModeAuto}}
}

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0700)) //nolint:gosec // test helper needs an executable
}
