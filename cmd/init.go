package cmd

import (
	"fmt"

	"github.com/deepguide-ai/dg/internal/project"
	"github.com/deepguide-ai/dg/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	initProjectFlag    string
	initForceFlag      bool
	initNoWorkflowFlag bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up dg in the current project",
	Long: `Create the .dg directory, the project config and a CI workflow that runs
'dg validate --non-interactive' on every push.

The project name defaults to the name in package.json, the module path in
go.mod, or the directory name.

Examples:
  dg init
  dg init --project my-cli --no-workflow
  dg init --force   # reinitialize, keeping recorded demos`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() { //nolint:gochecknoinits // Standard cobra pattern
	addInitFlags(initCmd)
	rootCmd.AddCommand(initCmd)
}

func addInitFlags(c *cobra.Command) {
	c.Flags().StringVar(&initProjectFlag, "project", "", "project name (default: detected)")
	c.Flags().BoolVar(&initForceFlag, "force", false, "reinitialize an existing project")
	c.Flags().BoolVar(&initNoWorkflowFlag, "no-workflow", false, "do not create the CI workflow")
}

func runInit(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	var existing *project.Config
	if a.store.Exists() {
		if !initForceFlag {
			return fmt.Errorf("dg is already initialized in %s (use --force to reinitialize)", a.root)
		}
		// a corrupt config is replaced
		if cfg, err := a.store.Load(); err == nil {
			existing = cfg
		} else {
			a.logger.Warn("replacing unreadable config", "error", err)
		}
	}

	name := initProjectFlag
	if name == "" {
		name = project.DetectProjectName(a.root)
	}
	cfg := project.NewConfig(name)
	if existing != nil {
		cfg.OutputDir = existing.OutputDir
		cfg.Casts = existing.Casts
	}

	if err := a.store.Layout(cfg).Ensure(); err != nil {
		return err
	}
	if err := a.store.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized dg project %q in %s\n", cfg.Project, cfg.OutputDir)

	if !initNoWorkflowFlag {
		path, written, err := scaffold.WriteWorkflow(a.root, initForceFlag)
		switch {
		case err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to create CI workflow: %v\n", err)
		case written:
			fmt.Fprintf(out, "Created CI workflow %s\n", scaffold.WorkflowPath)
		default:
			a.logger.Debug("kept existing workflow", "path", path)
		}
	}

	c := a.asciinema().Check(cmd.Context())
	if c.Available {
		fmt.Fprintf(out, "Using %s asciinema %s\n", c.Source, c.Version)
	} else {
		fmt.Fprintf(out, "asciinema not found; install it before recording: %s\n", c.InstallHint)
	}
	return nil
}
