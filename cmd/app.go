package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deepguide-ai/dg/internal/assets"
	"github.com/deepguide-ai/dg/internal/engine"
	"github.com/deepguide-ai/dg/internal/filter"
	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/platform"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/deepguide-ai/dg/internal/replay"
	"github.com/deepguide-ai/dg/internal/settings"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app holds what every subcommand needs: the project root, user settings,
// the logger and the platform strategies.
type app struct {
	root     string
	settings *settings.Settings
	logger   *slog.Logger
	store    *project.Store
	platform platform.Platform
}

func newApp(cmd *cobra.Command) (*app, error) {
	root := dirFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	s, err := settings.Load(settings.Path())
	if err != nil {
		return nil, err
	}

	logger := logging.New(cmd.ErrOrStderr(), verboseFlag || s.Trace)
	logger.Debug("starting", "command", cmd.Name(), "root", root)

	return &app{
		root:     root,
		settings: s,
		logger:   logger,
		store:    project.NewStore(root),
		platform: platform.New(),
	}, nil
}

func (a *app) asciinema() *engine.Asciinema {
	return &engine.Asciinema{
		Resolver:       a.platform,
		ConfiguredPath: a.settings.Engines.Asciinema,
		BundledDir:     filepath.Join(a.root, project.ConfigDir, "bin"),
		GPLOff:         a.settings.GPLOff,
		Logger:         a.logger,
	}
}

func (a *app) termsvg() *engine.Termsvg {
	return &engine.Termsvg{
		Resolver:       a.platform,
		ConfiguredPath: a.settings.Engines.Termsvg,
		Logger:         a.logger,
	}
}

// generator builds the asset generator; it has no exporter when termsvg
// cannot be found.
func (a *app) generator(cfg *project.Config) *assets.Generator {
	g := &assets.Generator{
		Layout: a.store.Layout(cfg),
		Root:   a.root,
		Minify: a.settings.Capture.Minify,
		Repo:   a.settings.Repo,
		Logger: a.logger,
	}
	if t := a.termsvg(); t.Available() {
		g.Exporter = t
	}
	return g
}

func (a *app) validator(cfg *project.Config) *replay.Validator {
	layout := a.store.Layout(cfg)
	var base []string
	if a.settings.Replay.StandardFilters {
		base = filter.StandardPatterns()
	}
	return &replay.Validator{
		Shell:       a.platform,
		Timeout:     a.settings.Replay.Timeout,
		CastPath:    layout.CastPath,
		Dir:         a.root,
		DenyEnv:     a.settings.Replay.DenyEnv,
		BaseFilters: base,
		Logger:      a.logger,
	}
}

// isTerminal reports whether both stdin and stdout are terminals.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
