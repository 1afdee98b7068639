// Package settings loads the user-level dg settings: an optional TOML file
// overlaid with DG_* environment variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPath names the variable that overrides the settings file location.
const EnvPath = "DG_CONFIG"

// Settings are user preferences that apply to every project.
type Settings struct {
	Engines Engines `toml:"engines"`
	Capture Capture `toml:"capture"`
	Replay  Replay  `toml:"replay"`

	// Repo is the owner/name used to build raw image URLs in snippets.
	Repo string `toml:"repo" env:"DG_REPO"`

	// Trace enables debug logging regardless of --verbose.
	Trace bool `toml:"-" env:"DG_TRACE"`
	// Color forces ANSI color on ("1", "true") or off ("0", "false").
	Color string `toml:"-" env:"DG_COLOR"`
	// GPLOff disables the project-bundled asciinema binary.
	GPLOff bool `toml:"-" env:"DG_GPL_OFF"`
}

// Engines overrides the location of external tools.
type Engines struct {
	Asciinema string `toml:"asciinema" env:"DG_ASCIINEMA_PATH"`
	Termsvg   string `toml:"termsvg" env:"DG_TERMSVG_PATH"`
}

// Capture controls recording and image export.
type Capture struct {
	Cols      int      `toml:"cols"`
	Rows      int      `toml:"rows"`
	Themes    []string `toml:"themes"`
	Minify    bool     `toml:"minify"`
	Clipboard bool     `toml:"clipboard"`
}

// Replay controls validation runs.
type Replay struct {
	DenyEnv         []string      `toml:"deny_env" env:"DG_DENY_ENV" envSeparator:","`
	StandardFilters bool          `toml:"standard_filters" env:"DG_STANDARD_FILTERS"`
	Timeout         time.Duration `toml:"timeout" env:"DG_REPLAY_TIMEOUT"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Capture: Capture{
			Cols:      120,
			Rows:      30,
			Themes:    []string{"light", "dark"},
			Minify:    true,
			Clipboard: true,
		},
		Replay: Replay{
			Timeout: 30 * time.Second,
		},
	}
}

// Path returns the settings file location: $DG_CONFIG, or config.toml in the
// user config directory.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dg", "config.toml")
}

// Load reads the settings file at path (a missing file is fine) and applies
// environment overrides on top.
func Load(path string) (*Settings, error) {
	s := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, s)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				sort.Strings(keys)
				return nil, fmt.Errorf("unknown settings keys in %s: %s", path, strings.Join(keys, ", "))
			}
		}
	}

	if err := env.Parse(s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Capture.Cols <= 0 || s.Capture.Rows <= 0 {
		return fmt.Errorf("capture.cols and capture.rows must be positive, got %dx%d", s.Capture.Cols, s.Capture.Rows)
	}
	for _, theme := range s.Capture.Themes {
		if theme != "light" && theme != "dark" {
			return fmt.Errorf("capture.themes: unknown theme %q", theme)
		}
	}
	if s.Replay.Timeout <= 0 {
		return fmt.Errorf("replay.timeout must be positive, got %s", s.Replay.Timeout)
	}
	return nil
}
