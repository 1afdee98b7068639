package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
)

// ConfigDir is the directory, relative to the project root, that holds the
// config file.
const ConfigDir = ".dg"

// ConfigFileName is the config file inside ConfigDir.
const ConfigFileName = "config.json"

var (
	// ErrNoConfig is returned when the project has not been initialized.
	ErrNoConfig = errors.New("no config found. Run `dg init` first")
	// ErrDemoNotFound is returned when a named demo is not in the config.
	ErrDemoNotFound = errors.New("demo not found")
)

// Store reads and writes the config of the project rooted at Root. Every
// mutation is a full read-modify-write of the file; the last writer wins.
type Store struct {
	Root string
	now  func() time.Time
}

// NewStore returns a Store for the project rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root, now: func() time.Time { return time.Now().UTC() }}
}

// ConfigPath returns the absolute location of the config file.
func (s *Store) ConfigPath() string {
	return filepath.Join(s.Root, ConfigDir, ConfigFileName)
}

// Exists reports whether the config file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.ConfigPath())
	return err == nil
}

// Load reads and validates the config. A missing file yields ErrNoConfig.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.ConfigPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a config with strict field checking and validates it.
func Decode(r io.Reader) (*Config, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty config file")
		}
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Casts == nil {
		cfg.Casts = []DemoRecord{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save validates cfg and atomically replaces the config file with it,
// indented by two spaces.
func (s *Store) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config object: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(s.ConfigPath(), data)
}

// Update runs fn against the current config and saves the result. Nothing is
// written if fn returns an error.
func (s *Store) Update(fn func(cfg *Config) error) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	cfg.Updated = s.now()
	return s.Save(cfg)
}

// Demo returns a single demo by name.
func (s *Store) Demo(name string) (*DemoRecord, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	d, ok := cfg.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDemoNotFound, name)
	}
	return d, nil
}

// MarkValidated records at as the demo's last successful validation.
func (s *Store) MarkValidated(name string, at time.Time) error {
	return s.Update(func(cfg *Config) error {
		d, ok := cfg.Find(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrDemoNotFound, name)
		}
		ts := at.UTC()
		d.Validated = &ts
		return nil
	})
}

// Layout returns the asset directories of cfg.
func (s *Store) Layout(cfg *Config) Layout {
	base := cfg.OutputDir
	if !filepath.IsAbs(base) {
		base = filepath.Join(s.Root, base)
	}
	return Layout{
		Base:     base,
		Casts:    filepath.Join(base, "casts"),
		SVG:      filepath.Join(base, "svg"),
		Snippets: filepath.Join(base, "snippets"),
	}
}

// Layout is the on-disk structure under the output directory.
type Layout struct {
	Base     string
	Casts    string
	SVG      string
	Snippets string
}

// CastPath returns the recording file of the named demo.
func (l Layout) CastPath(name string) string {
	return filepath.Join(l.Casts, name+".cast")
}

// SVGPath returns the image of the named demo for a theme.
func (l Layout) SVGPath(name, theme string) string {
	return filepath.Join(l.SVG, fmt.Sprintf("%s-%s.svg", name, theme))
}

// SnippetPath returns the markdown snippet of the named demo.
func (l Layout) SnippetPath(name string) string {
	return filepath.Join(l.Snippets, name+".md")
}

// Ensure creates all layout directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Base, l.Casts, l.SVG, l.Snippets} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// writeFileAtomic writes to a temp file next to path and renames it over
// path.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename config file: %w", err)
	}
	return nil
}

// DetectProjectName guesses a project name from package.json, go.mod or the
// directory name, in that order.
func DetectProjectName(root string) string {
	if data, err := os.ReadFile(filepath.Join(root, "package.json")); err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			name := pkg.Name
			if strings.HasPrefix(name, "@") {
				if i := strings.Index(name, "/"); i >= 0 {
					name = name[i+1:]
				}
			}
			return name
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "go.mod")); err == nil {
		if mod := modfile.ModulePath(data); mod != "" {
			return path.Base(mod)
		}
	}

	if abs, err := filepath.Abs(root); err == nil {
		if base := filepath.Base(abs); base != "" && base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return "my-cli"
}
