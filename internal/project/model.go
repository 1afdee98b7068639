// Package project provides the types and persistence for a dg project: the
// config file under .dg/ and the demo records it lists.
package project

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/deepguide-ai/dg/internal/filter"
)

const (
	// DefaultVersion is written to newly created configs.
	DefaultVersion = "0.1.0"
	// DefaultOutputDir holds recordings, images and snippets.
	DefaultOutputDir = ".dg"
)

// Config is the project configuration file.
type Config struct {
	Version   string       `json:"version"`
	Project   string       `json:"project"`
	OutputDir string       `json:"outputDir"`
	Casts     []DemoRecord `json:"casts"`
	Updated   time.Time    `json:"updated"`
}

// NewConfig returns an empty config for the named project.
func NewConfig(projectName string) *Config {
	return &Config{
		Version:   DefaultVersion,
		Project:   projectName,
		OutputDir: DefaultOutputDir,
		Casts:     []DemoRecord{},
		Updated:   time.Now().UTC(),
	}
}

// Validate checks that required fields are present and demo records are
// well formed.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Project) == "" {
		missing = append(missing, "project")
	}
	if strings.TrimSpace(c.Version) == "" {
		missing = append(missing, "version")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		missing = append(missing, "outputDir")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	seen := make(map[string]bool, len(c.Casts))
	for i := range c.Casts {
		d := &c.Casts[i]
		if err := d.Validate(); err != nil {
			return fmt.Errorf("cast %d: %w", i, err)
		}
		if seen[d.Name] {
			return fmt.Errorf("cast %d: duplicate name %q", i, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// Find returns the demo with the given name.
func (c *Config) Find(name string) (*DemoRecord, bool) {
	for i := range c.Casts {
		if c.Casts[i].Name == name {
			return &c.Casts[i], true
		}
	}
	return nil, false
}

// Upsert replaces the demo with the same name or appends a new one.
func (c *Config) Upsert(d DemoRecord) {
	if existing, ok := c.Find(d.Name); ok {
		*existing = d
		return
	}
	c.Casts = append(c.Casts, d)
}

// Names returns the demo names in config order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Casts))
	for i, d := range c.Casts {
		names[i] = d.Name
	}
	return names
}

// Mode selects whether a demo is replayed automatically.
type Mode string

const (
	ModeAuto       Mode = "auto"
	ModeManualOnly Mode = "manual-only"
)

// ValidationSpec holds the replay settings of a demo.
type ValidationSpec struct {
	Mode           Mode     `json:"mode"`
	Patterns       []string `json:"patterns,omitempty"`
	ExpectExitCode *int     `json:"expectExitCode,omitempty"`
}

// DemoRecord is one recorded demo.
type DemoRecord struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
	Validated   *time.Time      `json:"validated,omitempty"`
	Interactive bool            `json:"interactive"`
	Validation  *ValidationSpec `json:"validation,omitempty"`
	Command     string          `json:"command,omitempty"`
}

// Validate checks the demo's name, mode and filter patterns.
func (d *DemoRecord) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name must be non-empty")
	}
	if v := d.Validation; v != nil {
		switch v.Mode {
		case "", ModeAuto, ModeManualOnly:
		default:
			return fmt.Errorf("validation.mode must be %q or %q, got %q", ModeAuto, ModeManualOnly, v.Mode)
		}
		if err := filter.Validate(v.Patterns); err != nil {
			return fmt.Errorf("validation.patterns: %w", err)
		}
		if v.ExpectExitCode != nil && (*v.ExpectExitCode < 0 || *v.ExpectExitCode > 255) {
			return fmt.Errorf("validation.expectExitCode must be in range 0-255, got %d", *v.ExpectExitCode)
		}
	}
	return nil
}

// Mode returns the stored validation mode, defaulting to auto.
func (d *DemoRecord) Mode() Mode {
	if d.Validation == nil || d.Validation.Mode == "" {
		return ModeAuto
	}
	return d.Validation.Mode
}

// EffectiveMode is the mode replay honors: interactive demos are always
// manual-only whatever is stored.
func (d *DemoRecord) EffectiveMode() Mode {
	if d.Interactive {
		return ModeManualOnly
	}
	return d.Mode()
}

// ExpectedExitCode returns the exit code that counts as success.
func (d *DemoRecord) ExpectedExitCode() int {
	if d.Validation == nil || d.Validation.ExpectExitCode == nil {
		return 0
	}
	return *d.Validation.ExpectExitCode
}

// Patterns returns the demo's custom filter patterns.
func (d *DemoRecord) Patterns() []string {
	if d.Validation == nil {
		return nil
	}
	return d.Validation.Patterns
}

// DisplayName prefers the title over the name.
func (d *DemoRecord) DisplayName() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

var (
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe   = regexp.MustCompile(`\s+`)
	slugDashRe    = regexp.MustCompile(`-+`)
)

// Slugify turns a demo title into a file-safe name.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugInvalidRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	return s
}
