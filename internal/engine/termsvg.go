package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/platform"
)

// ToolTermsvg is the exporter's binary name.
const ToolTermsvg = "termsvg"

var helpVersionRe = regexp.MustCompile(`(?i)termsvg\s+v?(\d+\.\d+\.\d+)`)

// Termsvg drives the termsvg exporter.
type Termsvg struct {
	Resolver platform.CommandResolver
	// ConfiguredPath is an explicit binary from settings; it wins when set.
	ConfiguredPath string
	// GOOS defaults to runtime.GOOS.
	GOOS   string
	Logger *slog.Logger
}

func (t *Termsvg) goos() string {
	if t.GOOS == "" {
		return runtime.GOOS
	}
	return t.GOOS
}

// Locate returns the binary to use and where it came from.
func (t *Termsvg) Locate() (string, Source) {
	name, source := ToolTermsvg, SourcePath
	if t.ConfiguredPath != "" {
		name, source = t.ConfiguredPath, SourceConfigured
	}
	p, err := t.Resolver.Resolve(name)
	if err != nil {
		return "", SourceNone
	}
	return p, source
}

// Available reports whether the exporter binary can be found.
func (t *Termsvg) Available() bool {
	_, source := t.Locate()
	return source != SourceNone
}

// Check probes the exporter: --help must succeed; the version comes from
// --version or, failing that, the help text.
func (t *Termsvg) Check(ctx context.Context) Capability {
	c := Capability{Tool: ToolTermsvg, InstallHint: InstallHint(ToolTermsvg, t.goos())}
	path, source := t.Locate()
	c.Path, c.Source = path, source
	if source == SourceNone {
		return c
	}

	help, err := probe(ctx, path, "--help")
	if err != nil {
		logging.OrDiscard(t.Logger).Debug("termsvg probe failed", "path", path, "error", err)
		c.Source = SourceNone
		return c
	}

	c.Available = true
	c.InstallHint = ""
	c.SupportsRecording = strings.Contains(help, "rec") && t.goos() != "windows"
	c.Version = "unknown"
	if out, err := probe(ctx, path, "--version"); err == nil && firstLine(out) != "" {
		c.Version = firstLine(out)
	} else if m := helpVersionRe.FindStringSubmatch(help); m != nil {
		c.Version = m[1]
	}
	return c
}

// Export renders castPath into an SVG at svgPath.
func (t *Termsvg) Export(ctx context.Context, castPath, svgPath string, minify bool) error {
	path, source := t.Locate()
	if source == SourceNone {
		return &ToolError{Tool: ToolTermsvg, Op: "export", Err: fmt.Errorf("not installed: %s", InstallHint(ToolTermsvg, t.goos()))}
	}
	if _, err := os.Stat(castPath); err != nil {
		return fmt.Errorf("recording not found: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(svgPath), 0750); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	args := []string{"export", castPath, "--output", svgPath}
	if minify {
		args = append(args, "--minify")
	}
	logging.OrDiscard(t.Logger).Debug("exporting image", "path", path, "args", args)

	out, err := runTool(ctx, path, args...)
	if err != nil {
		return &ToolError{Tool: ToolTermsvg, Op: "export", Output: out, Err: err}
	}
	if _, err := os.Stat(svgPath); err != nil {
		return &ToolError{Tool: ToolTermsvg, Op: "export", Output: out, Err: fmt.Errorf("no image written to %s", svgPath)}
	}
	return nil
}
