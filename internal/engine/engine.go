// Package engine is the boundary to the external programs dg drives: the
// asciinema recorder and the termsvg image exporter. Callers only see
// capabilities and errors; an unavailable tool is described, never fatal.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// probeTimeout bounds version and help probes.
const probeTimeout = 5 * time.Second

// Source tells where a tool binary was found.
type Source string

const (
	SourceConfigured Source = "configured"
	SourceBundled    Source = "bundled"
	SourcePath       Source = "path"
	SourceNone       Source = "none"
)

// Capability describes an external tool: either available with a version, or
// unavailable with an install hint.
type Capability struct {
	Tool              string `json:"tool"`
	Available         bool   `json:"available"`
	Version           string `json:"version,omitempty"`
	Path              string `json:"path,omitempty"`
	Source            Source `json:"source"`
	SupportsRecording bool   `json:"supports_recording,omitempty"`
	InstallHint       string `json:"install_hint,omitempty"`
}

// String renders the capability on one line.
func (c Capability) String() string {
	if !c.Available {
		return fmt.Sprintf("%s: not available (%s)", c.Tool, c.InstallHint)
	}
	version := c.Version
	if version == "" {
		version = "unknown version"
	}
	return fmt.Sprintf("%s: %s (%s, %s)", c.Tool, version, c.Source, c.Path)
}

// ToolError is returned when an engine invocation fails.
type ToolError struct {
	Tool   string
	Op     string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %v", e.Tool, e.Op, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// probe runs path with args and returns its combined output.
func probe(ctx context.Context, path string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return runTool(ctx, path, args...)
}

// runTool runs path with args until it exits or ctx is done.
func runTool(ctx context.Context, path string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // tool path comes from settings or PATH lookup
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
