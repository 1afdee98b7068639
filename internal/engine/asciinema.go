package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/creack/pty"
	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/platform"
	"golang.org/x/term"
)

// ToolAsciinema is the recorder's binary name.
const ToolAsciinema = "asciinema"

// makeRaw puts the controlling terminal into raw mode; replaced in tests.
var makeRaw = term.MakeRaw

// Asciinema drives the asciinema recorder.
type Asciinema struct {
	Resolver platform.CommandResolver
	// ConfiguredPath is an explicit binary from settings; it wins when set.
	ConfiguredPath string
	// BundledDir holds a project-local binary (<root>/.dg/bin).
	BundledDir string
	// GPLOff skips the bundled binary.
	GPLOff bool
	// GOOS defaults to runtime.GOOS.
	GOOS   string
	Logger *slog.Logger

	notice sync.Once
}

// gplNotice is shown once per process when the bundled recorder runs.
const gplNotice = "dg uses asciinema (GPL-3.0) via bundled binary; set DG_GPL_OFF=1 to use the one on PATH"

// RecordOptions configures a recording.
type RecordOptions struct {
	Cols      int
	Rows      int
	Overwrite bool
	// Command records a single command instead of an interactive shell.
	Command string
	// Env is the base environment; nil means os.Environ.
	Env    []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	// InputTap receives every byte typed during an interactive recording.
	InputTap io.Writer
}

func (a *Asciinema) goos() string {
	if a.GOOS == "" {
		return runtime.GOOS
	}
	return a.GOOS
}

// Locate returns the binary to use and where it came from.
func (a *Asciinema) Locate() (string, Source) {
	if a.ConfiguredPath != "" {
		if p, err := a.Resolver.Resolve(a.ConfiguredPath); err == nil {
			return p, SourceConfigured
		}
		return a.ConfiguredPath, SourceNone
	}
	if !a.GPLOff && a.BundledDir != "" {
		bundled := filepath.Join(a.BundledDir, a.Resolver.ExecutableName(ToolAsciinema))
		if p, err := a.Resolver.Resolve(bundled); err == nil {
			return p, SourceBundled
		}
	}
	if p, err := a.Resolver.Resolve(ToolAsciinema); err == nil {
		return p, SourcePath
	}
	return "", SourceNone
}

// Check probes the recorder with --version.
func (a *Asciinema) Check(ctx context.Context) Capability {
	c := Capability{Tool: ToolAsciinema, InstallHint: InstallHint(ToolAsciinema, a.goos())}
	path, source := a.Locate()
	c.Path, c.Source = path, source
	if source == SourceNone {
		return c
	}

	out, err := probe(ctx, path, "--version")
	if err != nil {
		logging.OrDiscard(a.Logger).Debug("asciinema probe failed", "path", path, "error", err)
		c.Source = SourceNone
		return c
	}
	c.Available = true
	c.SupportsRecording = a.goos() != "windows"
	c.Version = firstLine(out)
	c.InstallHint = ""
	return c
}

// recordEnv overlays the variables a reproducible recording needs.
func recordEnv(base []string, cols, rows int) []string {
	overlay := map[string]string{
		"COLUMNS":  strconv.Itoa(cols),
		"LINES":    strconv.Itoa(rows),
		"TERM":     "xterm-256color",
		"SHELL":    "/bin/sh",
		"PS1":      "$ ",
		"HISTFILE": "/dev/null",
	}
	env := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overlay[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range []string{"COLUMNS", "LINES", "TERM", "SHELL", "PS1", "HISTFILE"} {
		env = append(env, key+"="+overlay[key])
	}
	return env
}

// Record writes a recording to castPath. With a terminal on stdin the
// recorder runs inside a pseudo-terminal and stdin is forwarded in raw mode;
// otherwise it runs attached to the given streams.
func (a *Asciinema) Record(ctx context.Context, castPath string, opts RecordOptions) error {
	path, source := a.Locate()
	if source == SourceNone {
		return &ToolError{Tool: ToolAsciinema, Op: "rec", Err: fmt.Errorf("not installed: %s", InstallHint(ToolAsciinema, a.goos()))}
	}
	if opts.Cols <= 0 {
		opts.Cols = 120
	}
	if opts.Rows <= 0 {
		opts.Rows = 30
	}

	if opts.Overwrite {
		if err := os.Remove(castPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove existing recording %s: %w", castPath, err)
		}
	}

	args := []string{
		"rec", castPath,
		"--overwrite",
		"--cols", strconv.Itoa(opts.Cols),
		"--rows", strconv.Itoa(opts.Rows),
		"--env", "COLUMNS,LINES,TERM,SHELL",
	}
	if opts.Command != "" {
		args = append(args, "--command", opts.Command)
	}

	base := opts.Env
	if base == nil {
		base = os.Environ()
	}
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // recorder path comes from settings or PATH lookup
	cmd.Env = recordEnv(base, opts.Cols, opts.Rows)
	cmd.Dir = opts.Dir

	if source == SourceBundled {
		a.notice.Do(func() { logging.OrDiscard(a.Logger).Info(gplNotice) })
	}
	logging.OrDiscard(a.Logger).Debug("starting recorder", "path", path, "source", source, "args", args)

	if f, ok := opts.Stdin.(*os.File); ok && opts.Command == "" && term.IsTerminal(int(f.Fd())) {
		return a.recordPTY(cmd, f, opts)
	}

	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stdout
	if err := cmd.Run(); err != nil {
		return &ToolError{Tool: ToolAsciinema, Op: "rec", Err: err}
	}
	return nil
}

func (a *Asciinema) recordPTY(cmd *exec.Cmd, stdin *os.File, opts RecordOptions) error {
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(opts.Rows), Cols: uint16(opts.Cols)}) //nolint:gosec // dimensions are validated settings
	if err != nil {
		return &ToolError{Tool: ToolAsciinema, Op: "rec", Err: err}
	}
	defer func() { _ = ptmx.Close() }()

	state, err := makeRaw(int(stdin.Fd()))
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("failed to set terminal raw mode: %w", err)
	}
	defer func() { _ = term.Restore(int(stdin.Fd()), state) }()

	var in io.Reader = stdin
	if opts.InputTap != nil {
		in = io.TeeReader(stdin, opts.InputTap)
	}
	go func() { _, _ = io.Copy(ptmx, in) }()

	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	_, _ = io.Copy(out, ptmx) // returns EIO once the child exits

	if err := cmd.Wait(); err != nil {
		return &ToolError{Tool: ToolAsciinema, Op: "rec", Err: err}
	}
	_, _ = io.WriteString(out, "\r\n")
	return nil
}
