//go:build !windows

package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

// writeTool writes an executable shell script named name into dir.
func writeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0700)) //nolint:gosec // test helper needs an executable
	return path
}

const fakeAsciinema = `case "$1" in
--version) echo "asciinema 2.4.0" ;;
rec)
  printf '{"version": 2, "width": %s, "height": %s}\n' "$5" "$7" > "$2"
  printf '[0.1, "o", "$ "]\n' >> "$2"
  env > "$2.env"
  ;;
esac`

func TestAsciinema_LocatePrecedence(t *testing.T) {
	dir := t.TempDir()
	bundled := filepath.Join(dir, ".dg", "bin")
	require.NoError(t, os.MkdirAll(bundled, 0750))
	bin := writeTool(t, bundled, ToolAsciinema, fakeAsciinema)
	configured := writeTool(t, dir, "my-asciinema", fakeAsciinema)

	a := &Asciinema{Resolver: platform.New(), BundledDir: bundled, ConfiguredPath: configured}
	p, src := a.Locate()
	assert.Equal(t, configured, p)
	assert.Equal(t, SourceConfigured, src)

	a.ConfiguredPath = ""
	p, src = a.Locate()
	assert.Equal(t, bin, p)
	assert.Equal(t, SourceBundled, src)

	a.GPLOff = true
	t.Setenv("PATH", dir)
	_, src = a.Locate()
	assert.NotEqual(t, SourceBundled, src)
}

func TestAsciinema_CheckAvailable(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolAsciinema, fakeAsciinema)

	a := &Asciinema{Resolver: platform.New(), ConfiguredPath: path, GOOS: "linux"}
	c := a.Check(context.Background())
	assert.True(t, c.Available)
	assert.Equal(t, "asciinema 2.4.0", c.Version)
	assert.Equal(t, SourceConfigured, c.Source)
	assert.True(t, c.SupportsRecording)
	assert.Empty(t, c.InstallHint)
	assert.Contains(t, c.String(), "asciinema 2.4.0")
}

func TestAsciinema_CheckUnavailable(t *testing.T) {
	a := &Asciinema{Resolver: platform.New(), ConfiguredPath: filepath.Join(t.TempDir(), "nope"), GOOS: "darwin"}
	c := a.Check(context.Background())
	assert.False(t, c.Available)
	assert.Equal(t, SourceNone, c.Source)
	assert.Equal(t, "brew install asciinema", c.InstallHint)
	assert.Contains(t, c.String(), "not available")
}

func TestAsciinema_CheckFailingProbe(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolAsciinema, "exit 3")

	c := (&Asciinema{Resolver: platform.New(), ConfiguredPath: path}).Check(context.Background())
	assert.False(t, c.Available)
	assert.NotEmpty(t, c.InstallHint)
}

func TestAsciinema_RecordNonTTY(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolAsciinema, fakeAsciinema)
	castPath := filepath.Join(dir, "demo.cast")
	require.NoError(t, os.WriteFile(castPath, []byte("stale"), 0600))

	var out bytes.Buffer
	a := &Asciinema{Resolver: platform.New(), ConfiguredPath: path, Logger: logging.Discard()}
	err := a.Record(context.Background(), castPath, RecordOptions{
		Cols:      100,
		Rows:      25,
		Overwrite: true,
		Command:   "echo hi",
		Env:       []string{"PATH=" + os.Getenv("PATH"), "TERM=dumb", "HOME=" + dir},
		Stdin:     strings.NewReader(""),
		Stdout:    &out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(castPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"width": 100`)
	assert.Contains(t, string(data), `"height": 25`)

	env, err := os.ReadFile(castPath + ".env")
	require.NoError(t, err)
	assert.Contains(t, string(env), "TERM=xterm-256color")
	assert.Contains(t, string(env), "COLUMNS=100")
	assert.Contains(t, string(env), "LINES=25")
	assert.NotContains(t, string(env), "TERM=dumb")
}

func TestAsciinema_RecordMissingTool(t *testing.T) {
	a := &Asciinema{Resolver: platform.New(), ConfiguredPath: filepath.Join(t.TempDir(), "nope")}
	err := a.Record(context.Background(), filepath.Join(t.TempDir(), "x.cast"), RecordOptions{})
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, ToolAsciinema, toolErr.Tool)
}

func TestAsciinema_RecordFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolAsciinema, "exit 1")
	a := &Asciinema{Resolver: platform.New(), ConfiguredPath: path}
	err := a.Record(context.Background(), filepath.Join(dir, "x.cast"), RecordOptions{Command: "true", Stdin: strings.NewReader("")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asciinema rec failed")
}

func TestRecordEnv(t *testing.T) {
	env := recordEnv([]string{"PATH=/bin", "COLUMNS=80", "PS1=>> ", "OPTS=a=b", "TERM"}, 120, 30)
	assert.Contains(t, env, "PATH=/bin")
	assert.Contains(t, env, "OPTS=a=b")
	assert.NotContains(t, env, "TERM")
	assert.Contains(t, env, "TERM=xterm-256color")
	assert.Contains(t, env, "COLUMNS=120")
	assert.Contains(t, env, "LINES=30")
	assert.Contains(t, env, "PS1=$ ")
	assert.NotContains(t, env, "COLUMNS=80")
	assert.Contains(t, env, "HISTFILE=/dev/null")
}

func TestRecordPTY_RawModeFailureReapsRecorder(t *testing.T) {
	ptmx, tty, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ptmx.Close()
		_ = tty.Close()
	})

	orig := makeRaw
	makeRaw = func(int) (*term.State, error) { return nil, errors.New("not a terminal") }
	t.Cleanup(func() { makeRaw = orig })

	cmd := exec.Command("sleep", "30")
	a := &Asciinema{Resolver: platform.New()}
	err = a.recordPTY(cmd, tty, RecordOptions{Cols: 120, Rows: 30})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw mode")
	assert.NotNil(t, cmd.ProcessState, "recorder process is waited on")
}

const fakeTermsvg = `case "$1" in
--help) echo "termsvg v0.9.1"; echo "Commands:"; echo "  rec     Record a session"; echo "  export  Export a cast" ;;
--version) exit 1 ;;
export)
  shift; cast="$1"; shift
  out=""; minify=no
  while [ $# -gt 0 ]; do
    case "$1" in
      --output) out="$2"; shift ;;
      --minify) minify=yes ;;
    esac
    shift
  done
  echo "<svg minify=\"$minify\"/>" > "$out"
  ;;
esac`

func TestTermsvg_CheckVersionFromHelp(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolTermsvg, fakeTermsvg)

	c := (&Termsvg{Resolver: platform.New(), ConfiguredPath: path, GOOS: "linux"}).Check(context.Background())
	assert.True(t, c.Available)
	assert.Equal(t, "0.9.1", c.Version)
	assert.True(t, c.SupportsRecording)

	c = (&Termsvg{Resolver: platform.New(), ConfiguredPath: path, GOOS: "windows"}).Check(context.Background())
	assert.False(t, c.SupportsRecording)
}

func TestTermsvg_CheckUnavailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	c := (&Termsvg{Resolver: platform.New(), ConfiguredPath: "/nonexistent/termsvg", GOOS: "plan9"}).Check(context.Background())
	assert.False(t, c.Available)
	assert.Equal(t, "go install github.com/mrmarble/termsvg/cmd/termsvg@latest", c.InstallHint)
}

func TestTermsvg_Export(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolTermsvg, fakeTermsvg)
	castPath := filepath.Join(dir, "demo.cast")
	require.NoError(t, os.WriteFile(castPath, []byte("{}\n"), 0600))

	ts := &Termsvg{Resolver: platform.New(), ConfiguredPath: path}
	svg := filepath.Join(dir, "svg", "demo-dark.svg")
	require.NoError(t, ts.Export(context.Background(), castPath, svg, true))
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `minify="yes"`)

	require.NoError(t, ts.Export(context.Background(), castPath, svg, false))
	data, err = os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `minify="no"`)
}

func TestTermsvg_ExportErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTool(t, dir, ToolTermsvg, `echo "boom" >&2; exit 2`)
	castPath := filepath.Join(dir, "demo.cast")
	require.NoError(t, os.WriteFile(castPath, []byte("{}\n"), 0600))

	ts := &Termsvg{Resolver: platform.New(), ConfiguredPath: path}
	err := ts.Export(context.Background(), castPath, filepath.Join(dir, "out.svg"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	err = ts.Export(context.Background(), filepath.Join(dir, "missing.cast"), filepath.Join(dir, "out.svg"), false)
	assert.ErrorContains(t, err, "recording not found")
}

func TestInstallHint(t *testing.T) {
	assert.Equal(t, "brew install termsvg", InstallHint(ToolTermsvg, "darwin"))
	assert.Contains(t, InstallHint(ToolTermsvg, "linux"), "install-termsvg.sh")
	assert.Contains(t, InstallHint(ToolAsciinema, "freebsd"), "docs.asciinema.org")
	assert.Empty(t, InstallHint("unknown", "linux"))
}
