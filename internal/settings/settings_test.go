package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, 30*time.Second, s.Replay.Timeout)
	assert.Equal(t, []string{"light", "dark"}, s.Capture.Themes)
}

func TestLoad_File(t *testing.T) {
	path := writeSettings(t, `
repo = "acme/tool"

[engines]
asciinema = "/opt/asciinema"

[capture]
cols = 100
rows = 40
themes = ["dark"]
minify = false

[replay]
deny_env = ["AWS_*"]
standard_filters = true
timeout = "5s"
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme/tool", s.Repo)
	assert.Equal(t, "/opt/asciinema", s.Engines.Asciinema)
	assert.Equal(t, 100, s.Capture.Cols)
	assert.Equal(t, 40, s.Capture.Rows)
	assert.Equal(t, []string{"dark"}, s.Capture.Themes)
	assert.False(t, s.Capture.Minify)
	assert.True(t, s.Capture.Clipboard, "unset keys keep defaults")
	assert.Equal(t, []string{"AWS_*"}, s.Replay.DenyEnv)
	assert.True(t, s.Replay.StandardFilters)
	assert.Equal(t, 5*time.Second, s.Replay.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeSettings(t, "[engines]\ntermsvg = \"/from/file\"\n")
	t.Setenv("DG_TERMSVG_PATH", "/from/env")
	t.Setenv("DG_DENY_ENV", "AWS_*,*_TOKEN")
	t.Setenv("DG_GPL_OFF", "true")
	t.Setenv("DG_COLOR", "0")
	t.Setenv("DG_REPLAY_TIMEOUT", "1m")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", s.Engines.Termsvg)
	assert.Equal(t, []string{"AWS_*", "*_TOKEN"}, s.Replay.DenyEnv)
	assert.True(t, s.GPLOff)
	assert.Equal(t, "0", s.Color)
	assert.Equal(t, time.Minute, s.Replay.Timeout)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeSettings(t, "[capture]\ncolumns = 80\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture.columns")
}

func TestLoad_Malformed(t *testing.T) {
	path := writeSettings(t, "[capture\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"theme":   "[capture]\nthemes = [\"sepia\"]\n",
		"cols":    "[capture]\ncols = 0\n",
		"timeout": "[replay]\ntimeout = \"-1s\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeSettings(t, content))
			assert.Error(t, err)
		})
	}
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvPath, "/custom/dg.toml")
	assert.Equal(t, "/custom/dg.toml", Path())
}
