//go:build windows

package platform

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowsPlatform_Name(t *testing.T) {
	p := New()
	assert.Equal(t, "windows", p.Name())
}

func TestWindowsPlatform_WrapCommand(t *testing.T) {
	p := New()
	cmd := p.WrapCommand(context.Background(), "Write-Output hi", nil)

	assert.Contains(t, cmd.Args, "-NoProfile")
	assert.Contains(t, cmd.Args, "-Command")
	assert.Equal(t, "Write-Output hi", cmd.Args[len(cmd.Args)-1])
}

func TestWindowsPlatform_ExecutableName(t *testing.T) {
	p := New()
	assert.Equal(t, "termsvg.exe", p.ExecutableName("termsvg"))
	assert.Equal(t, "termsvg.exe", p.ExecutableName("termsvg.exe"))
}

func TestWindowsPlatform_Resolve_PreferDir(t *testing.T) {
	p := New()
	dir := t.TempDir()
	bin := filepath.Join(dir, "tool.exe")
	require.NoError(t, os.WriteFile(bin, []byte("MZ"), 0644))

	resolved, err := p.Resolve("tool", dir)
	require.NoError(t, err)
	assert.Equal(t, bin, resolved)
}

func TestWindowsPlatform_Resolve_NotFound(t *testing.T) {
	p := New()
	_, err := p.Resolve("nonexistent-command-xyz-12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command not found")
}
