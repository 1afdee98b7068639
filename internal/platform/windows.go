//go:build windows

package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// windowsPlatform implements Platform for Windows systems.
type windowsPlatform struct{}

// New returns the Platform for the current OS.
func New() Platform {
	return &windowsPlatform{}
}

// Name returns "windows".
func (w *windowsPlatform) Name() string {
	return "windows"
}

// WrapCommand returns an exec.Cmd running command under
// powershell -NoProfile -Command. Cancelling ctx kills the shell process.
func (w *windowsPlatform) WrapCommand(ctx context.Context, command string, env []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-ExecutionPolicy", "Bypass", "-Command", command) //nolint:gosec // user command is intentionally executed
	if len(env) > 0 {
		cmd.Env = env
	}
	cmd.WaitDelay = time.Second
	return cmd
}

// Resolve locates command in preferDirs and then on PATH, honoring PATHEXT.
func (w *windowsPlatform) Resolve(command string, preferDirs ...string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("command must be non-empty")
	}

	for _, dir := range preferDirs {
		if dir == "" {
			continue
		}
		for _, name := range []string{w.ExecutableName(command), command} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}

	resolved, err := exec.LookPath(command)
	if err == nil {
		return resolved, nil
	}

	return "", fmt.Errorf("command not found: %s", command)
}

// ExecutableName returns the command name with an .exe extension.
func (w *windowsPlatform) ExecutableName(command string) string {
	if strings.HasSuffix(strings.ToLower(command), ".exe") {
		return command
	}
	return command + ".exe"
}
