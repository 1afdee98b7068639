//go:build !windows

package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// killGrace is how long a cancelled process group has between SIGTERM and
// SIGKILL.
const killGrace = 100 * time.Millisecond

// unixPlatform implements Platform for Unix-like systems (Linux, macOS, FreeBSD, etc.).
type unixPlatform struct{}

// New returns the Platform for the current OS.
func New() Platform {
	return &unixPlatform{}
}

// Name returns "unix".
func (u *unixPlatform) Name() string {
	return "unix"
}

// WrapCommand returns an exec.Cmd running command under sh -c in its own
// process group. Cancelling ctx signals the whole group, so children spawned
// by the shell die with it.
func (u *unixPlatform) WrapCommand(ctx context.Context, command string, env []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // user command is intentionally executed
	if len(env) > 0 {
		cmd.Env = env
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		pgid := cmd.Process.Pid
		if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
			return cmd.Process.Kill()
		}
		time.AfterFunc(killGrace, func() {
			_ = syscall.Kill(-pgid, syscall.SIGKILL) // ESRCH if group already gone
		})
		return nil
	}
	cmd.WaitDelay = time.Second
	return cmd
}

// Resolve locates command in preferDirs, then PATH, then common Unix paths.
func (u *unixPlatform) Resolve(command string, preferDirs ...string) (string, error) {
	if command == "" {
		return "", fmt.Errorf("command must be non-empty")
	}
	if filepath.IsAbs(command) {
		if isExecutable(command) {
			return command, nil
		}
		return "", fmt.Errorf("command not found: %s", command)
	}

	for _, dir := range preferDirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, command)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if resolved, err := exec.LookPath(command); err == nil {
		return resolved, nil
	}

	commonPaths := []string{
		"/usr/bin/" + command,
		"/usr/local/bin/" + command,
		"/opt/homebrew/bin/" + command,
		"/bin/" + command,
	}
	for _, path := range commonPaths {
		if isExecutable(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("command not found: %s", command)
}

// ExecutableName returns the command name without extension.
func (u *unixPlatform) ExecutableName(command string) string {
	return command
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}
