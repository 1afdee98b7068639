// Package platform defines the OS abstraction layer for dg.
// Shell execution and binary resolution differ between Unix and Windows and
// are selected at compile time via build tags.
package platform

import (
	"context"
	"os/exec"
)

// ShellExecutor runs a command line through the native shell.
type ShellExecutor interface {
	// WrapCommand returns an exec.Cmd that runs command through the native
	// shell (sh -c on Unix, powershell -NoProfile -Command on Windows). When
	// ctx is cancelled the whole process tree is terminated.
	WrapCommand(ctx context.Context, command string, env []string) *exec.Cmd
}

// CommandResolver locates binaries.
type CommandResolver interface {
	// Resolve returns the absolute path of command, looking in preferDirs
	// first and then on PATH.
	Resolve(command string, preferDirs ...string) (string, error)

	// ExecutableName returns the platform file name of a binary
	// (e.g. "asciinema" on Unix, "asciinema.exe" on Windows).
	ExecutableName(command string) string
}

// Platform groups the OS-specific strategies. Obtained via New().
type Platform interface {
	ShellExecutor
	CommandResolver

	// Name returns a human-readable platform identifier ("unix" or "windows").
	Name() string
}
