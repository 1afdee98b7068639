// Package testutil provides test helpers for the platform package.
package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/deepguide-ai/dg/internal/platform"
)

// FakePlatform is a configurable test double implementing platform.Platform.
// Test authors set the function fields to control behavior per test case.
type FakePlatform struct {
	// NameValue is returned by Name(). Default: "fake".
	NameValue string

	// WrapCommandFunc overrides WrapCommand. If nil, runs command through sh -c.
	WrapCommandFunc func(ctx context.Context, command string, env []string) *exec.Cmd

	// ResolveFunc overrides Resolve. If nil, returns "/fake/bin/<command>".
	ResolveFunc func(command string, preferDirs ...string) (string, error)

	// Calls tracks method invocations for assertion.
	Calls []Call
}

// Call records a single method invocation on FakePlatform.
type Call struct {
	Method string
	Args   []string
}

// NewFakePlatform returns a FakePlatform with sensible defaults.
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{NameValue: "fake"}
}

// Name returns the configured platform name.
func (f *FakePlatform) Name() string {
	return f.NameValue
}

// WrapCommand returns an exec.Cmd or delegates to WrapCommandFunc.
func (f *FakePlatform) WrapCommand(ctx context.Context, command string, env []string) *exec.Cmd {
	f.Calls = append(f.Calls, Call{Method: "WrapCommand", Args: []string{command}})
	if f.WrapCommandFunc != nil {
		return f.WrapCommandFunc(ctx, command, env)
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // test helper
	if len(env) > 0 {
		cmd.Env = env
	}
	return cmd
}

// Resolve returns a fake binary path or delegates to ResolveFunc.
func (f *FakePlatform) Resolve(command string, preferDirs ...string) (string, error) {
	f.Calls = append(f.Calls, Call{Method: "Resolve", Args: append([]string{command}, preferDirs...)})
	if f.ResolveFunc != nil {
		return f.ResolveFunc(command, preferDirs...)
	}
	if command == "" {
		return "", fmt.Errorf("command must be non-empty")
	}
	return filepath.Join("/fake/bin", command), nil
}

// ExecutableName returns command unchanged.
func (f *FakePlatform) ExecutableName(command string) string {
	return command
}

// CallCount returns the number of times a method was called.
func (f *FakePlatform) CallCount(method string) int {
	count := 0
	for _, c := range f.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// CalledWith returns true if the method was called with the given args (substring match).
func (f *FakePlatform) CalledWith(method string, args ...string) bool {
	for _, c := range f.Calls {
		if c.Method != method || len(args) > len(c.Args) {
			continue
		}
		match := true
		for i, a := range args {
			if !strings.Contains(c.Args[i], a) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

var _ platform.Platform = (*FakePlatform)(nil)
