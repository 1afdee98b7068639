package cmd

import (
	"encoding/json"
	"errors"
	"runtime"
	"testing"

	"github.com/deepguide-ai/dg/internal/picker"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeValidateRoot(t *testing.T) *cobra.Command {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Unix-specific test")
	}
	origPick := pickDemos
	interactiveTerminal = func() bool { return false }
	t.Cleanup(func() {
		interactiveTerminal = isTerminal
		pickDemos = origPick
	})
	return makeRoot(t, newCmd("validate [name...]", runValidate, addValidateFlags))
}

func TestValidate_MixedDemos(t *testing.T) {
	manual := project.DemoRecord{Name: "login", Validation: &project.ValidationSpec{Mode: project.ModeManualOnly}}
	interactive := project.DemoRecord{Name: "editor", Interactive: true}
	dir := setupProject(t, manual, interactive, autoDemo("hello", "echo hello"))

	root := makeValidateRoot(t)
	stdout, stderr, err := execute(t, root, "validate", "-C", dir, "--non-interactive")
	require.NoError(t, err)

	assert.Contains(t, stdout, "○ login: skipped (Manual verification required)")
	assert.Contains(t, stdout, "○ editor: skipped (Interactive recording - requires manual verification)")
	assert.Contains(t, stdout, "✓ hello: passed")
	assert.Contains(t, stdout, "Result: 1 passed, 2 skipped, 0 failed (3 total)")
	assert.Contains(t, stderr, "Validating hello (3/3)...")

	cfg, err := project.NewStore(dir).Load()
	require.NoError(t, err)
	for _, d := range cfg.Casts {
		assert.NotNil(t, d.Validated, "%s should be marked validated", d.Name)
	}
}

func TestValidate_FailureExitsOne(t *testing.T) {
	dir := setupProject(t, autoDemo("ok", "true"), autoDemo("broken", "exit 3"))

	root := makeValidateRoot(t)
	stdout, _, err := execute(t, root, "validate", "-C", dir)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, stdout, "✗ broken: failed (command exited with code 3 (expected 0))")
	assert.Contains(t, stdout, "Failed demos:")

	d, err := project.NewStore(dir).Demo("broken")
	require.NoError(t, err)
	assert.Nil(t, d.Validated, "failed demos are not marked")
}

func TestValidate_NamedSelection(t *testing.T) {
	dir := setupProject(t, autoDemo("a", "true"), autoDemo("b", "exit 1"))

	root := makeValidateRoot(t)
	stdout, _, err := execute(t, root, "validate", "-C", dir, "a")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ a: passed")
	assert.NotContains(t, stdout, "b:")
}

func TestValidate_UnknownName(t *testing.T) {
	dir := setupProject(t, autoDemo("a", "true"))

	root := makeValidateRoot(t)
	_, _, err := execute(t, root, "validate", "-C", dir, "nope")
	assert.ErrorIs(t, err, project.ErrDemoNotFound)
}

func TestValidate_NoConfig(t *testing.T) {
	isolate(t)
	root := makeValidateRoot(t)
	_, _, err := execute(t, root, "validate", "-C", t.TempDir())
	assert.ErrorIs(t, err, project.ErrNoConfig)
}

func TestValidate_NoDemos(t *testing.T) {
	dir := setupProject(t)
	root := makeValidateRoot(t)
	stdout, _, err := execute(t, root, "validate", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No demos found")
}

func TestValidate_JSON(t *testing.T) {
	dir := setupProject(t, autoDemo("hello", "echo hello"))

	root := makeValidateRoot(t)
	stdout, stderr, err := execute(t, root, "validate", "-C", dir, "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Validating")

	var report struct {
		Project string `json:"project"`
		Passed  int    `json:"passed"`
		Entries []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Output string `json:"output"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "demo-project", report.Project)
	assert.Equal(t, 1, report.Passed)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "passed", report.Entries[0].Status)
	assert.Contains(t, report.Entries[0].Output, "hello")
}

func TestValidate_JUnit(t *testing.T) {
	dir := setupProject(t, autoDemo("broken", "exit 2"))

	root := makeValidateRoot(t)
	stdout, _, err := execute(t, root, "validate", "-C", dir, "--format", "junit")
	require.Error(t, err)
	assert.Contains(t, stdout, "<testsuites")
	assert.Contains(t, stdout, `classname="dg.demo-project"`)
	assert.Contains(t, stdout, "ValidationFailure")
}

func TestValidate_InvalidFormat(t *testing.T) {
	root := makeValidateRoot(t)
	_, _, err := execute(t, root, "validate", "--format", "yaml")
	assert.ErrorContains(t, err, `invalid format "yaml"`)
}

func TestValidate_DryRun(t *testing.T) {
	dir := setupProject(t,
		autoDemo("script", "./run.sh --fast"),
		project.DemoRecord{Name: "manual", Validation: &project.ValidationSpec{Mode: project.ModeManualOnly}},
		autoDemo("plain", "ls"),
	)

	root := makeValidateRoot(t)
	stdout, _, err := execute(t, root, "validate", "-C", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "→ script: ./run.sh --fast (as sh ./run.sh --fast, from config)")
	assert.Contains(t, stdout, "○ manual: skip (Manual verification required)")
	assert.Contains(t, stdout, "→ plain: ls (from config)")

	d, err := project.NewStore(dir).Demo("plain")
	require.NoError(t, err)
	assert.Nil(t, d.Validated, "dry run changes nothing")
}

func TestValidate_DryRunRejectsJUnit(t *testing.T) {
	dir := setupProject(t, autoDemo("plain", "ls"))

	root := makeValidateRoot(t)
	stdout, _, err := execute(t, root, "validate", "-C", dir, "--dry-run", "--format", "junit")
	assert.ErrorContains(t, err, "--dry-run supports --format text or json")
	assert.Empty(t, stdout)
}

func TestValidate_Picker(t *testing.T) {
	dir := setupProject(t, autoDemo("a", "true"), autoDemo("b", "exit 1"))

	root := makeValidateRoot(t)
	interactiveTerminal = func() bool { return true }
	var offered []string
	pickDemos = func(_ *cobra.Command, records []project.DemoRecord) ([]string, error) {
		for _, r := range records {
			offered = append(offered, r.Name)
		}
		return []string{"a"}, nil
	}

	stdout, _, err := execute(t, root, "validate", "-C", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, offered)
	assert.Contains(t, stdout, "✓ a: passed")
	assert.NotContains(t, stdout, "b:")
}

func TestValidate_PickerCancelled(t *testing.T) {
	dir := setupProject(t, autoDemo("a", "true"), autoDemo("b", "true"))

	root := makeValidateRoot(t)
	interactiveTerminal = func() bool { return true }
	pickDemos = func(*cobra.Command, []project.DemoRecord) ([]string, error) { return nil, picker.ErrCancelled }

	_, stderr, err := execute(t, root, "validate", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Operation cancelled.")
}

func TestValidate_NonInteractiveSkipsPicker(t *testing.T) {
	dir := setupProject(t, autoDemo("a", "true"), autoDemo("b", "true"))

	root := makeValidateRoot(t)
	interactiveTerminal = func() bool { return true }
	pickDemos = func(*cobra.Command, []project.DemoRecord) ([]string, error) {
		t.Fatal("picker must not run")
		return nil, nil
	}

	stdout, _, err := execute(t, root, "validate", "-C", dir, "--non-interactive")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 passed")
}
