// Package scaffold writes the CI workflow that validates demos on every push.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WorkflowPath is the workflow location relative to the project root.
var WorkflowPath = filepath.Join(".github", "workflows", "dg-validate.yml")

// ValidateCommand is the step that runs the demos in CI.
const ValidateCommand = "dg validate --non-interactive"

// Workflow is the subset of a GitHub Actions workflow dg writes and reads.
type Workflow struct {
	Name string         `yaml:"name"`
	On   Triggers       `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Triggers lists the events that start the workflow.
type Triggers struct {
	Push        *BranchFilter `yaml:"push,omitempty"`
	PullRequest *BranchFilter `yaml:"pull_request,omitempty"`
}

// BranchFilter restricts a trigger to branches.
type BranchFilter struct {
	Branches []string `yaml:"branches,flow"`
}

// Job is one workflow job.
type Job struct {
	Name   string `yaml:"name,omitempty"`
	RunsOn string `yaml:"runs-on"`
	Steps  []Step `yaml:"steps"`
}

// Step is one job step.
type Step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

// DefaultWorkflow returns the validation workflow.
func DefaultWorkflow() Workflow {
	return Workflow{
		Name: "DeepGuide",
		On: Triggers{
			Push:        &BranchFilter{Branches: []string{"main", "master", "develop"}},
			PullRequest: &BranchFilter{Branches: []string{"main", "master"}},
		},
		Jobs: map[string]Job{
			"validate": {
				Name:   "Validate Demos",
				RunsOn: "ubuntu-latest",
				Steps: []Step{
					{Uses: "actions/checkout@v4"},
					{Name: "Setup Go", Uses: "actions/setup-go@v5", With: map[string]string{"go-version": "stable"}},
					{Name: "Install dg", Run: "go install github.com/deepguide-ai/dg@latest"},
					{Name: "Install asciinema", Run: "sudo apt-get update\nsudo apt-get install -y asciinema\n"},
					{Name: "Validate demos", Run: ValidateCommand},
				},
			},
		},
	}
}

// Marshal renders w as YAML with two-space indentation.
func Marshal(w Workflow) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode workflow: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWorkflow writes the default workflow under root. An existing file is
// kept unless force is set; the returned bool reports whether a file was
// written.
func WriteWorkflow(root string, force bool) (string, bool, error) {
	path := filepath.Join(root, WorkflowPath)
	if _, err := os.Stat(path); err == nil && !force {
		return path, false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return path, false, fmt.Errorf("failed to check workflow: %w", err)
	}

	data, err := Marshal(DefaultWorkflow())
	if err != nil {
		return path, false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return path, false, fmt.Errorf("failed to create workflow directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return path, false, fmt.Errorf("failed to write workflow: %w", err)
	}
	return path, true, nil
}

// LoadWorkflow parses the workflow at path.
func LoadWorkflow(path string) (*Workflow, error) {
	f, err := os.Open(path) //nolint:gosec // path from caller
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file close

	var w Workflow
	if err := yaml.NewDecoder(f).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to parse workflow: %w", err)
	}
	return &w, nil
}

// RunsValidation reports whether any step of w runs dg validate.
func (w *Workflow) RunsValidation() bool {
	for _, job := range w.Jobs {
		for _, step := range job.Steps {
			if strings.Contains(step.Run, "dg validate") {
				return true
			}
		}
	}
	return false
}
