// Package replay re-executes the command behind a recorded demo under a
// fixed environment and turns the outcome into a verdict.
package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/deepguide-ai/dg/internal/cast"
	"github.com/deepguide-ai/dg/internal/filter"
	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/platform"
	"github.com/deepguide-ai/dg/internal/project"
)

// DefaultTimeout bounds a single replay.
const DefaultTimeout = 30 * time.Second

// Skip reasons.
const (
	ReasonManualOnly  = "Manual verification required"
	ReasonInteractive = "Interactive recording - requires manual verification"
	ReasonNoCommand   = "No command to validate"
)

// Status is the outcome of validating one demo.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Verdict is the result of validating one demo. It is never persisted.
type Verdict struct {
	Status         Status        `json:"status"`
	Reason         string        `json:"reason,omitempty"`
	FilteredOutput string        `json:"filteredOutput,omitempty"`
	ExitCode       *int          `json:"exitCode,omitempty"`
	Command        string        `json:"command,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// CommandSource tells where a plan's command came from.
type CommandSource string

const (
	SourceConfig    CommandSource = "config"
	SourceRecording CommandSource = "recording"
)

// Plan is the resolved, not yet executed, replay of a demo.
type Plan struct {
	Name       string        `json:"name"`
	Skip       bool          `json:"skip"`
	Reason     string        `json:"reason,omitempty"`
	Command    string        `json:"command,omitempty"`
	Normalized string        `json:"normalized,omitempty"`
	Source     CommandSource `json:"source,omitempty"`
}

// Validator replays demos one at a time. The zero value is not usable; Shell
// and CastPath must be set.
type Validator struct {
	// Shell runs the command line.
	Shell platform.ShellExecutor
	// Timeout bounds each execution; zero means DefaultTimeout.
	Timeout time.Duration
	// CastPath maps a demo name to its recording file.
	CastPath func(name string) string
	// Dir is the working directory of replayed commands.
	Dir string
	// DenyEnv lists glob patterns of variables withheld from the command.
	DenyEnv []string
	// BaseFilters run before a demo's own patterns.
	BaseFilters []string
	// Environ supplies the inherited environment; nil means os.Environ.
	Environ func() []string
	Logger  *slog.Logger
}

func (v *Validator) logger() *slog.Logger {
	return logging.OrDiscard(v.Logger)
}

func (v *Validator) timeout() time.Duration {
	if v.Timeout <= 0 {
		return DefaultTimeout
	}
	return v.Timeout
}

// Plan resolves what Validate would do for rec without running anything.
func (v *Validator) Plan(rec *project.DemoRecord) Plan {
	p := Plan{Name: rec.Name}

	if rec.Mode() == project.ModeManualOnly {
		p.Skip, p.Reason = true, ReasonManualOnly
		return p
	}
	if rec.Interactive {
		p.Skip, p.Reason = true, ReasonInteractive
		return p
	}

	command, source := v.resolveCommand(rec)
	if command == "" {
		p.Skip, p.Reason = true, ReasonNoCommand
		return p
	}

	p.Command = command
	p.Source = source
	p.Normalized = NormalizeCommand(command)
	return p
}

// resolveCommand prefers the stored command over extraction from the
// recording.
func (v *Validator) resolveCommand(rec *project.DemoRecord) (string, CommandSource) {
	if rec.Command != "" {
		return rec.Command, SourceConfig
	}
	if v.CastPath == nil {
		return "", ""
	}

	castPath := v.CastPath(rec.Name)
	command, ok, err := cast.ExtractCommandFile(castPath)
	if err != nil {
		v.logger().Debug("recording unavailable", "demo", rec.Name, "path", castPath, "error", err)
		return "", ""
	}
	if !ok {
		v.logger().Debug("no command found in recording", "demo", rec.Name, "path", castPath)
		return "", ""
	}
	v.logger().Debug("extracted command", "demo", rec.Name, "command", command)
	return command, SourceRecording
}

// Validate produces exactly one verdict for rec. It makes a single attempt;
// failures are reported in the verdict, never as errors.
func (v *Validator) Validate(ctx context.Context, rec *project.DemoRecord) Verdict {
	plan := v.Plan(rec)
	if plan.Skip {
		return Verdict{Status: StatusSkipped, Reason: plan.Reason}
	}

	expected := rec.ExpectedExitCode()
	engine, err := filter.Compile(append(append([]string{}, v.BaseFilters...), rec.Patterns()...))
	if err != nil {
		return Verdict{Status: StatusFailed, Reason: fmt.Sprintf("invalid filter: %v", err), Command: plan.Normalized}
	}

	start := time.Now()
	res := v.execute(ctx, plan.Normalized)
	verdict := Verdict{Command: plan.Normalized, Duration: time.Since(start)}

	log := v.logger().With("demo", rec.Name, "command", plan.Normalized)

	switch {
	case res.timedOut:
		verdict.Status = StatusFailed
		verdict.Reason = fmt.Sprintf("command timed out after %s (expected exit code %d)", v.timeout(), expected)
		verdict.ExitCode = res.exitCode()
		log.Debug("replay timed out", "timeout", v.timeout())
		return verdict
	case res.cancelled:
		verdict.Status = StatusFailed
		verdict.Reason = "interrupted"
		verdict.ExitCode = res.exitCode()
		return verdict
	case !res.exited:
		verdict.Status = StatusFailed
		verdict.Reason = fmt.Sprintf("failed to run command: %v", res.err)
		log.Debug("replay could not start", "error", res.err)
		return verdict
	}

	code := res.code
	verdict.ExitCode = &code
	if code != expected {
		verdict.Status = StatusFailed
		verdict.Reason = fmt.Sprintf("command exited with code %d (expected %d)", code, expected)
		log.Debug("exit code mismatch", "exit", code, "expected", expected, "stderr", res.stderr)
		return verdict
	}

	output := res.stdout
	if output == "" && expected != 0 {
		output = res.stderr
	}
	verdict.Status = StatusPassed
	verdict.FilteredOutput = engine.Apply(output)
	log.Debug("replay passed", "exit", code, "filters", engine.Len())
	return verdict
}

type execResult struct {
	stdout    string
	stderr    string
	code      int
	exited    bool
	timedOut  bool
	cancelled bool
	err       error
}

func (r execResult) exitCode() *int {
	if !r.exited {
		return nil
	}
	code := r.code
	return &code
}

// execute runs command once under the replay environment and timeout.
func (v *Validator) execute(ctx context.Context, command string) execResult {
	runCtx, cancel := context.WithTimeout(ctx, v.timeout())
	defer cancel()

	environ := v.Environ
	if environ == nil {
		environ = os.Environ
	}
	env, denied := BuildChildEnv(environ(), v.DenyEnv)
	if len(denied) > 0 {
		v.logger().Debug("withheld environment variables", "names", denied)
	}

	cmd := v.Shell.WrapCommand(runCtx, command, env)
	cmd.Dir = v.Dir
	cmd.Stdin = nil
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := execResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
	res.code, res.exited = commandStatus(cmd, err)
	if res.exited && errors.Is(err, exec.ErrWaitDelay) {
		v.logger().Debug("background process kept output open", "command", command)
	}

	if ctxErr := runCtx.Err(); ctxErr != nil && err != nil {
		if ctx.Err() != nil {
			res.cancelled = true
		} else if errors.Is(ctxErr, context.DeadlineExceeded) {
			res.timedOut = true
		}
	}
	return res
}
