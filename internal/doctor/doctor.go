// Package doctor diagnoses the environment dg runs in: recording and export
// engines, project storage, platform and terminal.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/deepguide-ai/dg/internal/engine"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/deepguide-ai/dg/internal/replay"
	"github.com/deepguide-ai/dg/internal/scaffold"
	"github.com/dustin/go-humanize"
)

// Status is the severity of one diagnostic.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Asset size thresholds for the image directory.
const (
	growingAssets = 20 << 20
	largeAssets   = 50 << 20
)

// Result is one diagnostic line.
type Result struct {
	Category string `json:"category"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	Details  string `json:"details,omitempty"`
}

// Report is the full diagnosis.
type Report struct {
	Results []Result `json:"results"`
}

// HasErrors reports whether any check failed.
func (r Report) HasErrors() bool {
	return r.has(StatusError)
}

// HasWarnings reports whether any check warned.
func (r Report) HasWarnings() bool {
	return r.has(StatusWarning)
}

func (r Report) has(s Status) bool {
	for _, res := range r.Results {
		if res.Status == s {
			return true
		}
	}
	return false
}

// Checker probes an external tool.
type Checker interface {
	Check(ctx context.Context) engine.Capability
}

// Doctor runs the diagnostics.
type Doctor struct {
	Recorder Checker
	Exporter Checker
	Store    *project.Store
	GPLOff   bool
	GOOS     string
	GOARCH   string
	// TermSize returns the terminal dimensions; nil skips the check.
	TermSize func() (cols, rows int, err error)
}

// Run executes every check in display order.
func (d *Doctor) Run(ctx context.Context) Report {
	return Report{Results: []Result{
		d.checkRecorder(ctx),
		d.checkExporter(ctx),
		d.checkStorage(),
		d.checkWorkflow(),
		d.checkPlatform(),
		d.checkTerminal(),
	}}
}

func (d *Doctor) checkRecorder(ctx context.Context) Result {
	r := Result{Category: "Asciinema"}
	c := d.Recorder.Check(ctx)
	switch {
	case c.Available:
		r.Status = StatusOK
		r.Message = fmt.Sprintf("%s (%s)", c.Version, c.Source)
		r.Details = "Terminal recording enabled - " + c.Path
	case d.GPLOff:
		r.Status = StatusWarning
		r.Message = "GPL mode disabled"
		r.Details = "Install asciinema manually or unset DG_GPL_OFF"
	default:
		r.Status = StatusError
		r.Message = "asciinema not available"
		r.Details = c.InstallHint
	}
	return r
}

func (d *Doctor) checkExporter(ctx context.Context) Result {
	r := Result{Category: "Termsvg"}
	c := d.Exporter.Check(ctx)
	if !c.Available {
		r.Status = StatusWarning
		r.Message = "termsvg not available"
		r.Details = c.InstallHint
		return r
	}
	mode := "export only"
	if c.SupportsRecording {
		mode = "recording + export"
	}
	r.Status = StatusOK
	r.Message = fmt.Sprintf("termsvg %s (%s)", c.Version, mode)
	r.Details = "SVG generation enabled - " + c.Path
	return r
}

func (d *Doctor) checkStorage() Result {
	r := Result{Category: "Storage"}
	if !d.Store.Exists() {
		r.Status = StatusWarning
		r.Message = "dg not initialized"
		r.Details = "Run `dg init` to set up the project"
		return r
	}

	cfg, err := d.Store.Load()
	if err != nil {
		r.Status = StatusError
		r.Message = "Invalid configuration"
		r.Details = err.Error()
		return r
	}

	layout := d.Store.Layout(cfg)
	if _, err := os.Stat(layout.Base); err != nil {
		r.Status = StatusError
		r.Message = "Output directory missing"
		r.Details = "Expected: " + layout.Base
		return r
	}

	size, err := DirSize(layout.SVG)
	if err != nil {
		r.Status = StatusWarning
		r.Message = "Storage check failed"
		r.Details = err.Error()
		return r
	}

	switch {
	case size > largeAssets:
		r.Status = StatusWarning
		r.Message = fmt.Sprintf("Large asset directory (%s)", humanize.IBytes(uint64(size)))
		r.Details = "Consider Git LFS for assets over 50 MiB"
	case size > growingAssets:
		r.Status = StatusWarning
		r.Message = fmt.Sprintf("Growing asset directory (%s)", humanize.IBytes(uint64(size)))
		r.Details = "Monitor size, consider minified exports"
	default:
		r.Status = StatusOK
		r.Message = "Storage configured correctly"
		r.Details = fmt.Sprintf("Output: %s, Demos: %d, Images: %s", cfg.OutputDir, len(cfg.Casts), humanize.IBytes(uint64(size)))
	}
	return r
}

func (d *Doctor) checkWorkflow() Result {
	r := Result{Category: "Workflow"}
	path := filepath.Join(d.Store.Root, scaffold.WorkflowPath)
	w, err := scaffold.LoadWorkflow(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.Status = StatusWarning
		r.Message = "No CI workflow"
		r.Details = "Run `dg init` to create " + scaffold.WorkflowPath
	case err != nil:
		r.Status = StatusWarning
		r.Message = "CI workflow unreadable"
		r.Details = err.Error()
	case !w.RunsValidation():
		r.Status = StatusWarning
		r.Message = "CI workflow does not run dg validate"
		r.Details = "Add a step running `" + scaffold.ValidateCommand + "`"
	default:
		r.Status = StatusOK
		r.Message = "CI workflow validates demos"
		r.Details = path
	}
	return r
}

func (d *Doctor) checkPlatform() Result {
	goos, goarch := d.GOOS, d.GOARCH
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}

	r := Result{Category: "Platform"}
	supported := (goos == "linux" || goos == "darwin") && (goarch == "amd64" || goarch == "arm64")
	if supported {
		r.Status = StatusOK
		r.Message = fmt.Sprintf("%s-%s (supported)", goos, goarch)
		r.Details = "Recording and validation available"
		return r
	}
	r.Status = StatusWarning
	r.Message = fmt.Sprintf("%s-%s (experimental)", goos, goarch)
	if goos == "windows" {
		r.Details = "Recording requires WSL; validation runs through PowerShell"
	} else {
		r.Details = "Tools must be installed on PATH"
	}
	return r
}

func (d *Doctor) checkTerminal() Result {
	r := Result{Category: "Terminal"}
	if d.TermSize == nil {
		r.Status = StatusOK
		r.Message = "Not checked"
		return r
	}
	cols, rows, err := d.TermSize()
	if err != nil {
		r.Status = StatusWarning
		r.Message = "Not a terminal"
		r.Details = "Recordings need an interactive terminal"
		return r
	}
	r.Message = fmt.Sprintf("%dx%d", cols, rows)
	if cols < replay.StandardColumns || rows < replay.StandardRows {
		r.Status = StatusWarning
		r.Details = fmt.Sprintf("Resize to at least %dx%d so recordings are not clipped", replay.StandardColumns, replay.StandardRows)
		return r
	}
	r.Status = StatusOK
	return r
}

// DirSize sums the sizes of regular files under dir. A missing dir is empty.
func DirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure %s: %w", dir, err)
	}
	return total, nil
}
