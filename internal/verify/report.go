// Package verify runs the replay validator over a selection of demos and
// reports the outcome as text, JSON or JUnit XML.
package verify

import (
	"time"

	"github.com/deepguide-ai/dg/internal/replay"
)

// ReasonInterrupted marks demos that were not run because the run was
// interrupted.
const ReasonInterrupted = "interrupted"

// Report aggregates the verdicts of one validation run.
type Report struct {
	RunID       string    `json:"run_id"`
	Project     string    `json:"project"`
	StartedAt   time.Time `json:"started_at"`
	Passed      int       `json:"passed"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	Total       int       `json:"total"`
	Interrupted bool      `json:"interrupted,omitempty"`
	Entries     []Entry   `json:"entries"`
}

// Entry is the verdict of a single demo.
type Entry struct {
	Name       string        `json:"name"`
	Title      string        `json:"title"`
	Status     replay.Status `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Command    string        `json:"command,omitempty"`
	ExitCode   *int          `json:"exit_code,omitempty"`
	Output     string        `json:"output,omitempty"`
	DurationMS int64         `json:"duration_ms"`
}

// NewEntry builds an Entry from a verdict.
func NewEntry(name, title string, v replay.Verdict) Entry {
	return Entry{
		Name:       name,
		Title:      title,
		Status:     v.Status,
		Reason:     v.Reason,
		Command:    v.Command,
		ExitCode:   v.ExitCode,
		Output:     v.FilteredOutput,
		DurationMS: v.Duration.Milliseconds(),
	}
}

// Add appends e and updates the counts.
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
	r.Total++
	switch e.Status {
	case replay.StatusPassed:
		r.Passed++
	case replay.StatusSkipped:
		r.Skipped++
	case replay.StatusFailed:
		r.Failed++
	}
}

// OK reports whether nothing failed and the run completed.
func (r *Report) OK() bool {
	return r.Failed == 0 && !r.Interrupted
}

// ExitCode is the process exit status the report implies: 1 when any demo
// failed or the run was interrupted, 0 otherwise.
func (r *Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}
