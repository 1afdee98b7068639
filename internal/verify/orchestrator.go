package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/deepguide-ai/dg/internal/replay"
	"github.com/google/uuid"
)

// Validator produces a verdict for one demo. *replay.Validator implements it.
type Validator interface {
	Validate(ctx context.Context, rec *project.DemoRecord) replay.Verdict
}

// Marker records a successful validation. *project.Store implements it.
type Marker interface {
	MarkValidated(name string, at time.Time) error
}

// Orchestrator validates demos sequentially, in selection order.
type Orchestrator struct {
	Validator Validator
	Store     Marker
	// Now defaults to time.Now.
	Now func() time.Time
	// Progress is called before each demo runs.
	Progress func(index, total int, rec *project.DemoRecord)
	// Done is called after each verdict.
	Done   func(rec *project.DemoRecord, entry Entry)
	Logger *slog.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now().UTC()
}

// Run validates records one at a time and returns the aggregated report.
// Passed and skipped demos get their validated timestamp updated; a failure
// to persist it is logged and does not change the verdict. When ctx is
// cancelled the remaining demos are reported as skipped and the report is
// marked interrupted.
func (o *Orchestrator) Run(ctx context.Context, projectName string, records []project.DemoRecord) *Report {
	log := logging.OrDiscard(o.Logger)
	report := &Report{
		RunID:     uuid.NewString(),
		Project:   projectName,
		StartedAt: o.now(),
		Entries:   []Entry{},
	}

	for i := range records {
		rec := &records[i]

		if ctx.Err() != nil {
			report.Interrupted = true
			entry := Entry{Name: rec.Name, Title: rec.DisplayName(), Status: replay.StatusSkipped, Reason: ReasonInterrupted}
			report.Add(entry)
			o.done(rec, entry)
			continue
		}

		if o.Progress != nil {
			o.Progress(i, len(records), rec)
		}

		verdict := o.Validator.Validate(ctx, rec)
		entry := NewEntry(rec.Name, rec.DisplayName(), verdict)
		report.Add(entry)
		log.Debug("validated demo", "run_id", report.RunID, "demo", rec.Name, "status", verdict.Status, "reason", verdict.Reason)

		if ctx.Err() != nil {
			report.Interrupted = true
		}

		if verdict.Status != replay.StatusFailed && o.Store != nil {
			if err := o.Store.MarkValidated(rec.Name, o.now()); err != nil {
				log.Warn("failed to record validation time", "demo", rec.Name, "error", err)
			}
		}
		o.done(rec, entry)
	}

	return report
}

func (o *Orchestrator) done(rec *project.DemoRecord, entry Entry) {
	if o.Done != nil {
		o.Done(rec, entry)
	}
}

// Select returns the demos to validate: the named ones in the order given
// (duplicates ignored), or every demo when names is empty. An unknown name is
// an error wrapping project.ErrDemoNotFound.
func Select(cfg *project.Config, names []string) ([]project.DemoRecord, error) {
	if len(names) == 0 {
		return append([]project.DemoRecord(nil), cfg.Casts...), nil
	}

	seen := make(map[string]bool, len(names))
	selected := make([]project.DemoRecord, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		d, ok := cfg.Find(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", project.ErrDemoNotFound, name)
		}
		selected = append(selected, *d)
	}
	return selected, nil
}
