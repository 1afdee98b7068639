package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/deepguide-ai/dg/internal/cast"
	"github.com/deepguide-ai/dg/internal/engine"
	"github.com/deepguide-ai/dg/internal/interactive"
	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/project"
)

// ErrDemoExists is returned when a demo of the same name is already stored
// and overwriting was not requested.
var ErrDemoExists = errors.New("demo already exists")

// Recorder records a session into a cast file.
type Recorder interface {
	Record(ctx context.Context, castPath string, opts engine.RecordOptions) error
}

// SessionMetadata describes the demo being captured.
type SessionMetadata struct {
	Title string
	// Name defaults to the slug of Title.
	Name string
	// Command records exactly this command instead of an interactive shell.
	Command   string
	Overwrite bool
}

// Validate checks that the metadata names a demo.
func (m *SessionMetadata) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return errors.New("title must be non-empty")
	}
	if m.Name == "" {
		m.Name = project.Slugify(m.Title)
	}
	if m.Name == "" {
		return fmt.Errorf("title %q does not produce a usable name", m.Title)
	}
	return nil
}

// Session is one capture: record, classify, persist.
type Session struct {
	Metadata SessionMetadata
	Recorder Recorder
	Store    *project.Store
	Cols     int
	Rows     int
	Stdin    io.Reader
	Stdout   io.Writer
	Now      func() time.Time
	Logger   *slog.Logger
}

// Result is the outcome of a capture.
type Result struct {
	Demo     project.DemoRecord
	CastPath string
	// Signal is the interactive-prompt payload that forced manual-only mode.
	Signal string
	// Warning is set when the recorded command looks interactive up front.
	Warning string
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Run records the demo and stores its record. The created timestamp of an
// overwritten demo is preserved.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	log := logging.OrDiscard(s.Logger)
	if err := s.Metadata.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	name := s.Metadata.Name

	cfg, err := s.Store.Load()
	if err != nil {
		return nil, err
	}
	existing, exists := cfg.Find(name)
	if exists && !s.Metadata.Overwrite {
		return nil, fmt.Errorf("%w: %s (use --overwrite to replace it)", ErrDemoExists, name)
	}

	layout := s.Store.Layout(cfg)
	if err := layout.Ensure(); err != nil {
		return nil, err
	}

	result := &Result{CastPath: layout.CastPath(name)}
	if s.Metadata.Command != "" {
		if reason, ok := interactive.CheckCommand(s.Metadata.Command); ok {
			result.Warning = reason
			if alt, ok := interactive.SuggestAlternative(s.Metadata.Command); ok {
				result.Warning += fmt.Sprintf(" (try: %s)", alt)
			}
		}
	}

	tracker := &InputTracker{OnCommand: func(cmd string) { log.Debug("command typed", "command", cmd) }}
	log.Debug("recording", "demo", name, "path", result.CastPath)
	err = s.Recorder.Record(ctx, result.CastPath, engine.RecordOptions{
		Cols:      s.Cols,
		Rows:      s.Rows,
		Overwrite: true,
		Command:   s.Metadata.Command,
		Stdin:     s.Stdin,
		Stdout:    s.Stdout,
		InputTap:  tracker,
	})
	if err != nil {
		return nil, fmt.Errorf("recording failed: %w", err)
	}

	detection, err := interactive.DetectFile(result.CastPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	log.Debug("interactivity check", "interactive", detection.Interactive, "signal", detection.Signal)

	now := s.now()
	demo := project.DemoRecord{
		Name:        name,
		Title:       s.Metadata.Title,
		Created:     now,
		Updated:     now,
		Interactive: detection.Interactive,
	}
	if exists && !existing.Created.IsZero() {
		demo.Created = existing.Created
	}

	if detection.Interactive {
		result.Signal = detection.Payload
		demo.Validation = &project.ValidationSpec{Mode: project.ModeManualOnly}
	} else {
		demo.Validation = &project.ValidationSpec{Mode: project.ModeAuto}
		demo.Command = s.command(tracker, result.CastPath)
	}

	if err := s.Store.Update(func(cfg *project.Config) error {
		cfg.Upsert(demo)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to save demo: %w", err)
	}

	result.Demo = demo
	return result, nil
}

// command picks the demo's replay command: the explicit one, the last typed
// line, or the first one found in the recording.
func (s *Session) command(tracker *InputTracker, castPath string) string {
	if s.Metadata.Command != "" {
		return s.Metadata.Command
	}
	if cmd, ok := tracker.Last(); ok {
		return cmd
	}
	if cmd, ok, err := cast.ExtractCommandFile(castPath); err == nil && ok {
		return cmd
	}
	return ""
}
