// Package interactive classifies recordings and planned commands that cannot
// be replayed without a human at the keyboard.
package interactive

import (
	"fmt"
	"iter"
	"os"
	"regexp"

	"github.com/deepguide-ai/dg/internal/cast"
)

// outputSignals are checked in order against every output payload. The list
// is deliberately broad: a false positive only costs a skipped replay.
var outputSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)password:`),
	regexp.MustCompile(`(?i)enter passphrase`),
	regexp.MustCompile(`(?i)\(y/n\)`),
	regexp.MustCompile(`(?i)press any key`),
	regexp.MustCompile(`vim|nano|emacs|code`),
	regexp.MustCompile(`\[sudo\]`),
	regexp.MustCompile(`(?i)select an option`),
	regexp.MustCompile(`(?i)enter your`),
	regexp.MustCompile(`(?i)awaiting input`),
	regexp.MustCompile(`(?i)choose from`),
	regexp.MustCompile(`(?i)continue\?`),
	regexp.MustCompile(`(?i)are you sure`),
}

// Result is the outcome of scanning a recording.
type Result struct {
	Interactive bool
	// Signal is the pattern that latched the result, empty when not interactive.
	Signal string
	// Payload is the output chunk that matched.
	Payload string
}

// step folds one payload into the result. Once latched it never changes.
func (r Result) step(payload string) Result {
	if r.Interactive {
		return r
	}
	for _, re := range outputSignals {
		if re.MatchString(payload) {
			return Result{Interactive: true, Signal: re.String(), Payload: payload}
		}
	}
	return r
}

// Detect scans output events and reports whether any of them shows a sign of
// required user input. Scanning stops at the first match.
func Detect(events iter.Seq[cast.Event]) Result {
	var r Result
	for ev := range events {
		if r = r.step(ev.Data); r.Interactive {
			break
		}
	}
	return r
}

// DetectFile runs Detect over the recording at path.
func DetectFile(path string) (Result, error) {
	f, err := os.Open(path) //nolint:gosec // recording path is derived from the project layout
	if err != nil {
		return Result{}, fmt.Errorf("failed to open recording: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Detect(cast.Events(f)), nil
}
