// Package cast decodes asciinema-style terminal recordings and reconstructs
// the command line typed in them.
package cast

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
)

// Channel identifies the stream an event was captured from.
type Channel string

const (
	// ChannelOutput is terminal output (code "o").
	ChannelOutput Channel = "o"
	// ChannelInput is keyboard input (code "i").
	ChannelInput Channel = "i"
)

// Event is a single timestamped chunk of a recording.
type Event struct {
	Time    float64
	Channel Channel
	Data    string
}

// ParseLine decodes one recording line of the form [time, channel, payload].
// Extra positional fields are ignored. The second return value is false for
// headers, blank lines and anything that is not a well-formed event.
func ParseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] != '[' {
		return Event{}, false
	}

	var fields []json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return Event{}, false
	}
	if len(fields) < 3 {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal(fields[0], &ev.Time); err != nil {
		return Event{}, false
	}
	var channel string
	if err := json.Unmarshal(fields[1], &channel); err != nil {
		return Event{}, false
	}
	if err := json.Unmarshal(fields[2], &ev.Data); err != nil {
		return Event{}, false
	}
	ev.Channel = Channel(channel)
	return ev, true
}

// Events returns the output events of the recording read from r, in file
// order. The sequence reads r lazily and can only be ranged over once;
// malformed lines and read errors end or skip silently.
func Events(r io.Reader) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				if ev, ok := ParseLine(line); ok && ev.Channel == ChannelOutput {
					if !yield(ev) {
						return
					}
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// FromSlice adapts already-decoded events to the sequence form, keeping only
// output events.
func FromSlice(events []Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, ev := range events {
			if ev.Channel != ChannelOutput {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// OutputFile returns the concatenated output of the recording at path.
func OutputFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // recording path from caller
	if err != nil {
		return "", fmt.Errorf("failed to open recording: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for ev := range Events(f) {
		sb.WriteString(ev.Data)
	}
	return sb.String(), nil
}
