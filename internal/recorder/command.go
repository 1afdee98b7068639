// Package recorder runs a capture session: it records a demo through the
// recording engine and turns the result into a stored demo record.
package recorder

import (
	"strings"
	"sync"
)

// InputTracker reconstructs the command lines typed during a recording from
// raw terminal input. It is safe to write from one goroutine while another
// reads.
type InputTracker struct {
	mu       sync.Mutex
	line     []rune
	commands []string
	esc      escState
	// OnCommand, if set, is called with every committed command.
	OnCommand func(string)
}

type escState int

const (
	escNone escState = iota
	escStart
	escCSI
)

// ignoredCommands never count as the demo's command.
var ignoredCommands = map[string]bool{
	"exit":   true,
	"logout": true,
}

// Write feeds raw input bytes. It never fails.
func (t *InputTracker) Write(p []byte) (int, error) {
	t.mu.Lock()
	var committed []string
	for _, r := range string(p) {
		if cmd, ok := t.feed(r); ok {
			committed = append(committed, cmd)
		}
	}
	t.mu.Unlock()

	if t.OnCommand != nil {
		for _, cmd := range committed {
			t.OnCommand(cmd)
		}
	}
	return len(p), nil
}

// feed consumes one rune and reports a committed command line.
func (t *InputTracker) feed(r rune) (string, bool) {
	switch t.esc {
	case escStart:
		if r == '[' || r == 'O' {
			t.esc = escCSI
		} else {
			t.esc = escNone
		}
		return "", false
	case escCSI:
		// parameters and intermediates run until a final byte in @..~
		if r >= 0x40 && r <= 0x7e {
			t.esc = escNone
		}
		return "", false
	}

	switch {
	case r == 0x1b:
		t.esc = escStart
	case r == '\r' || r == '\n':
		cmd := strings.TrimSpace(string(t.line))
		t.line = t.line[:0]
		if cmd == "" {
			return "", false
		}
		t.commands = append(t.commands, cmd)
		return cmd, true
	case r == 0x7f || r == '\b':
		if len(t.line) > 0 {
			t.line = t.line[:len(t.line)-1]
		}
	case r == 0x03 || r == 0x15:
		// Ctrl-C and Ctrl-U discard the line
		t.line = t.line[:0]
	case r < 0x20:
	default:
		t.line = append(t.line, r)
	}
	return "", false
}

// Commands returns every committed command in order.
func (t *InputTracker) Commands() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.commands...)
}

// Last returns the most recent committed command that is not a shell exit.
func (t *InputTracker) Last() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.commands) - 1; i >= 0; i-- {
		if !ignoredCommands[t.commands[i]] {
			return t.commands[i], true
		}
	}
	return "", false
}
