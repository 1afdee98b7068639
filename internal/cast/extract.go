package cast

import (
	"fmt"
	"iter"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// PromptMarker is the substring that marks a shell prompt in terminal output.
const PromptMarker = "$ "

// bracketedPasteRe matches the bracketed-paste mode toggles (ESC[?2004h / l).
var bracketedPasteRe = regexp.MustCompile(`\x1b\[\?2004[hl]`)

type extractState int

const (
	stateScanning extractState = iota
	stateCollecting
)

// Extractor rebuilds the first command typed after a prompt from the echoed
// output. The zero value is ready to use.
type Extractor struct {
	state extractState
	buf   strings.Builder
}

// Feed advances the extractor by one output payload. It returns the command
// and true once a prompt line has been completed with a non-empty result.
//
// A prompt marker seen while collecting restarts collection; only a line
// break completes it. The completing payload itself is not part of the
// command.
func (x *Extractor) Feed(data string) (string, bool) {
	if strings.Contains(data, PromptMarker) {
		x.state = stateCollecting
		x.buf.Reset()
		return "", false
	}
	if x.state != stateCollecting {
		return "", false
	}
	if !strings.Contains(data, "\n") {
		x.buf.WriteString(data)
		return "", false
	}

	x.state = stateScanning
	command := Normalize(x.buf.String())
	x.buf.Reset()
	if command == "" {
		return "", false
	}
	return command, true
}

// ExtractCommand returns the first complete command found in events. The
// boolean is false when no prompt was followed by a non-empty, terminated
// line.
func ExtractCommand(events iter.Seq[Event]) (string, bool) {
	var x Extractor
	for ev := range events {
		if command, ok := x.Feed(ev.Data); ok {
			return command, true
		}
	}
	return "", false
}

// ExtractCommandFile opens the recording at path and extracts its command.
func ExtractCommandFile(path string) (string, bool, error) {
	f, err := os.Open(path) //nolint:gosec // recording path is derived from the project layout
	if err != nil {
		return "", false, fmt.Errorf("failed to open recording: %w", err)
	}
	defer func() { _ = f.Close() }()

	command, ok := ExtractCommand(Events(f))
	return command, ok, nil
}

// Normalize replays backspaces, drops escape sequences and the trailing line
// terminator, and trims surrounding whitespace from a collected command.
func Normalize(buf string) string {
	chars := []rune(buf)
	out := make([]rune, 0, len(chars))

	for i := 0; i < len(chars); i++ {
		switch chars[i] {
		case '\b':
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case '\x1b':
			// skip through the first letter, which terminates the sequence
			for i < len(chars) && !isASCIILetter(chars[i]) {
				i++
			}
		default:
			out = append(out, chars[i])
		}
	}

	s := bracketedPasteRe.ReplaceAllString(string(out), "")
	if strings.HasSuffix(s, "\r\n") {
		s = strings.TrimSuffix(s, "\r\n")
	} else {
		s = strings.TrimSuffix(s, "\n")
	}
	return strings.TrimSpace(s)
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}
