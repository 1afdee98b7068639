package filter

import (
	"regexp"
	"strings"
)

const (
	isoTimestampPattern = `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{3})?Z?`
	uuidPattern         = `[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`
	ansiSGRPattern      = `\x1b\[[0-9;]*m`
)

var standardPatterns = []string{
	// timestamps
	isoTimestampPattern,
	`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`,

	// ids
	`[a-f0-9]{32}`,
	uuidPattern,
	`Session ID: [a-f0-9]+`,

	// color codes
	ansiSGRPattern,
	`\033\[[0-9;]*m`,

	// home directories
	`/Users/[^/\s]+`,
	`/home/[^/\s]+`,
	`C:\\Users\\[^\\\s]+`,

	// process ids
	`PID: \d+`,
	`Process \d+`,

	// temporary files
	`/tmp/[a-zA-Z0-9_-]+`,
	`\.tmp[a-zA-Z0-9_-]*`,
}

// StandardPatterns returns a copy of the built-in pattern set.
func StandardPatterns() []string {
	out := make([]string, len(standardPatterns))
	copy(out, standardPatterns)
	return out
}

// Standard returns an Engine over the built-in pattern set.
func Standard() *Engine {
	return MustCompile(standardPatterns)
}

var uuidRe = regexp.MustCompile(uuidPattern)

// Suggest inspects output and returns patterns worth adding to a demo's
// filter list.
func Suggest(output string) []string {
	var suggestions []string

	if strings.Contains(output, "Created at") || strings.Contains(output, "Generated at") {
		suggestions = append(suggestions, `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)
	}
	if strings.Contains(output, "/Users/") || strings.Contains(output, "/home/") {
		suggestions = append(suggestions, `/Users/[^/\s]+`, `/home/[^/\s]+`)
	}
	if uuidRe.MatchString(output) {
		suggestions = append(suggestions, uuidPattern)
	}
	if strings.Contains(output, "\x1b[") || strings.Contains(output, `\033[`) {
		suggestions = append(suggestions, ansiSGRPattern)
	}

	return suggestions
}
