package replay

import (
	"path"
	"strings"
)

// interpreters maps script extensions to the program that runs them when the
// script is invoked by relative path.
var interpreters = map[string]string{
	".js":  "node",
	".mjs": "node",
	".cjs": "node",
	".py":  "python3",
	".rb":  "ruby",
	".sh":  "sh",
	".pl":  "perl",
}

// NormalizeCommand prefixes a relative script invocation such as
// "./cli.js --help" with its interpreter so it runs without relying on the
// shebang line or the executable bit. Anything else is returned unchanged.
func NormalizeCommand(command string) string {
	trimmed := strings.TrimSpace(command)
	first, _, _ := strings.Cut(trimmed, " ")
	if !strings.HasPrefix(first, "./") && !strings.HasPrefix(first, "../") {
		return command
	}
	interp, ok := interpreters[strings.ToLower(path.Ext(first))]
	if !ok {
		return command
	}
	return interp + " " + trimmed
}
