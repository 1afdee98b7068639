// Package envfilter removes deny-listed variables from the environment a
// replayed command inherits. Names are matched with path.Match globs; the
// variables replay forces and the ones a shell needs to start are exempt.
package envfilter

import (
	"path"
	"strings"
)

// exemptNames are never denied, whatever the patterns say.
var exemptNames = []string{
	"PATH",
	"HOME",
	"COLUMNS",
	"LINES",
	"TERM",
	"CI",
	"NONINTERACTIVE",
}

// IsDenied returns true if name matches any of the deny-list glob patterns.
// Invalid patterns are skipped (fail-open). An exempt variable (see IsExempt)
// is never denied.
func IsDenied(name string, patterns []string) bool {
	if IsExempt(name) {
		return false
	}
	for _, pattern := range patterns {
		matched, err := path.Match(pattern, name)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// IsExempt returns true if name must survive filtering so that replay keeps
// working with a deny pattern like "*".
func IsExempt(name string) bool {
	for _, exempt := range exemptNames {
		if strings.EqualFold(name, exempt) {
			return true
		}
	}
	return false
}

// Filter returns env without the KEY=VALUE entries whose key is denied, and
// the names that were dropped. Entries without '=' are kept.
func Filter(env []string, patterns []string) (kept []string, denied []string) {
	if len(patterns) == 0 {
		return env, nil
	}
	kept = make([]string, 0, len(env))
	for _, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if ok && IsDenied(key, patterns) {
			denied = append(denied, key)
			continue
		}
		kept = append(kept, kv)
	}
	return kept, denied
}
