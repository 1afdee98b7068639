// Package filter redacts known sources of incidental variance (timestamps,
// ids, paths, color codes) from captured command output.
package filter

import (
	"fmt"
	"regexp"
)

// Redaction replaces every match of a filter pattern.
const Redaction = "[FILTERED]"

// Engine applies an ordered list of compiled patterns.
type Engine struct {
	rules []*regexp.Regexp
}

// Compile builds an Engine from patterns, keeping their order. It fails on the
// first pattern that is not a valid regular expression.
func Compile(patterns []string) (*Engine, error) {
	rules := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d %q: %w", i, p, err)
		}
		rules = append(rules, re)
	}
	return &Engine{rules: rules}, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(patterns []string) *Engine {
	e, err := Compile(patterns)
	if err != nil {
		panic(err)
	}
	return e
}

// Apply replaces all matches of each rule in turn. Later rules see the output
// of earlier ones.
func (e *Engine) Apply(text string) string {
	if e == nil {
		return text
	}
	for _, re := range e.rules {
		text = re.ReplaceAllLiteralString(text, Redaction)
	}
	return text
}

// Len returns the number of rules.
func (e *Engine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// Apply compiles patterns and applies them to text.
func Apply(text string, patterns []string) (string, error) {
	e, err := Compile(patterns)
	if err != nil {
		return "", err
	}
	return e.Apply(text), nil
}

// Validate reports the first pattern that does not compile.
func Validate(patterns []string) error {
	_, err := Compile(patterns)
	return err
}
