// Package template renders the markdown dg writes next to a recording.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

var funcs = template.FuncMap{
	"capitalize": Capitalize,
	"trim":       strings.TrimSpace,
}

// Render renders a Go text/template against data.
// Uses missingkey=error to fail on undefined map keys.
func Render(name, tmpl string, data any) (string, error) {
	if tmpl == "" {
		return "", nil
	}

	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// MustParse parses tmpl once at init time; it panics on a malformed template.
func MustParse(name, tmpl string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Option("missingkey=error").Parse(tmpl))
}

// Execute runs a parsed template against data.
func Execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
