// Package assets turns a recording into the images and markdown that get
// embedded in documentation.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/deepguide-ai/dg/internal/logging"
	"github.com/deepguide-ai/dg/internal/project"
	"github.com/deepguide-ai/dg/internal/template"
)

// Themes are the image variants generated for every demo.
var Themes = []string{"light", "dark"}

// Exporter renders a recording into an SVG image.
type Exporter interface {
	Export(ctx context.Context, castPath, svgPath string, minify bool) error
}

// SVGResult is the outcome of one image export. Path is empty when the
// export failed; Markdown is always usable.
type SVGResult struct {
	Theme    string
	Path     string
	Markdown string
	Warning  string
}

// Generator produces images and snippets inside a project layout.
type Generator struct {
	Exporter Exporter
	Layout   project.Layout
	// Root is the project root; markdown links are relative to it.
	Root   string
	Minify bool
	// Repo is "owner/name" for the status badge; empty omits the badge.
	Repo   string
	Logger *slog.Logger
}

var (
	svgMarkdown = template.MustParse("svg", `## {{ capitalize .Name }} Demo

![CLI Demo](/{{ .SVG }})

[View recording]({{ .Cast }})
`)
	castOnlyMarkdown = template.MustParse("cast-only", `## {{ capitalize .Name }} Demo

[View recording]({{ .Cast }})

*Note: SVG preview unavailable*
`)
	snippetMarkdown = template.MustParse("snippet", `## {{ .Title }}

<!--Remove one image if your site handles dark-mode automatically-->
{{- range .Images }}
![{{ $.Title }} - {{ .Theme }}](/{{ .Path }}#gh-{{ .Theme }}-mode-only)
{{- end }}
{{- if .Repo }}

<!-- Self-testing badge (remove if not using CI yet) -->
![Demo status](https://github.com/{{ .Repo }}/actions/workflows/{{ .Workflow }}/badge.svg)
{{- end }}
`)
)

// WorkflowFile is the CI workflow the status badge points at.
const WorkflowFile = "dg-validate.yml"

// rel returns p relative to the project root with forward slashes.
func (g *Generator) rel(p string) string {
	if r, err := filepath.Rel(g.Root, p); err == nil {
		return filepath.ToSlash(r)
	}
	return filepath.ToSlash(p)
}

// Generate exports the named demo's recording for theme. A missing recording
// or a failed export is reported as a warning with fallback markdown.
func (g *Generator) Generate(ctx context.Context, name, theme string) SVGResult {
	log := logging.OrDiscard(g.Logger)
	castPath := g.Layout.CastPath(name)
	result := SVGResult{Theme: theme}

	data := struct{ Name, Cast, SVG string }{Name: name, Cast: g.rel(castPath)}
	fallback := func(warning string) SVGResult {
		result.Warning = warning
		md, err := template.Execute(castOnlyMarkdown, data)
		if err != nil {
			log.Error("failed to render markdown", "demo", name, "error", err)
		}
		result.Markdown = md
		return result
	}

	if _, err := os.Stat(castPath); errors.Is(err, fs.ErrNotExist) {
		return fallback("Cast file not found: " + castPath)
	}
	if g.Exporter == nil {
		return fallback("SVG export unavailable - install termsvg")
	}

	svgPath := g.Layout.SVGPath(name, theme)
	if err := g.Exporter.Export(ctx, castPath, svgPath, g.Minify); err != nil {
		log.Warn("svg export failed", "demo", name, "theme", theme, "error", err)
		return fallback("SVG export failed - check termsvg installation")
	}

	result.Path = svgPath
	data.SVG = g.rel(svgPath)
	md, err := template.Execute(svgMarkdown, data)
	if err != nil {
		return fallback(err.Error())
	}
	result.Markdown = md
	return result
}

// GenerateAll exports every theme of the named demo.
func (g *Generator) GenerateAll(ctx context.Context, name string, themes []string) []SVGResult {
	if len(themes) == 0 {
		themes = Themes
	}
	results := make([]SVGResult, 0, len(themes))
	for _, theme := range themes {
		results = append(results, g.Generate(ctx, name, theme))
	}
	return results
}

// Image is one themed image referenced by a snippet.
type Image struct {
	Theme string
	Path  string
}

// SnippetData feeds the documentation snippet.
type SnippetData struct {
	Title    string
	Images   []Image
	Repo     string
	Workflow string
}

// Snippet renders the documentation snippet for demo. Images reference the
// layout paths of every theme whether or not the export succeeded, so a
// later `dg generate` fills them in.
func (g *Generator) Snippet(demo *project.DemoRecord, themes []string) (string, error) {
	if len(themes) == 0 {
		themes = Themes
	}
	data := SnippetData{Title: demo.DisplayName(), Repo: g.Repo, Workflow: WorkflowFile}
	for _, theme := range themes {
		data.Images = append(data.Images, Image{Theme: theme, Path: g.rel(g.Layout.SVGPath(demo.Name, theme))})
	}
	return template.Execute(snippetMarkdown, data)
}

// WriteSnippet stores content as the named demo's snippet and returns its path.
func (g *Generator) WriteSnippet(name, content string) (string, error) {
	p := g.Layout.SnippetPath(name)
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
		return "", fmt.Errorf("failed to create snippets directory: %w", err)
	}
	if err := os.WriteFile(p, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write snippet: %w", err)
	}
	return p, nil
}

// ErrClipboardUnsupported is returned when no clipboard utility is present.
var ErrClipboardUnsupported = errors.New("clipboard not available")

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
