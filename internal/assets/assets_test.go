package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepguide-ai/dg/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	err    error
	calls  []string
	minify bool
}

func (f *fakeExporter) Export(_ context.Context, castPath, svgPath string, minify bool) error {
	f.calls = append(f.calls, svgPath)
	f.minify = minify
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(svgPath, []byte("<svg/>"), 0600)
}

func newGenerator(t *testing.T, exp Exporter) *Generator {
	t.Helper()
	root := t.TempDir()
	layout := project.NewStore(root).Layout(project.NewConfig("p"))
	require.NoError(t, layout.Ensure())
	return &Generator{Exporter: exp, Layout: layout, Root: root, Minify: true}
}

func writeCast(t *testing.T, g *Generator, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(g.Layout.CastPath(name), []byte("{\"version\": 2}\n"), 0600))
}

func TestGenerate_Success(t *testing.T) {
	exp := &fakeExporter{}
	g := newGenerator(t, exp)
	writeCast(t, g, "show-help")

	r := g.Generate(context.Background(), "show-help", "dark")
	assert.Empty(t, r.Warning)
	assert.Equal(t, g.Layout.SVGPath("show-help", "dark"), r.Path)
	assert.FileExists(t, r.Path)
	assert.True(t, exp.minify)
	assert.Contains(t, r.Markdown, "## Show-help Demo")
	assert.Contains(t, r.Markdown, "![CLI Demo](/.dg/svg/show-help-dark.svg)")
	assert.Contains(t, r.Markdown, "(.dg/casts/show-help.cast)")
}

func TestGenerate_MissingCast(t *testing.T) {
	exp := &fakeExporter{}
	g := newGenerator(t, exp)

	r := g.Generate(context.Background(), "ghost", "light")
	assert.Contains(t, r.Warning, "Cast file not found")
	assert.Empty(t, r.Path)
	assert.Contains(t, r.Markdown, "SVG preview unavailable")
	assert.Empty(t, exp.calls, "exporter must not run without a recording")
}

func TestGenerate_ExportFailureFallsBack(t *testing.T) {
	g := newGenerator(t, &fakeExporter{err: errors.New("termsvg crashed")})
	writeCast(t, g, "demo")

	r := g.Generate(context.Background(), "demo", "light")
	assert.Equal(t, "SVG export failed - check termsvg installation", r.Warning)
	assert.Empty(t, r.Path)
	assert.Contains(t, r.Markdown, "## Demo Demo")
	assert.NotContains(t, r.Markdown, "CLI Demo")
}

func TestGenerate_NoExporter(t *testing.T) {
	g := newGenerator(t, nil)
	writeCast(t, g, "demo")

	r := g.Generate(context.Background(), "demo", "dark")
	assert.Contains(t, r.Warning, "install termsvg")
}

func TestGenerateAll_DefaultThemes(t *testing.T) {
	exp := &fakeExporter{}
	g := newGenerator(t, exp)
	writeCast(t, g, "demo")

	results := g.GenerateAll(context.Background(), "demo", nil)
	require.Len(t, results, 2)
	assert.Equal(t, "light", results[0].Theme)
	assert.Equal(t, "dark", results[1].Theme)
	assert.Len(t, exp.calls, 2)
}

func TestSnippet(t *testing.T) {
	g := newGenerator(t, nil)
	demo := &project.DemoRecord{Name: "show-help", Title: "Show Help"}

	s, err := g.Snippet(demo, nil)
	require.NoError(t, err)
	assert.Contains(t, s, "## Show Help\n")
	assert.Contains(t, s, "![Show Help - light](/.dg/svg/show-help-light.svg#gh-light-mode-only)")
	assert.Contains(t, s, "![Show Help - dark](/.dg/svg/show-help-dark.svg#gh-dark-mode-only)")
	assert.NotContains(t, s, "badge.svg")

	g.Repo = "acme/tool"
	s, err = g.Snippet(demo, []string{"dark"})
	require.NoError(t, err)
	assert.NotContains(t, s, "light")
	assert.Contains(t, s, "https://github.com/acme/tool/actions/workflows/dg-validate.yml/badge.svg")
}

func TestWriteSnippet(t *testing.T) {
	g := newGenerator(t, nil)
	p, err := g.WriteSnippet("demo", "## Demo\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.Layout.Snippets, "demo.md"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "## Demo\n", string(data))
}
