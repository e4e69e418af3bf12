package site

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docversions/internal/dom"
	"github.com/dgallion1/docversions/internal/menu"
	"github.com/dgallion1/docversions/internal/versions"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRenderer(t *testing.T, opts menu.Options) *Renderer {
	t.Helper()
	r, err := NewRenderer(opts, "", quietLogger(), nil)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderHTML_PopulatesMenu(t *testing.T) {
	r := newRenderer(t, menu.DefaultOptions())
	page := `<html><body><ul id="versions-menu-items"></ul><p>body</p></body></html>`

	var out bytes.Buffer
	res, err := r.RenderHTML(strings.NewReader(page), &out, versions.List{"1.0", "2.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Appended != 2 {
		t.Errorf("expected 2 entries, got %d", res.Appended)
	}
	want := `<ul id="versions-menu-items"><li><a href="/versions/1.0">1.0</a></li><li><a href="/versions/2.0">2.0</a></li></ul>`
	if !strings.Contains(out.String(), want) {
		t.Errorf("expected %s in output, got %s", want, out.String())
	}
	if got := r.Stats().Snapshot().Series[SeriesHTML].Pages; got != 1 {
		t.Errorf("expected one recorded html render, got %d", got)
	}
}

func TestRenderHTML_MissingContainer(t *testing.T) {
	r := newRenderer(t, menu.DefaultOptions())
	var out bytes.Buffer
	res, err := r.RenderHTML(strings.NewReader(`<p>plain</p>`), &out, versions.List{"1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ContainerFound {
		t.Error("expected container to be reported missing")
	}
	if strings.Contains(out.String(), "/versions/") {
		t.Error("expected no entries in output")
	}

	strict := menu.DefaultOptions()
	strict.Strict = true
	_, err = newRenderer(t, strict).RenderHTML(strings.NewReader(`<p>plain</p>`), &out, versions.List{"1.0"})
	if !errors.Is(err, menu.ErrContainerNotFound) {
		t.Errorf("expected ErrContainerNotFound in strict mode, got %v", err)
	}
}

func TestRenderMarkdown_UsesLayout(t *testing.T) {
	r := newRenderer(t, menu.DefaultOptions())
	src := []byte("# Getting Started\n\nInstall the *tool*.\n")

	var out bytes.Buffer
	res, err := r.RenderMarkdown(src, "guide/start.md", &out, versions.List{"0.4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Appended != 1 {
		t.Errorf("expected 1 entry, got %d", res.Appended)
	}
	html := out.String()
	if !strings.Contains(html, "<title>Getting Started</title>") {
		t.Errorf("expected title from heading, got %s", html)
	}
	if !strings.Contains(html, "<em>tool</em>") {
		t.Errorf("expected rendered markdown body, got %s", html)
	}
	if !strings.Contains(html, `<a href="/versions/0.4">0.4</a>`) {
		t.Errorf("expected menu entry, got %s", html)
	}
}

func TestRenderHTML_PageLoadingScript(t *testing.T) {
	r := newRenderer(t, menu.DefaultOptions())
	page := `<html><head><script src="/js/versions.js"></script></head><body><ul id="versions-menu-items"></ul></body></html>`

	var out bytes.Buffer
	res, err := r.RenderHTML(strings.NewReader(page), &out, versions.List{"1.0", "2.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ClientSide || !res.ContainerFound {
		t.Errorf("expected client-side page with container, got %+v", res)
	}
	if res.Appended != 0 {
		t.Errorf("expected nothing baked, got %d entries", res.Appended)
	}
	if !strings.Contains(out.String(), `<ul id="versions-menu-items"></ul>`) {
		t.Errorf("expected empty container, got %s", out.String())
	}
}

func TestLoadsScript(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"/js/versions.js", true},
		{"js/versions.js", true},
		{"../js/versions.js?v=2", true},
		{"https://docs.example.com/js/versions.js", true},
		{"/assets/my-js/versions.js", false},
		{"/js/versions.json", false},
		{"/js/app.js", false},
	}
	for _, tt := range tests {
		doc, err := dom.Parse(strings.NewReader(`<script src="` + tt.src + `"></script>`))
		if err != nil {
			t.Fatal(err)
		}
		if got := loadsScript(doc); got != tt.want {
			t.Errorf("loadsScript(%q): expected %v, got %v", tt.src, tt.want, got)
		}
	}
}

func TestRenderMarkdown_TitleDropsInlineMarkup(t *testing.T) {
	r := newRenderer(t, menu.DefaultOptions())
	var out bytes.Buffer
	if _, err := r.RenderMarkdown([]byte("# Hello *World* and `code`\n\nbody\n"), "x.md", &out, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "<title>Hello World and code</title>") {
		t.Errorf("expected plain heading text as title, got %s", out.String())
	}
	if got := r.Stats().Snapshot().Series[SeriesMarkdown].Pages; got != 1 {
		t.Errorf("expected one recorded markdown render, got %d", got)
	}
}

func TestRenderMarkdown_TitleFallsBackToFilename(t *testing.T) {
	r := newRenderer(t, menu.DefaultOptions())
	var out bytes.Buffer
	if _, err := r.RenderMarkdown([]byte("## Only a subheading\n"), "docs/faq.md", &out, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "<title>faq</title>") {
		t.Errorf("expected filename title, got %s", out.String())
	}
}

func TestNewRenderer_CustomLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.html")
	layout := `<html><body><ol id="{{.ContainerID}}" class="custom"></ol>{{.Content}}</body></html>`
	if err := os.WriteFile(path, []byte(layout), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := NewRenderer(menu.DefaultOptions(), path, quietLogger(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	if _, err := r.RenderMarkdown([]byte("text"), "a.md", &out, versions.List{"1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), `<ol id="versions-menu-items" class="custom"><li><a href="/versions/1">1</a></li></ol>`) {
		t.Errorf("expected custom layout with entry, got %s", out.String())
	}
}

func TestNewRenderer_BadLayout(t *testing.T) {
	if _, err := NewRenderer(menu.DefaultOptions(), filepath.Join(t.TempDir(), "missing.html"), quietLogger(), nil); err == nil {
		t.Error("expected error for missing layout file")
	}
}
