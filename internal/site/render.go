package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docversions/internal/dom"
	"github.com/dgallion1/docversions/internal/menu"
	"github.com/dgallion1/docversions/internal/versions"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// DefaultLayout wraps rendered markdown. It carries the menu container so
// markdown pages always get a versions menu.
const DefaultLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<nav>
<ul id="{{.ContainerID}}"></ul>
</nav>
<main>
{{.Content}}
</main>
</body>
</html>
`

type layoutData struct {
	Title       string
	ContainerID string
	Content     template.HTML
}

// Renderer turns source pages into HTML with the versions menu populated.
type Renderer struct {
	opts   menu.Options
	layout *template.Template
	md     goldmark.Markdown
	log    *slog.Logger
	stats  *RenderStats
}

// NewRenderer builds a renderer. An empty layoutFile uses DefaultLayout.
func NewRenderer(opts menu.Options, layoutFile string, log *slog.Logger, stats *RenderStats) (*Renderer, error) {
	src := DefaultLayout
	if layoutFile != "" {
		data, err := os.ReadFile(layoutFile)
		if err != nil {
			return nil, fmt.Errorf("read layout: %w", err)
		}
		src = string(data)
	}
	layout, err := template.New("layout").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if opts.ContainerID == "" {
		opts.ContainerID = menu.DefaultContainerID
	}
	if stats == nil {
		stats = NewRenderStats(time.Hour)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		opts:   opts,
		layout: layout,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log:    log,
		stats:  stats,
	}, nil
}

// Stats returns the render window shared by all renders.
func (r *Renderer) Stats() *RenderStats {
	return r.stats
}

// PageResult describes what rendering did to one page's menu.
type PageResult struct {
	menu.Result
	// ClientSide is set when the page loads the versions script. The
	// script fills the menu in the browser, so nothing is baked in.
	ClientSide bool `json:"client_side"`
}

// RenderHTML parses a page, populates its menu once the document is ready,
// and writes the result.
func (r *Renderer) RenderHTML(src io.Reader, w io.Writer, list versions.List) (PageResult, error) {
	return r.render(SeriesHTML, time.Now(), src, w, list)
}

// RenderMarkdown converts markdown into the layout and then treats it as an
// HTML page. The title comes from the first level-1 heading, else the filename.
func (r *Renderer) RenderMarkdown(src []byte, filename string, w io.Writer, list versions.List) (PageResult, error) {
	start := time.Now()
	doc := r.md.Parser().Parse(text.NewReader(src))

	title := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(filename), ".md"), ".markdown")
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = headingText(h, src)
			break
		}
	}

	var body bytes.Buffer
	if err := r.md.Renderer().Render(&body, src, doc); err != nil {
		return PageResult{}, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	if err := r.layout.Execute(&page, layoutData{
		Title:       title,
		ContainerID: r.opts.ContainerID,
		Content:     template.HTML(body.String()),
	}); err != nil {
		return PageResult{}, fmt.Errorf("execute layout: %w", err)
	}

	return r.render(SeriesMarkdown, start, &page, w, list)
}

func (r *Renderer) render(series string, start time.Time, src io.Reader, w io.Writer, list versions.List) (PageResult, error) {
	doc, err := dom.Parse(src)
	if err != nil {
		return PageResult{}, err
	}

	var res PageResult
	if loadsScript(doc) {
		res.ClientSide = true
		res.ContainerFound = doc.GetElementByID(r.opts.ContainerID) != nil
		if !res.ContainerFound && r.opts.Strict {
			return res, menu.ErrContainerNotFound
		}
		r.log.Debug("page loads the versions script, menu left to the client", "script", ScriptPath)
	} else {
		var applyErr error
		menu.NewPopulator(list, r.opts, r.log).Install(doc, func(got menu.Result, err error) {
			res.Result, applyErr = got, err
		})
		doc.MarkReady()
		if applyErr != nil {
			return res, applyErr
		}
	}

	if err := doc.Render(w); err != nil {
		return res, fmt.Errorf("render html: %w", err)
	}
	r.stats.Record(series, time.Since(start), res)
	return res, nil
}

// loadsScript reports whether the page includes ScriptPath, by absolute or
// relative URL.
func loadsScript(doc *dom.Document) bool {
	for _, src := range doc.ScriptSources() {
		u, err := url.Parse(src)
		if err != nil {
			continue
		}
		p := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
		if p == ScriptPath || strings.HasSuffix(p, "/"+ScriptPath) {
			return true
		}
	}
	return false
}

// headingText collects the literal text below a heading, dropping inline
// markup.
func headingText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.Text:
				buf.Write(v.Segment.Value(src))
				if v.SoftLineBreak() || v.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(v.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
