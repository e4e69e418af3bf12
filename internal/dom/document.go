package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page with a one-shot readiness signal.
// Callbacks registered with OnReady run once MarkReady is called.
type Document struct {
	Root *html.Node

	mu        sync.Mutex
	ready     bool
	callbacks []func(*Document)
}

// Parse reads an HTML page. The document starts out not ready.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return New(root), nil
}

func New(root *html.Node) *Document {
	return &Document{Root: root}
}

// OnReady registers fn to run when the document becomes ready. If it already
// is, fn runs immediately.
func (d *Document) OnReady(fn func(*Document)) {
	d.mu.Lock()
	if d.ready {
		d.mu.Unlock()
		fn(d)
		return
	}
	d.callbacks = append(d.callbacks, fn)
	d.mu.Unlock()
}

// MarkReady fires the readiness signal. Registered callbacks run in
// registration order, each exactly once; later calls are no-ops.
func (d *Document) MarkReady() {
	d.mu.Lock()
	if d.ready {
		d.mu.Unlock()
		return
	}
	d.ready = true
	pending := d.callbacks
	d.callbacks = nil
	d.mu.Unlock()

	for _, fn := range pending {
		fn(d)
	}
}

// Ready reports whether MarkReady has been called.
func (d *Document) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// GetElementByID returns the first element whose id attribute equals id, or nil.
func (d *Document) GetElementByID(id string) *html.Node {
	if d == nil || d.Root == nil || id == "" {
		return nil
	}
	return findElement(d.Root, func(n *html.Node) bool {
		return Attr(n, "id") == id
	})
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return findElement(d.Root, func(n *html.Node) bool { return n.Data == "body" })
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	if t := findElement(d.Root, func(n *html.Node) bool { return n.Data == "title" }); t != nil {
		return TextContent(t)
	}
	return ""
}

// ScriptSources returns the src of every external <script>, in document order.
func (d *Document) ScriptSources() []string {
	if d == nil || d.Root == nil {
		return nil
	}
	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			if src := strings.TrimSpace(Attr(n, "src")); src != "" {
				srcs = append(srcs, src)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.Root)
	return srcs
}

// Render writes the serialized page.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// String renders the page, returning an empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Attr returns the value of the named attribute on n.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// TextContent concatenates all text below n, trimmed.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// ElementChildren returns the element children of n in order.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}
