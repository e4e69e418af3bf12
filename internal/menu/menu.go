package menu

import (
	"errors"
	"log/slog"

	"github.com/dgallion1/docversions/internal/dom"
	"github.com/dgallion1/docversions/internal/versions"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	DefaultContainerID = "versions-menu-items"
	DefaultPathPrefix  = "/versions/"
)

// ErrContainerNotFound is reported in strict mode when the page has no menu container.
var ErrContainerNotFound = errors.New("menu container not found")

// Options controls where entries go and what they link to.
type Options struct {
	ContainerID string
	PathPrefix  string
	// Strict turns a missing container into ErrContainerNotFound.
	// Otherwise it is logged and the page is left untouched.
	Strict bool
}

func DefaultOptions() Options {
	return Options{
		ContainerID: DefaultContainerID,
		PathPrefix:  DefaultPathPrefix,
	}
}

// Result describes one population pass.
type Result struct {
	ContainerFound bool `json:"container_found"`
	Appended       int  `json:"appended"`
}

// Populator renders a version list as menu entries.
type Populator struct {
	list versions.List
	opts Options
	log  *slog.Logger
}

func NewPopulator(list versions.List, opts Options, log *slog.Logger) *Populator {
	if opts.ContainerID == "" {
		opts.ContainerID = DefaultContainerID
	}
	if opts.PathPrefix == "" {
		opts.PathPrefix = DefaultPathPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Populator{list: list.Clone(), opts: opts, log: log}
}

// Entry builds <li><a href="prefix+label">label</a></li>. The href is the
// plain concatenation of prefix and label.
func Entry(label, prefix string) *html.Node {
	li := &html.Node{Type: html.ElementNode, Data: "li", DataAtom: atom.Li}
	a := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr:     []html.Attribute{{Key: "href", Val: prefix + label}},
	}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	li.AppendChild(a)
	return li
}

// Populate appends one entry per label to container, in list order.
// A nil container appends nothing. Calling it twice appends twice.
func (p *Populator) Populate(container *html.Node) Result {
	if container == nil {
		return Result{}
	}
	for _, label := range p.list {
		container.AppendChild(Entry(label, p.opts.PathPrefix))
	}
	return Result{ContainerFound: true, Appended: len(p.list)}
}

// Apply looks up the container in doc and populates it.
func (p *Populator) Apply(doc *dom.Document) (Result, error) {
	container := doc.GetElementByID(p.opts.ContainerID)
	if container == nil {
		if p.opts.Strict {
			return Result{}, ErrContainerNotFound
		}
		p.log.Warn("menu container not found, no entries rendered", "container_id", p.opts.ContainerID)
		return Result{}, nil
	}
	res := p.Populate(container)
	p.log.Debug("menu populated", "container_id", p.opts.ContainerID, "entries", res.Appended)
	return res, nil
}

// Install registers Apply on the document's readiness signal. done, if non-nil,
// receives the outcome once the signal fires.
func (p *Populator) Install(doc *dom.Document, done func(Result, error)) {
	doc.OnReady(func(d *dom.Document) {
		res, err := p.Apply(d)
		if done != nil {
			done(res, err)
		}
	})
}
