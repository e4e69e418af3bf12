package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgallion1/docversions/internal/menu"
	"github.com/dgallion1/docversions/internal/script"
	"github.com/dgallion1/docversions/internal/versions"
)

// ScriptPath is where the client script lands, relative to the output dir.
const ScriptPath = "js/versions.js"

// Report summarizes a build.
type Report struct {
	Pages            int      `json:"pages"`
	Entries          int      `json:"entries"`
	MissingContainer []string `json:"missing_container"`
	// ClientSide lists pages that load the versions script and were left
	// for it to populate.
	ClientSide []string `json:"client_side"`
	Copied           int      `json:"copied"`
	Errors           []string `json:"errors"`
}

// Builder bakes the versions menu into every page of a site directory.
type Builder struct {
	srcDir      string
	outDir      string
	renderer    *Renderer
	opts        menu.Options
	concurrency int
	log         *slog.Logger
}

func NewBuilder(srcDir, outDir string, renderer *Renderer, opts menu.Options, concurrency int, log *slog.Logger) *Builder {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Builder{
		srcDir:      srcDir,
		outDir:      outDir,
		renderer:    renderer,
		opts:        opts,
		concurrency: concurrency,
		log:         log,
	}
}

type pageKind int

const (
	kindCopy pageKind = iota
	kindHTML
	kindMarkdown
)

func kindOf(path string) pageKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return kindHTML
	case ".md", ".markdown":
		return kindMarkdown
	}
	return kindCopy
}

// OutputName maps a source path to its output path. Markdown becomes .html.
func OutputName(rel string) string {
	if kindOf(rel) == kindMarkdown {
		return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
	}
	return rel
}

type buildResult struct {
	rel  string
	kind pageKind
	res  PageResult
	err  error
}

// Build renders every page under the source dir into the output dir and
// writes the client script. Directories starting with "_" or "." are site
// data, not content, and are skipped.
func (b *Builder) Build(ctx context.Context, list versions.List) (Report, error) {
	var report Report

	outAbs, err := filepath.Abs(b.outDir)
	if err != nil {
		return report, fmt.Errorf("resolve output dir: %w", err)
	}

	var files []string
	err = filepath.WalkDir(b.srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != b.srcDir && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			if abs, _ := filepath.Abs(path); abs == outAbs {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(b.srcDir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", b.srcDir, err)
	}

	b.log.Info("building site", "src", b.srcDir, "out", b.outDir, "files", len(files), "versions", len(list))

	results := make(chan buildResult, len(files))
	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for _, rel := range files {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return report, ctx.Err()
		}
		wg.Add(1)
		go func(rel string) {
			defer wg.Done()
			defer func() { <-sem }()
			kind := kindOf(rel)
			res, err := b.buildFile(rel, kind, list)
			results <- buildResult{rel: rel, kind: kind, res: res, err: err}
		}(rel)
	}
	wg.Wait()
	close(results)

	var errs []error
	for r := range results {
		if r.err != nil {
			b.log.Error("build file failed", "file", r.rel, "error", r.err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", r.rel, r.err))
			errs = append(errs, fmt.Errorf("%s: %w", r.rel, r.err))
			continue
		}
		if r.kind == kindCopy {
			report.Copied++
			continue
		}
		report.Pages++
		report.Entries += r.res.Appended
		if r.res.ClientSide {
			report.ClientSide = append(report.ClientSide, r.rel)
		}
		if !r.res.ContainerFound {
			report.MissingContainer = append(report.MissingContainer, r.rel)
		}
	}

	if err := b.writeScript(list); err != nil {
		errs = append(errs, err)
		report.Errors = append(report.Errors, err.Error())
	}

	b.log.Info("site built",
		"pages", report.Pages,
		"entries", report.Entries,
		"copied", report.Copied,
		"missing_container", len(report.MissingContainer),
		"client_side", len(report.ClientSide),
		"errors", len(report.Errors),
	)
	return report, errors.Join(errs...)
}

func (b *Builder) buildFile(rel string, kind pageKind, list versions.List) (PageResult, error) {
	srcPath := filepath.Join(b.srcDir, rel)
	dstPath := filepath.Join(b.outDir, OutputName(rel))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return PageResult{}, fmt.Errorf("create output dir: %w", err)
	}

	switch kind {
	case kindHTML:
		f, err := os.Open(srcPath)
		if err != nil {
			return PageResult{}, err
		}
		defer f.Close()
		var buf bytes.Buffer
		res, err := b.renderer.RenderHTML(f, &buf, list)
		if err != nil {
			return res, err
		}
		return res, os.WriteFile(dstPath, buf.Bytes(), 0o644)

	case kindMarkdown:
		src, err := os.ReadFile(srcPath)
		if err != nil {
			return PageResult{}, err
		}
		var buf bytes.Buffer
		res, err := b.renderer.RenderMarkdown(src, rel, &buf, list)
		if err != nil {
			return res, err
		}
		return res, os.WriteFile(dstPath, buf.Bytes(), 0o644)
	}

	return PageResult{}, copyFile(srcPath, dstPath)
}

func (b *Builder) writeScript(list versions.List) error {
	path := filepath.Join(b.outDir, filepath.FromSlash(ScriptPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create script dir: %w", err)
	}
	var buf bytes.Buffer
	if err := script.Render(&buf, list, b.opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ScriptPath, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
