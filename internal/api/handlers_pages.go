package api

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docversions/internal/menu"
)

// handlePage serves a file from the site directory. HTML and markdown pages
// are rendered with the versions menu; everything else is served as-is.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean("/" + r.URL.Path)
	if hiddenPath(urlPath) {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}

	file, ok := s.resolve(urlPath)
	if !ok {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(file)) {
	case ".html", ".htm":
		var f *os.File
		f, err = os.Open(file)
		if err == nil {
			defer f.Close()
			_, err = s.renderer.RenderHTML(f, &buf, s.store.Get())
		}
	case ".md", ".markdown":
		var src []byte
		src, err = os.ReadFile(file)
		if err == nil {
			_, err = s.renderer.RenderMarkdown(src, file, &buf, s.store.Get())
		}
	default:
		http.ServeFile(w, r, file)
		return
	}

	if errors.Is(err, menu.ErrContainerNotFound) {
		s.log.Error("page has no menu container", "path", urlPath)
		jsonError(w, "page has no versions menu container", http.StatusInternalServerError)
		return
	}
	if err != nil {
		s.log.Error("render page failed", "path", urlPath, "error", err)
		jsonError(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// resolve maps a cleaned URL path to a file under the site directory.
// Directories resolve to their index page, and a missing .html page falls
// back to the markdown source it would be built from.
func (s *Server) resolve(urlPath string) (string, bool) {
	base := filepath.Join(s.cfg.SiteDir, filepath.FromSlash(urlPath))

	var candidates []string
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		candidates = append(candidates,
			filepath.Join(base, "index.html"),
			filepath.Join(base, "index.md"),
		)
	} else {
		candidates = append(candidates, base)
		if ext := filepath.Ext(base); ext == ".html" {
			stem := strings.TrimSuffix(base, ext)
			candidates = append(candidates, stem+".md", stem+".markdown")
		}
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}

// hiddenPath reports whether any segment is site data ("_") or a dotfile.
func hiddenPath(urlPath string) bool {
	for _, seg := range strings.Split(urlPath, "/") {
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
