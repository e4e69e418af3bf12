// Package script emits the client-side versions script for pages that
// populate their menu in the browser instead of at build time.
package script

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dgallion1/docversions/internal/menu"
	"github.com/dgallion1/docversions/internal/versions"
)

var tmpl = template.Must(template.New("versions.js").Funcs(template.FuncMap{
	"quote": jsString,
}).Parse(`var versions = [
{{- range .Versions}}
  {{quote .}},
{{- end}}
];

document.addEventListener("DOMContentLoaded", function() {
  var menu = document.getElementById({{quote .ContainerID}});
  if (!menu) {
    return;
  }
  for (var i = 0; i < versions.length; i++) {
    var a = document.createElement("a");
    a.href = {{quote .PathPrefix}} + versions[i];
    a.textContent = versions[i];
    var li = document.createElement("li");
    li.appendChild(a);
    menu.appendChild(li);
  }
});
`))

type data struct {
	Versions    versions.List
	ContainerID string
	PathPrefix  string
}

// Render writes the script with list baked in as a literal array.
func Render(w io.Writer, list versions.List, opts menu.Options) error {
	if opts.ContainerID == "" {
		opts.ContainerID = menu.DefaultContainerID
	}
	if opts.PathPrefix == "" {
		opts.PathPrefix = menu.DefaultPathPrefix
	}
	if err := tmpl.Execute(w, data{
		Versions:    list,
		ContainerID: opts.ContainerID,
		PathPrefix:  opts.PathPrefix,
	}); err != nil {
		return fmt.Errorf("render versions script: %w", err)
	}
	return nil
}

// String renders the script to a string.
func String(list versions.List, opts menu.Options) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, list, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// jsString quotes s as a JSON string, which is also a valid JS literal.
// json.Marshal escapes <, > and &, so a label cannot close an inline script.
// It also replaces invalid UTF-8 with U+FFFD; versions.Parse rejects such labels.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
