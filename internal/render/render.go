// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides the HTML pages mailcraft serves itself: the
// editor preview frame and the public blog article page. Templates are
// embedded and paired with a shared base layout.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"mailcraft/internal/placeholder"
)

//go:embed templates/*.html
var templateFS embed.FS

// PreviewData feeds the editor preview frame. Document is the complete
// rendered email, shown inside a sandboxed iframe.
type PreviewData struct {
	Title      string
	Subject    string
	Preheader  string
	Document   string
	Variables  []placeholder.Variable
	Unresolved []string
	Warnings   []string
}

// ArticleData feeds the public blog article page.
type ArticleData struct {
	Title       string
	Body        template.HTML
	FontFamily  string
	Accent      string
	PublishedAt *time.Time
	Tags        []string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses every page template in the embedded filesystem together with
// base.html. When devMode is true pages show a development banner.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"isDev": func() bool {
				return devMode
			},
			// token renders a name as its {{name}} placeholder.
			"token": placeholder.Token,
			"date": func(t *time.Time) string {
				if t == nil {
					return ""
				}
				return t.Format("January 2, 2006")
			},
			"fontStack": fontStack,
			"kindClass": func(k placeholder.Kind) string {
				return "kind-" + string(k)
			},
		},
	}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Preview writes the editor preview frame.
func (rn *Renderer) Preview(w http.ResponseWriter, data *PreviewData) {
	rn.Page(w, "preview", data)
}

// Article writes a public blog article page.
func (rn *Renderer) Article(w http.ResponseWriter, data *ArticleData) {
	rn.Page(w, "article", data)
}

// Bytes renders the full page name into memory, for callers that cache
// the output.
func (rn *Renderer) Bytes(name string, data any) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a named template inside the base layout.
func (rn *Renderer) Page(w http.ResponseWriter, name string, data any) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := executeTemplate(w, tmpl, "base.html", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// fontStack keeps the leading run of characters valid in a CSS
// font-family list, so a theme font like 'Helvetica Neue', Arial survives
// html/template's CSS filter. Everything from the first other character
// on is dropped.
func fontStack(s string) template.CSS {
	end := strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == ' ' || r == ',' || r == '-' || r == '\'' || r == '"':
			return false
		}
		return true
	})
	if end >= 0 {
		s = s[:end]
	}
	return template.CSS(strings.TrimSpace(s))
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

