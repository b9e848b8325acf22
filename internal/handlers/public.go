// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"html"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"mailcraft/internal/models"
	"mailcraft/internal/placeholder"
	"mailcraft/internal/render"
	"mailcraft/internal/slug"
)

// PublicPost serves the "view in browser" page of a published post at
// /p/{slug}. Rendered pages are cached in Valkey; query parameters override
// variable values and bypass the cache.
func (a *API) PublicPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s := chi.URLParam(r, "slug")
	if !slug.Valid(s) {
		http.NotFound(w, r)
		return
	}

	overrides := queryValues(r.URL.Query())
	cacheable := a.pageCache != nil && len(overrides) == 0
	if cacheable {
		if cached, ok := a.pageCache.Get(ctx, s); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("X-Cache", "HIT")
			w.Write(cached)
			return
		}
	}

	p, err := a.posts.FindPublishedBySlug(s)
	if err != nil {
		slog.Error("find published post failed", "error", err, "slug", s)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	res, err := a.engine.RenderPost(p, overrides)
	if err != nil {
		slog.Error("render public post failed", "error", err, "slug", s)
		writeFallbackPage(w, p.Title)
		return
	}

	body := []byte(res.HTML)
	if p.Kind == models.PostKindBlog && a.renderer != nil {
		body, err = a.renderer.Bytes("article", a.articleData(p, res.HTML))
		if err != nil {
			slog.Error("render article failed", "error", err, "slug", s)
			writeFallbackPage(w, p.Title)
			return
		}
	}

	if cacheable {
		a.pageCache.Set(ctx, s, body)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

// articleData wraps a blog post body for the article layout, styled with
// the post's theme.
func (a *API) articleData(p *models.Post, body string) *render.ArticleData {
	data := &render.ArticleData{
		Title:       p.Title,
		Body:        template.HTML(body),
		PublishedAt: p.PublishedAt,
	}
	for _, t := range p.Tags {
		data.Tags = append(data.Tags, t.Name)
	}
	if p.ThemeID != nil && a.themes != nil {
		if t, err := a.themes.FindByID(*p.ThemeID); err != nil {
			slog.Warn("load post theme failed", "post", p.ID, "error", err)
		} else if t != nil {
			data.FontFamily = t.FontFamily
			data.Accent = t.Palette["primary"]
		}
	}
	return data
}

// queryValues turns ?first_name=Ana into variable overrides. Only names
// that could be placeholders are kept. The page is public, so values are
// HTML-escaped before they reach the document.
func queryValues(q url.Values) map[string]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) == 0 || validateValues(map[string]string{k: v[0]}) != "" {
			continue
		}
		if kind := placeholder.Classify(k); (kind == placeholder.KindLink || kind == placeholder.KindImage) && !webURL(v[0]) {
			continue
		}
		out[k] = html.EscapeString(v[0])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// webURL reports whether s is an absolute http(s) URL.
func webURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// writeFallbackPage is shown when a post cannot be rendered. User content
// is never written unescaped here.
func writeFallbackPage(w http.ResponseWriter, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	safe := html.EscapeString(title)
	w.Write([]byte(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>` + safe + `</title></head>
<body style="font-family:Arial,sans-serif;text-align:center;padding:48px;color:#374151;">
<h1>` + safe + `</h1><p>This page could not be rendered right now.</p>
</body></html>`))
}
