// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders posts. It turns a post's source (raw HTML, a
// block design or Markdown) into HTML, substitutes variable values and
// reports which placeholders are still pending. Compiled sources of saved
// posts are kept in an in-memory L1 cache; unsaved previews can use an
// optional L2 store such as the Valkey preview cache.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"mailcraft/internal/blocks"
	"mailcraft/internal/cache"
	"mailcraft/internal/markdown"
	"mailcraft/internal/models"
	"mailcraft/internal/placeholder"
)

// Result is a rendered document plus the variable report for its source.
type Result struct {
	HTML       string                 `json:"html"`
	Variables  []placeholder.Variable `json:"variables"`
	Unresolved []string               `json:"unresolved"`
}

// Complete reports whether every placeholder was resolved.
func (r *Result) Complete() bool {
	return len(r.Unresolved) == 0
}

// PreviewStore memoises preview output. *cache.PreviewCache satisfies it.
type PreviewStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, output string)
}

// PreviewInput is unsaved editor content. Source holds raw HTML for the
// html format and Markdown for the markdown format; Blocks is used for
// the blocks format.
type PreviewInput struct {
	Format models.PostFormat `json:"format"`
	Source string            `json:"source"`
	Blocks blocks.Design     `json:"blocks"`
	Values map[string]string `json:"values"`
}

// Engine renders posts and previews.
type Engine struct {
	cache    *sourceCache
	previews PreviewStore
}

// New creates an engine with an empty L1 cache.
func New() *Engine {
	return &Engine{cache: newSourceCache()}
}

// SetPreviewStore configures the optional L2 preview store.
func (e *Engine) SetPreviewStore(ps PreviewStore) {
	e.previews = ps
}

// Invalidate removes a post from the L1 cache. Called after update or
// delete.
func (e *Engine) Invalidate(id uuid.UUID) {
	e.cache.invalidate(id)
}

// InvalidateAll clears the L1 cache.
func (e *Engine) InvalidateAll() {
	e.cache.invalidateAll()
}

// Source returns the unsubstituted HTML of a post: the compiled design for
// block posts, converted Markdown for markdown posts and the stored HTML
// otherwise. Results for saved posts are cached by ID and version.
func (e *Engine) Source(p *models.Post) (string, error) {
	if p.Format == models.PostFormatHTML {
		return p.HTMLContent, nil
	}

	saved := p.ID != uuid.Nil
	if saved {
		if src, ok := e.cache.get(p.ID, p.Version); ok {
			return src, nil
		}
	}

	src, err := compileSource(p.Format, p.HTMLContent, p.Blocks, blocks.Options{})
	if err != nil {
		return "", err
	}
	if saved {
		e.cache.put(p.ID, p.Version, src)
	}
	return src, nil
}

// RenderPost renders a post with its stored variable values overlaid by
// overrides. Unmapped placeholders stay in the output literally.
//
// Block designs are resolved before compiling, the same way Preview does,
// so substituted colours are checked and substituted URLs are escaped as
// attributes. Sent output and preview differ only in pending-image boxes.
func (e *Engine) RenderPost(p *models.Post, overrides map[string]string) (*Result, error) {
	src, err := e.Source(p)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.ID, err)
	}
	values := mergeValues(p.VariableValues, overrides)
	if p.Format == models.PostFormatBlocks {
		return build(src, blocks.Compile(blocks.Resolve(p.Blocks, values)), values), nil
	}
	return build(src, placeholder.Render(src, values), values), nil
}

// Preview renders unsaved content for the editor. Block designs are
// compiled in preview mode so images still waiting for a value show a
// placeholder box.
func (e *Engine) Preview(ctx context.Context, in PreviewInput) (*Result, error) {
	if !models.ValidFormat(in.Format) {
		return nil, fmt.Errorf("preview: unknown format %q", in.Format)
	}

	src, err := compileSource(in.Format, in.Source, in.Blocks, blocks.Options{})
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}

	key := ""
	if e.previews != nil {
		key = previewKey(in)
		if out, ok := e.previews.Get(ctx, key); ok {
			return build(src, out, in.Values), nil
		}
	}

	var out string
	if in.Format == models.PostFormatBlocks {
		out = blocks.CompileWith(blocks.Resolve(in.Blocks, in.Values), blocks.Options{Preview: true})
	} else {
		out = placeholder.Render(src, in.Values)
	}

	if e.previews != nil {
		e.previews.Set(ctx, key, out)
	}
	return build(src, out, in.Values), nil
}

// build assembles a Result. Unresolved is computed from a plain render so
// preview placeholder boxes do not hide pending names.
func build(src, out string, values map[string]string) *Result {
	return &Result{
		HTML:       out,
		Variables:  placeholder.Describe(src, values),
		Unresolved: placeholder.Unresolved(placeholder.Render(src, values)),
	}
}

// compileSource produces the unsubstituted HTML for a format.
func compileSource(f models.PostFormat, text string, d blocks.Design, opts blocks.Options) (string, error) {
	switch f {
	case models.PostFormatBlocks:
		return blocks.CompileWith(d, opts), nil
	case models.PostFormatMarkdown:
		html, err := markdown.ToHTML(text)
		if err != nil {
			return "", fmt.Errorf("markdown: %w", err)
		}
		return html, nil
	default:
		return text, nil
	}
}

// mergeValues returns base overlaid by overrides without modifying either.
func mergeValues(base, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return base
	}
	out := make(map[string]string, len(base)+len(overrides))
	maps.Copy(out, base)
	maps.Copy(out, overrides)
	return out
}

// previewKey derives the L2 key for a preview input.
func previewKey(in PreviewInput) string {
	source := []byte(in.Source)
	if in.Format == models.PostFormatBlocks {
		// Marshalling a decoded design cannot fail.
		source, _ = json.Marshal(in.Blocks)
	}
	return cache.PreviewKey(string(in.Format), source, in.Values)
}
