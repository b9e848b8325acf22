// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the mailcraft API. The
// authoring API speaks JSON; the preview frame and the public view return
// HTML. Handlers receive their dependencies through the API struct.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mailcraft/internal/ai"
	"mailcraft/internal/assist"
	"mailcraft/internal/cache"
	"mailcraft/internal/engine"
	"mailcraft/internal/render"
	"mailcraft/internal/storage"
	"mailcraft/internal/store"
)

// maxJSONBody caps JSON request bodies. Designs and HTML documents are the
// largest payloads.
const maxJSONBody = 2 << 20

// Deps are the collaborators of the API. Storage, PageCache and Assistant
// may be nil; the endpoints that need them answer 503.
type Deps struct {
	Posts     *store.PostStore
	Revisions *store.RevisionStore
	Assets    *store.AssetStore
	Themes    *store.ThemeStore
	Tags      *store.TagStore
	Storage   *storage.Client
	Engine    *engine.Engine
	Renderer  *render.Renderer
	PageCache *cache.PageCache
	AI        *ai.Registry
	Assistant *assist.Assistant
}

// API groups all handlers and their dependencies.
type API struct {
	posts     *store.PostStore
	revisions *store.RevisionStore
	assets    *store.AssetStore
	themes    *store.ThemeStore
	tags      *store.TagStore
	storage   *storage.Client
	engine    *engine.Engine
	renderer  *render.Renderer
	pageCache *cache.PageCache
	ai        *ai.Registry
	assistant *assist.Assistant
}

// New creates the API handler group.
func New(d Deps) *API {
	eng := d.Engine
	if eng == nil {
		eng = engine.New()
	}
	return &API{
		posts:     d.Posts,
		revisions: d.Revisions,
		assets:    d.Assets,
		themes:    d.Themes,
		tags:      d.Tags,
		storage:   d.Storage,
		engine:    eng,
		renderer:  d.Renderer,
		pageCache: d.PageCache,
		ai:        d.AI,
		assistant: d.Assistant,
	}
}

// writeJSON encodes data as the response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// serverError logs err and answers 500 without leaking details.
func serverError(w http.ResponseWriter, msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a JSON body into v, rejecting unknown fields and
// trailing data. It writes the error response itself and reports whether
// decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		}
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "invalid JSON: trailing data")
		return false
	}
	return true
}

// urlID parses the {id} route parameter. It writes a 400 on failure.
func urlID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// notFound answers 404 with a JSON body naming what was missing.
func notFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, what+" not found")
}

// storeError maps store sentinels to responses and logs everything else.
func storeError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		notFound(w, what)
	case errors.Is(err, store.ErrVersionConflict):
		writeError(w, http.StatusConflict, what+" was modified by someone else; reload and retry")
	default:
		serverError(w, what+" store failed", err)
	}
}
