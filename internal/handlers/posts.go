// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"mailcraft/internal/blocks"
	"mailcraft/internal/models"
	"mailcraft/internal/slug"
	"mailcraft/internal/store"
)

// postRequest is the body of create and update requests. Nil fields keep
// their current value on update.
type postRequest struct {
	Kind           *models.PostKind   `json:"kind"`
	Title          *string            `json:"title"`
	Slug           *string            `json:"slug"`
	Subject        *string            `json:"subject"`
	Preheader      *string            `json:"preheader"`
	Format         *models.PostFormat `json:"format"`
	HTMLContent    *string            `json:"html_content"`
	Blocks         *blocks.Design     `json:"blocks"`
	VariableValues map[string]string  `json:"variable_values"`
	Status         *models.PostStatus `json:"status"`
	ThemeID        *uuid.UUID         `json:"theme_id"`
	TagIDs         *[]uuid.UUID       `json:"tag_ids"`

	// Version enables optimistic locking on update when non-zero.
	Version int    `json:"version"`
	Note    string `json:"note"`
}

// apply copies the set fields onto p.
func (req *postRequest) apply(p *models.Post) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Title, req.Title)
	set(&p.Slug, req.Slug)
	set(&p.Subject, req.Subject)
	set(&p.Preheader, req.Preheader)
	set(&p.HTMLContent, req.HTMLContent)
	if req.Kind != nil {
		p.Kind = *req.Kind
	}
	if req.Format != nil {
		p.Format = *req.Format
	}
	if req.Blocks != nil {
		p.Blocks = *req.Blocks
	}
	if req.VariableValues != nil {
		p.VariableValues = req.VariableValues
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.ThemeID != nil {
		p.ThemeID = req.ThemeID
	}
}

// ListPosts returns posts filtered by kind, status, tag and a search term.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.PostFilter{
		Kind:   models.PostKind(q.Get("kind")),
		Status: models.PostStatus(q.Get("status")),
		Search: q.Get("q"),
	}
	if f.Kind != "" && !models.ValidKind(f.Kind) {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}
	if f.Status != "" && !models.ValidStatus(f.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if tag := q.Get("tag"); tag != "" {
		id, err := uuid.Parse(tag)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid tag")
			return
		}
		f.TagID = &id
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	if f.Limit < 0 || f.Limit > 200 || f.Offset < 0 {
		writeError(w, http.StatusBadRequest, "invalid paging")
		return
	}

	posts, err := a.posts.List(f)
	if err != nil {
		serverError(w, "list posts failed", err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost returns a post together with its variable report.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	res, err := a.engine.RenderPost(p, nil)
	if err != nil {
		serverError(w, "render post failed", err, "post", p.ID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"post":       p,
		"variables":  res.Variables,
		"unresolved": res.Unresolved,
	})
}

// CreatePost stores a new post. The slug is derived from the title when
// omitted and made unique.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := &models.Post{
		Kind:   models.PostKindEmail,
		Format: models.PostFormatBlocks,
		Status: models.PostStatusDraft,
	}
	req.apply(p)
	if p.Format == models.PostFormatBlocks && p.Blocks == nil {
		p.Blocks = blocks.Design{}
	}
	if !a.checkPost(w, p) {
		return
	}

	base := p.Slug
	if base == "" {
		base = slug.Generate(p.Title)
	}
	s, err := slug.Unique(base, func(s string) (bool, error) { return a.posts.SlugExists(s, nil) })
	if err != nil {
		serverError(w, "slug check failed", err)
		return
	}
	p.Slug = s

	created, err := a.posts.Create(p)
	if err != nil {
		serverError(w, "create post failed", err)
		return
	}
	if req.TagIDs != nil {
		if err := a.posts.SetTags(created.ID, *req.TagIDs); err != nil {
			serverError(w, "set post tags failed", err, "post", created.ID)
			return
		}
		created, err = a.posts.FindByID(created.ID)
		if err != nil || created == nil {
			serverError(w, "reload post failed", err)
			return
		}
	}

	slog.Info("post created", "id", created.ID, "slug", created.Slug, "format", created.Format)
	writeJSON(w, http.StatusCreated, created)
}

// UpdatePost applies a partial update. The previous state is kept as a
// revision.
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	oldSlug := p.Slug
	req.apply(p)
	p.Version = req.Version
	if !a.checkPost(w, p) {
		return
	}
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	if p.Slug != oldSlug {
		taken, err := a.posts.SlugExists(p.Slug, &p.ID)
		if err != nil {
			serverError(w, "slug check failed", err)
			return
		}
		if taken {
			writeError(w, http.StatusConflict, "slug is already in use")
			return
		}
	}

	updated, err := a.posts.Update(p, req.Note)
	if err != nil {
		storeError(w, "post", err)
		return
	}
	if req.TagIDs != nil {
		if err := a.posts.SetTags(updated.ID, *req.TagIDs); err != nil {
			serverError(w, "set post tags failed", err, "post", updated.ID)
			return
		}
	}
	if reloaded, err := a.posts.FindByID(updated.ID); err == nil && reloaded != nil {
		updated = reloaded
	}

	a.invalidatePost(r.Context(), updated.ID, oldSlug, updated.Slug)
	slog.Info("post updated", "id", updated.ID, "version", updated.Version)
	writeJSON(w, http.StatusOK, updated)
}

// DeletePost removes a post.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.posts.Delete(id)
	if err != nil {
		serverError(w, "delete post failed", err, "post", id)
		return
	}
	if p == nil {
		notFound(w, "post")
		return
	}
	a.invalidatePost(r.Context(), p.ID, p.Slug)
	slog.Info("post deleted", "id", p.ID, "slug", p.Slug)
	w.WriteHeader(http.StatusNoContent)
}

// DuplicatePost copies a post into a new draft.
func (a *API) DuplicatePost(w http.ResponseWriter, r *http.Request) {
	src, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	title := "Copy of " + src.Title
	if len([]rune(title)) > maxTitleLen {
		title = string([]rune(title)[:maxTitleLen])
	}
	s, err := slug.Unique(slug.Generate(title), func(s string) (bool, error) { return a.posts.SlugExists(s, nil) })
	if err != nil {
		serverError(w, "slug check failed", err)
		return
	}
	p, err := a.posts.Duplicate(src.ID, title, s)
	if err != nil {
		serverError(w, "duplicate post failed", err, "post", src.ID)
		return
	}
	if p == nil {
		notFound(w, "post")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// SetPostTags replaces the tags of a post.
func (a *API) SetPostTags(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		TagIDs []uuid.UUID `json:"tag_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.posts.SetTags(id, req.TagIDs); err != nil {
		serverError(w, "set post tags failed", err, "post", id)
		return
	}
	p, err := a.posts.FindByID(id)
	if err != nil {
		serverError(w, "reload post failed", err, "post", id)
		return
	}
	if p == nil {
		notFound(w, "post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListRevisions returns the saved snapshots of a post, newest first.
func (a *API) ListRevisions(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	revs, err := a.revisions.ListByPost(id)
	if err != nil {
		serverError(w, "list revisions failed", err, "post", id)
		return
	}
	if revs == nil {
		revs = []models.PostRevision{}
	}
	writeJSON(w, http.StatusOK, revs)
}

// RestoreRevision copies a revision's content back onto its post. The
// current state is itself kept as a revision.
func (a *API) RestoreRevision(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	revID, ok := urlID(w, r, "revID")
	if !ok {
		return
	}
	rev, err := a.revisions.FindByID(revID)
	if err != nil {
		serverError(w, "find revision failed", err, "revision", revID)
		return
	}
	if rev == nil || rev.PostID != p.ID {
		notFound(w, "revision")
		return
	}

	oldSlug := p.Slug
	store.ApplyRevision(p, rev)
	p.Version = 0
	updated, err := a.posts.Update(p, fmt.Sprintf("restored version %d", rev.Version))
	if err != nil {
		storeError(w, "post", err)
		return
	}
	a.invalidatePost(r.Context(), updated.ID, oldSlug, updated.Slug)
	slog.Info("revision restored", "post", updated.ID, "from_version", rev.Version)
	writeJSON(w, http.StatusOK, updated)
}

// RenderPost renders a saved post with its stored values, overlaid by the
// optional values in the body.
func (a *API) RenderPost(w http.ResponseWriter, r *http.Request) {
	p, ok := a.loadPost(w, r)
	if !ok {
		return
	}
	var req struct {
		Values map[string]string `json:"values"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateValues(req.Values); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	res, err := a.engine.RenderPost(p, req.Values)
	if err != nil {
		serverError(w, "render post failed", err, "post", p.ID)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// loadPost fetches the post named by the {id} parameter, writing the error
// response when it cannot.
func (a *API) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return nil, false
	}
	p, err := a.posts.FindByID(id)
	if err != nil {
		serverError(w, "find post failed", err, "post", id)
		return nil, false
	}
	if p == nil {
		notFound(w, "post")
		return nil, false
	}
	return p, true
}

// checkPost validates p and its design, writing a 422 on failure.
func (a *API) checkPost(w http.ResponseWriter, p *models.Post) bool {
	if msg := validatePost(p); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return false
	}
	if p.Format == models.PostFormatBlocks {
		if err := blocks.Validate(p.Blocks); err != nil {
			var ve *blocks.ValidationError
			if errors.As(err, &ve) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
					"error":    "invalid design",
					"problems": ve.Problems,
				})
				return false
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return false
		}
	}
	return true
}

// invalidatePost drops every cached rendering of a post.
func (a *API) invalidatePost(ctx context.Context, id uuid.UUID, slugs ...string) {
	a.engine.Invalidate(id)
	if a.pageCache == nil {
		return
	}
	seen := map[string]bool{}
	for _, s := range slugs {
		if s != "" && !seen[s] {
			seen[s] = true
			a.pageCache.Invalidate(ctx, s)
		}
	}
}
