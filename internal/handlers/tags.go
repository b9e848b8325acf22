// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"mailcraft/internal/models"
	"mailcraft/internal/slug"
)

// ListTags returns all tags with their post counts.
func (a *API) ListTags(w http.ResponseWriter, r *http.Request) {
	items, err := a.tags.List()
	if err != nil {
		serverError(w, "list tags failed", err)
		return
	}
	if items == nil {
		items = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateTag creates a tag. Creating a tag whose slug exists returns the
// existing tag.
func (a *API) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTagName(req.Name); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	name := strings.TrimSpace(req.Name)
	t, err := a.tags.Create(name, slug.Generate(name))
	if err != nil {
		serverError(w, "create tag failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTag renames a tag.
func (a *API) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTagName(req.Name); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := a.tags.Update(id, name, slug.Generate(name)); err != nil {
		storeError(w, "tag", err)
		return
	}
	t, err := a.tags.FindByID(id)
	if err != nil || t == nil {
		serverError(w, "reload tag failed", err, "tag", id)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTag removes a tag from every post and deletes it.
func (a *API) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.tags.Delete(id); err != nil {
		storeError(w, "tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
