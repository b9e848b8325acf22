// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"mailcraft/internal/models"
)

type themeRequest struct {
	Name        string            `json:"name"`
	StylePrompt string            `json:"style_prompt"`
	Palette     map[string]string `json:"palette"`
	FontFamily  string            `json:"font_family"`
}

func (req *themeRequest) theme() *models.Theme {
	palette := req.Palette
	if palette == nil {
		palette = map[string]string{}
	}
	return &models.Theme{
		Name:        strings.TrimSpace(req.Name),
		StylePrompt: strings.TrimSpace(req.StylePrompt),
		Palette:     palette,
		FontFamily:  strings.TrimSpace(req.FontFamily),
	}
}

// ListThemes returns all themes.
func (a *API) ListThemes(w http.ResponseWriter, r *http.Request) {
	items, err := a.themes.List()
	if err != nil {
		serverError(w, "list themes failed", err)
		return
	}
	if items == nil {
		items = []models.Theme{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetTheme returns one theme.
func (a *API) GetTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	t, err := a.themes.FindByID(id)
	if err != nil {
		serverError(w, "find theme failed", err, "theme", id)
		return
	}
	if t == nil {
		notFound(w, "theme")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTheme stores a new, inactive theme.
func (a *API) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := req.theme()
	if msg := validateTheme(t); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	created, err := a.themes.Create(t)
	if err != nil {
		serverError(w, "create theme failed", err)
		return
	}
	slog.Info("theme created", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTheme replaces a theme's brief, palette and font. Public pages may
// use the theme, so the page cache is cleared.
func (a *API) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req themeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := req.theme()
	t.ID = id
	if msg := validateTheme(t); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if err := a.themes.Update(t); err != nil {
		storeError(w, "theme", err)
		return
	}
	a.themeChanged(r)
	updated, err := a.themes.FindByID(id)
	if err != nil || updated == nil {
		serverError(w, "reload theme failed", err, "theme", id)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTheme removes an inactive theme.
func (a *API) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.themes.Delete(id); err != nil {
		storeError(w, "inactive theme", err)
		return
	}
	slog.Info("theme deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ActivateTheme makes a theme the active one. Its brief is injected into
// AI prompts from now on.
func (a *API) ActivateTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.themes.Activate(id); err != nil {
		storeError(w, "theme", err)
		return
	}
	a.themeChanged(r)
	slog.Info("theme activated", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// DeactivateTheme leaves no theme active.
func (a *API) DeactivateTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := a.themes.Deactivate(id); err != nil {
		serverError(w, "deactivate theme failed", err, "theme", id)
		return
	}
	a.themeChanged(r)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) themeChanged(r *http.Request) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
}
