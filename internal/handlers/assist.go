// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mailcraft/internal/ai"
	"mailcraft/internal/assist"
	"mailcraft/internal/models"
	"mailcraft/internal/session"
)

// assistRequest is the body of an assistant task. ThemeID selects a theme
// other than the active one.
type assistRequest struct {
	assist.Input
	ThemeID *uuid.UUID `json:"theme_id"`
}

// RunAssist runs the assistant task named by the {task} parameter.
func (a *API) RunAssist(w http.ResponseWriter, r *http.Request) {
	if a.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "AI assistance is not configured")
		return
	}
	task := assist.Task(chi.URLParam(r, "task"))
	if !task.Valid() {
		writeError(w, http.StatusNotFound, "unknown task")
		return
	}
	var req assistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	theme, err := a.promptTheme(req.ThemeID)
	if err != nil {
		serverError(w, "load theme failed", err)
		return
	}
	in := req.Input
	in.Theme = theme

	out, err := a.assistant.Run(r.Context(), task, &in)
	if err != nil {
		assistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// NewAssistSession returns a fresh conversation id for the editor.
func (a *API) NewAssistSession(w http.ResponseWriter, r *http.Request) {
	id, err := session.NewID()
	if err != nil {
		serverError(w, "new session id failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// CancelAssist stops the running request of a session.
func (a *API) CancelAssist(w http.ResponseWriter, r *http.Request) {
	if a.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "AI assistance is not configured")
		return
	}
	sid := chi.URLParam(r, "sid")
	if !session.ValidID(sid) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": a.assistant.Cancel(sid)})
}

// ResetAssist cancels the running request of a session and forgets its
// conversation.
func (a *API) ResetAssist(w http.ResponseWriter, r *http.Request) {
	if a.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "AI assistance is not configured")
		return
	}
	sid := chi.URLParam(r, "sid")
	if !session.ValidID(sid) {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := a.assistant.Reset(r.Context(), sid); err != nil {
		serverError(w, "reset conversation failed", err, "session", sid)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AIStatus reports the configured providers.
func (a *API) AIStatus(w http.ResponseWriter, r *http.Request) {
	if a.ai == nil {
		writeJSON(w, http.StatusOK, map[string]any{"active": "", "available": []string{}, "image_generation": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active":           a.ai.ActiveName(),
		"available":        a.ai.Available(),
		"image_generation": a.ai.SupportsImageGeneration(),
	})
}

// SetAIProvider switches the active provider at runtime.
func (a *API) SetAIProvider(w http.ResponseWriter, r *http.Request) {
	if a.ai == nil {
		writeError(w, http.StatusServiceUnavailable, "AI assistance is not configured")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.ai.SetActive(req.Name); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	slog.Info("ai provider switched", "provider", req.Name)
	writeJSON(w, http.StatusOK, map[string]string{"active": a.ai.ActiveName()})
}

// promptTheme returns the theme injected into prompts: the requested one,
// or the active theme. A nil theme is valid.
func (a *API) promptTheme(id *uuid.UUID) (*models.Theme, error) {
	if a.themes == nil {
		return nil, nil
	}
	if id != nil {
		return a.themes.FindByID(*id)
	}
	return a.themes.FindActive()
}

// assistError maps assistant failures to responses.
func assistError(w http.ResponseWriter, err error) {
	var flagged *assist.FlaggedError
	var apiErr *ai.APIError
	switch {
	case errors.As(err, &flagged):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      "prompt was flagged by moderation",
			"categories": flagged.Categories,
		})
	case errors.Is(err, assist.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, assist.ErrCancelled):
		writeError(w, http.StatusConflict, "request was cancelled")
	case errors.Is(err, ai.ErrNoProvider):
		writeError(w, http.StatusServiceUnavailable, "no AI provider is configured")
	case errors.Is(err, assist.ErrNoDesign):
		slog.Warn("assistant returned no design", "error", err)
		writeError(w, http.StatusBadGateway, "the model did not return a design; try rephrasing")
	case errors.As(err, &apiErr):
		slog.Error("ai provider error", "provider", apiErr.Provider, "status", apiErr.Status)
		writeError(w, http.StatusBadGateway, "AI provider error")
	default:
		slog.Error("assistant failed", "error", err)
		writeError(w, http.StatusBadGateway, "AI request failed")
	}
}
