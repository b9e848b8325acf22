// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"
)

// ModerationResult contains the outcome of a prompt safety check.
type ModerationResult struct {
	Safe       bool     `json:"safe"`
	Categories []string `json:"categories,omitempty"` // flagged category names, sorted
}

// Moderator checks user prompts for policy violations before sending
// them to AI generation endpoints.
type Moderator interface {
	CheckSafety(ctx context.Context, text string) (*ModerationResult, error)
}

// --- OpenAI Moderation (free endpoint) ---

type openAIModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIModerator(apiKey, baseURL string) *openAIModerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIModerator{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *openAIModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	body := moderationRequest{Model: "omni-moderation-latest", Input: text}
	headers := map[string]string{"Authorization": "Bearer " + m.apiKey}

	var result moderationResponse
	if err := postJSON(ctx, m.client, "openai moderation", m.baseURL+"/moderations", headers, body, &result); err != nil {
		return nil, err
	}

	if len(result.Results) == 0 || !result.Results[0].Flagged {
		return &ModerationResult{Safe: true}, nil
	}
	return &ModerationResult{Safe: false, Categories: flaggedCategories(result.Results[0].Categories)}, nil
}

// --- Mistral Moderation (paid, fallback) ---

type mistralModerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newMistralModerator(apiKey, baseURL string) *mistralModerator {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	return &mistralModerator{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *mistralModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	body := moderationRequest{Model: "mistral-moderation-latest", Input: text}
	headers := map[string]string{"Authorization": "Bearer " + m.apiKey}

	var result moderationResponse
	if err := postJSON(ctx, m.client, "mistral moderation", m.baseURL+"/moderations", headers, body, &result); err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return &ModerationResult{Safe: true}, nil
	}
	// Mistral has no top-level "flagged"; any flagged category counts.
	flagged := flaggedCategories(result.Results[0].Categories)
	return &ModerationResult{Safe: len(flagged) == 0, Categories: flagged}, nil
}

// --- Fallback ---

// fallbackModerator tries each moderator in order and moves to the next
// on authentication errors (e.g. project-scoped OpenAI keys that cannot
// call the moderation endpoint).
type fallbackModerator struct {
	chain []Moderator
}

func (f *fallbackModerator) CheckSafety(ctx context.Context, text string) (*ModerationResult, error) {
	var lastErr error
	for _, m := range f.chain {
		res, err := m.CheckSafety(ctx, text)
		if err == nil {
			return res, nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || (apiErr.Status != http.StatusUnauthorized && apiErr.Status != http.StatusForbidden) {
			return nil, err
		}
		slog.Warn("moderation provider rejected credentials, trying next", "error", err)
		lastErr = err
	}
	return nil, lastErr
}

// flaggedCategories returns readable names of the flagged categories:
// "hate/threatening" becomes "hate (threatening)", underscores become
// spaces.
func flaggedCategories(cats map[string]bool) []string {
	var out []string
	for cat, isFlagged := range cats {
		if !isFlagged {
			continue
		}
		display := cat
		if i := strings.IndexByte(cat, '/'); i >= 0 {
			display = cat[:i] + " (" + cat[i+1:] + ")"
		}
		out = append(out, strings.ReplaceAll(display, "_", " "))
	}
	slices.Sort(out)
	return out
}

// --- Request/Response types (shared by both APIs) ---

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []moderationResult `json:"results"`
}

type moderationResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}
