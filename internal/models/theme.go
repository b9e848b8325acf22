// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is a brand style brief injected into every AI generation prompt so
// emails and posts stay visually consistent. At most one theme is active.
type Theme struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	StylePrompt string    `json:"style_prompt"`
	// Palette holds named hex colours, e.g. {"primary": "#0f766e"}.
	Palette    map[string]string `json:"palette"`
	FontFamily string            `json:"font_family"`
	IsActive   bool              `json:"is_active"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Tag is a flat label attached to posts.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`

	// Populated by the store's list query.
	PostCount int `json:"post_count"`
}
