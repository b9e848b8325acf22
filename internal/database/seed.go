// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"mailcraft/internal/blocks"
)

// defaultStylePrompt is the brief of the seeded theme.
const defaultStylePrompt = `Clean, friendly consumer brand. Generous white space, ` +
	`rounded buttons, short paragraphs, one clear call to action per email. ` +
	`Primary colour #0f766e, text #1f2937, accents #f59e0b.`

// Seed populates the database with initial development data: an active
// default theme and a welcome email built in the block designer. It does
// nothing when any theme already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM themes").Scan(&count); err != nil {
		return fmt.Errorf("seed check themes: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	palette, err := json.Marshal(map[string]string{
		"primary": "#0f766e",
		"text":    "#1f2937",
		"accent":  "#f59e0b",
	})
	if err != nil {
		return fmt.Errorf("seed palette: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var themeID string
	err = tx.QueryRow(`
		INSERT INTO themes (name, style_prompt, palette, font_family, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id`,
		"Default", defaultStylePrompt, palette, blocks.DefaultFontFamily,
	).Scan(&themeID)
	if err != nil {
		return fmt.Errorf("seed insert theme: %w", err)
	}

	design, err := json.Marshal(WelcomeDesign())
	if err != nil {
		return fmt.Errorf("seed design: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO posts (kind, title, slug, subject, format, blocks, variable_values, status, theme_id)
		VALUES ('email', $1, $2, $3, 'blocks', $4, '{}'::jsonb, 'draft', $5)`,
		"Welcome email", "welcome-email", "Welcome to the family, {{first_name}}!", design, themeID,
	)
	if err != nil {
		return fmt.Errorf("seed insert welcome post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded", "theme", "Default", "post", "welcome-email")
	return nil
}

// WelcomeDesign is the block design of the seeded welcome email.
func WelcomeDesign() blocks.Design {
	return blocks.Design{
		{ID: "welcome-logo", Props: blocks.ImageProps{Src: "{{brand_logo}}", Alt: "Logo", Width: 160, Height: blocks.Auto(), Alignment: blocks.AlignCenter}},
		{ID: "welcome-heading", Props: blocks.HeadingProps{Text: "Welcome, {{first_name}}!", Level: "h1", Alignment: blocks.AlignCenter, Color: "#1f2937", FontFamily: blocks.DefaultFontFamily}},
		{ID: "welcome-text", Props: blocks.TextProps{Text: "Thanks for joining us.\nHere is 10% off your first order.", Alignment: blocks.AlignCenter, Color: "#1f2937", FontSize: 16, LineHeight: 1.6}},
		{ID: "welcome-hero", Props: blocks.ImageProps{Src: "{{hero_src}}", Alt: "", Width: 600, Height: blocks.Auto(), LinkURL: "{{hero_link_url}}", Alignment: blocks.AlignCenter}},
		{ID: "welcome-button", Props: blocks.ButtonProps{Text: "Start shopping", URL: "{{cta_url}}", BgColor: "#0f766e", TextColor: "#ffffff", BorderRadius: 24, FontSize: 16, PaddingX: 28, PaddingY: 14, Alignment: blocks.AlignCenter}},
		{ID: "welcome-spacer", Props: blocks.SpacerProps{Height: 24}},
		{ID: "welcome-divider", Props: blocks.DividerProps{Color: "#e5e7eb", Thickness: 1, WidthPercent: 80, Style: "solid"}},
		{ID: "welcome-social", Props: blocks.SocialProps{Networks: []blocks.Network{
			{Platform: "instagram", URL: "{{instagram_link_url}}"},
			{Platform: "tiktok", URL: "{{tiktok_link_url}}"},
		}, Alignment: blocks.AlignCenter, IconSize: 32}},
	}
}
