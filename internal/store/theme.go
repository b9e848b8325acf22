// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mailcraft/internal/models"
)

// ThemeStore handles all theme database operations.
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new ThemeStore.
func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// themeColumns lists the columns selected in theme queries.
const themeColumns = `id, name, style_prompt, palette, font_family, is_active, created_at, updated_at`

// scanTheme scans a theme row from the result set.
func scanTheme(scanner interface{ Scan(...any) error }) (*models.Theme, error) {
	var t models.Theme
	err := scanner.Scan(&t.ID, &t.Name, &t.StylePrompt, (*stringMap)(&t.Palette), &t.FontFamily,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all themes ordered by creation date descending.
func (s *ThemeStore) List() ([]models.Theme, error) {
	rows, err := s.db.Query(`
		SELECT ` + themeColumns + `
		FROM themes
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var items []models.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindByID retrieves a theme by its UUID. Returns nil if not found.
func (s *ThemeStore) FindByID(id uuid.UUID) (*models.Theme, error) {
	row := s.db.QueryRow(`SELECT `+themeColumns+` FROM themes WHERE id = $1`, id)
	t, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find theme by id: %w", err)
	}
	return t, nil
}

// FindActive returns the currently active theme, or nil if none is active.
func (s *ThemeStore) FindActive() (*models.Theme, error) {
	row := s.db.QueryRow(`SELECT ` + themeColumns + ` FROM themes WHERE is_active = TRUE LIMIT 1`)
	t, err := scanTheme(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active theme: %w", err)
	}
	return t, nil
}

// Create inserts a new, inactive theme and returns it with the generated ID.
func (s *ThemeStore) Create(t *models.Theme) (*models.Theme, error) {
	row := s.db.QueryRow(`
		INSERT INTO themes (name, style_prompt, palette, font_family)
		VALUES ($1, $2, $3, $4)
		RETURNING `+themeColumns,
		t.Name, t.StylePrompt, stringMap(t.Palette), t.FontFamily,
	)
	created, err := scanTheme(row)
	if err != nil {
		return nil, fmt.Errorf("create theme: %w", err)
	}
	return created, nil
}

// Update modifies a theme's brief, palette and font.
func (s *ThemeStore) Update(t *models.Theme) error {
	result, err := s.db.Exec(`
		UPDATE themes SET name = $1, style_prompt = $2, palette = $3, font_family = $4, updated_at = NOW()
		WHERE id = $5
	`, t.Name, t.StylePrompt, stringMap(t.Palette), t.FontFamily, t.ID)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate sets a theme as active and deactivates all others.
// Uses a transaction to ensure atomicity.
func (s *ThemeStore) Activate(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE themes SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("deactivate themes: %w", err)
	}

	result, err := tx.Exec(`UPDATE themes SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate theme: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Deactivate sets a specific theme as inactive.
func (s *ThemeStore) Deactivate(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE themes SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate theme: %w", err)
	}
	return nil
}

// Delete removes a theme. The active theme cannot be deleted.
func (s *ThemeStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM themes WHERE id = $1 AND is_active = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete theme: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("theme not found or is currently active: %w", ErrNotFound)
	}
	return nil
}
