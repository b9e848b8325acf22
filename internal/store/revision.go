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

// RevisionStore reads the post snapshots written by PostStore.Update.
type RevisionStore struct {
	db *sql.DB
}

// NewRevisionStore creates a new RevisionStore.
func NewRevisionStore(db *sql.DB) *RevisionStore {
	return &RevisionStore{db: db}
}

const revisionColumns = `id, post_id, version, title, subject, format, html_content,
	blocks, variable_values, note, created_at`

func scanRevision(scanner interface{ Scan(...any) error }) (*models.PostRevision, error) {
	var r models.PostRevision
	err := scanner.Scan(
		&r.ID, &r.PostID, &r.Version, &r.Title, &r.Subject, &r.Format, &r.HTMLContent,
		&r.Blocks, (*stringMap)(&r.VariableValues), &r.Note, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByPost returns the revisions of a post, newest first.
func (s *RevisionStore) ListByPost(postID uuid.UUID) ([]models.PostRevision, error) {
	rows, err := s.db.Query(`
		SELECT `+revisionColumns+`
		FROM post_revisions
		WHERE post_id = $1
		ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var items []models.PostRevision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// FindByID retrieves a revision. Returns nil if not found.
func (s *RevisionStore) FindByID(id uuid.UUID) (*models.PostRevision, error) {
	row := s.db.QueryRow(`SELECT `+revisionColumns+` FROM post_revisions WHERE id = $1`, id)
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find revision: %w", err)
	}
	return r, nil
}

// ApplyRevision copies the content fields of r onto p. Metadata such as
// slug, status and kind are left as they are.
func ApplyRevision(p *models.Post, r *models.PostRevision) {
	p.Title = r.Title
	p.Subject = r.Subject
	p.Format = r.Format
	p.HTMLContent = r.HTMLContent
	p.Blocks = r.Blocks
	p.VariableValues = r.VariableValues
}
