// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"mailcraft/internal/models"
)

// PostStore handles all post-related database operations. Emails and blog
// posts share the posts table, differentiated by kind.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postColumns lists the columns selected in post queries.
const postColumns = `id, kind, title, slug, subject, preheader, format, html_content,
	blocks, variable_values, status, theme_id, version, published_at, created_at, updated_at`

// DefaultPageSize is used when a listing does not specify a limit.
const DefaultPageSize = 50

// scanPost scans a post row from the result set.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Kind, &p.Title, &p.Slug, &p.Subject, &p.Preheader, &p.Format, &p.HTMLContent,
		&p.Blocks, (*stringMap)(&p.VariableValues), &p.Status, &p.ThemeID, &p.Version,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns posts matching the filter, most recently updated first.
func (s *PostStore) List(f models.PostFilter) ([]models.Post, error) {
	q := psql.Select(postColumns).From("posts").OrderBy("updated_at DESC")
	if f.Kind != "" {
		q = q.Where(sq.Eq{"kind": f.Kind})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.TagID != nil {
		q = q.Where("id IN (SELECT post_id FROM post_tags WHERE tag_id = ?)", *f.TagID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(sq.Or{sq.ILike{"title": pattern}, sq.ILike{"subject": pattern}})
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	q = q.Limit(uint64(limit))
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build post list query: %w", err)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, s.attachTags(items)
}

// attachTags loads the tags of every post in one query.
func (s *PostStore) attachTags(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[uuid.UUID]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.String()
		index[p.ID] = i
	}

	rows, err := s.db.Query(`
		SELECT pt.post_id, t.id, t.name, t.slug, t.created_at
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Tags = append(posts[i].Tags, t)
		}
	}
	return rows.Err()
}

// FindByID retrieves a post by its UUID, including tags. Returns nil if
// not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	one := []models.Post{*p}
	if err := s.attachTags(one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// FindPublishedBySlug retrieves a published post by its slug. Used for the
// public "view in browser" page.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1 AND status = 'published'`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	one := []models.Post{*p}
	if err := s.attachTags(one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// SlugExists reports whether another post already uses slug.
func (s *PostStore) SlugExists(slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excludeID != nil {
		err = s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, slug, *excludeID).Scan(&exists)
	} else {
		err = s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	row := s.db.QueryRow(`
		INSERT INTO posts (kind, title, slug, subject, preheader, format, html_content,
			blocks, variable_values, status, theme_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+postColumns,
		p.Kind, p.Title, p.Slug, p.Subject, p.Preheader, p.Format, p.HTMLContent,
		p.Blocks, stringMap(p.VariableValues), p.Status, p.ThemeID, p.PublishedAt,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update saves p and bumps its version. The previous state is snapshotted
// into post_revisions in the same transaction. When p.Version is non-zero
// the update only applies if the stored version still matches; otherwise
// ErrVersionConflict is returned.
func (s *PostStore) Update(p *models.Post, note string) (*models.Post, error) {
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO post_revisions (post_id, version, title, subject, format, html_content,
			blocks, variable_values, note)
		SELECT id, version, title, subject, format, html_content, blocks, variable_values, $2
		FROM posts WHERE id = $1
	`, p.ID, note)
	if err != nil {
		return nil, fmt.Errorf("snapshot post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	row := tx.QueryRow(`
		UPDATE posts SET
			title = $1, slug = $2, subject = $3, preheader = $4, format = $5,
			html_content = $6, blocks = $7, variable_values = $8, status = $9,
			theme_id = $10, published_at = $11,
			version = version + 1, updated_at = NOW()
		WHERE id = $12 AND ($13 = 0 OR version = $13)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Subject, p.Preheader, p.Format,
		p.HTMLContent, p.Blocks, stringMap(p.VariableValues), p.Status,
		p.ThemeID, p.PublishedAt, p.ID, p.Version,
	)
	updated, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post update: %w", err)
	}
	return updated, nil
}

// Delete removes a post and returns it so the caller can invalidate
// caches keyed by its slug. Returns nil if the post did not exist.
func (s *PostStore) Delete(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`DELETE FROM posts WHERE id = $1 RETURNING `+postColumns, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	return p, nil
}

// Duplicate copies a post into a new draft with the given title and slug.
// Tags are copied too. Returns nil if the source does not exist.
func (s *PostStore) Duplicate(id uuid.UUID, title, slug string) (*models.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO posts (kind, title, slug, subject, preheader, format, html_content,
			blocks, variable_values, status, theme_id)
		SELECT kind, $2, $3, subject, preheader, format, html_content,
			blocks, variable_values, 'draft', theme_id
		FROM posts WHERE id = $1
		RETURNING `+postColumns, id, title, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("duplicate post: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO post_tags (post_id, tag_id)
		SELECT $2, tag_id FROM post_tags WHERE post_id = $1
	`, id, p.ID); err != nil {
		return nil, fmt.Errorf("duplicate post tags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit duplicate: %w", err)
	}
	return p, nil
}

// SetTags replaces the tags of a post.
func (s *PostStore) SetTags(postID uuid.UUID, tagIDs []uuid.UUID) error {
	ids := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		ids[i] = id.String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	if len(ids) > 0 {
		if _, err := tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`, postID, pq.Array(ids)); err != nil {
			return fmt.Errorf("insert post tags: %w", err)
		}
	}
	return tx.Commit()
}

// CountByStatus returns the number of posts of a kind in each status.
func (s *PostStore) CountByStatus(kind models.PostKind) (map[models.PostStatus]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM posts WHERE kind = $1 GROUP BY status`, kind)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	defer rows.Close()

	counts := map[models.PostStatus]int{}
	for rows.Next() {
		var st models.PostStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan post count: %w", err)
		}
		counts[st] = n
	}
	return counts, rows.Err()
}
