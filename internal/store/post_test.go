// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"mailcraft/internal/blocks"
	"mailcraft/internal/models"
)

const (
	postA = "11111111-1111-4111-8111-111111111111"
	postB = "22222222-2222-4222-8222-222222222222"
	tagA  = "33333333-3333-4333-8333-333333333333"
)

func TestPostStore_ListFilters(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)
	tagID := uuid.MustParse(tagA)

	mock.ExpectQuery(`FROM posts WHERE kind = \$1 AND status = \$2 AND id IN \(SELECT post_id FROM post_tags WHERE tag_id = \$3\) AND \(title ILIKE \$4 OR subject ILIKE \$5\) ORDER BY updated_at DESC LIMIT 10 OFFSET 20`).
		WithArgs(models.PostKindEmail, models.PostStatusDraft, tagID, "%sale%", "%sale%").
		WillReturnRows(postRows(postA, postB))
	mock.ExpectQuery(`FROM post_tags pt JOIN tags t`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "id", "name", "slug", "created_at"}).
			AddRow(postB, tagA, "Promo", "promo", postRowsTime()))

	posts, err := s.List(models.PostFilter{
		Kind: models.PostKindEmail, Status: models.PostStatusDraft, TagID: &tagID,
		Search: "sale", Limit: 10, Offset: 20,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if len(posts[0].Tags) != 0 || len(posts[1].Tags) != 1 || posts[1].Tags[0].Slug != "promo" {
		t.Errorf("tags not attached to the right post: %+v / %+v", posts[0].Tags, posts[1].Tags)
	}
	if posts[0].VariableValues["first_name"] != "Ana" {
		t.Errorf("variable values = %v", posts[0].VariableValues)
	}
	if sp, ok := posts[0].Blocks[0].Props.(blocks.SpacerProps); !ok || sp.Height != 32 {
		t.Errorf("blocks = %+v", posts[0].Blocks)
	}
}

func TestPostStore_ListDefaults(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)

	mock.ExpectQuery(`FROM posts ORDER BY updated_at DESC LIMIT 50$`).
		WillReturnRows(sqlmock.NewRows(postCols))

	posts, err := s.List(models.PostFilter{})
	if err != nil || len(posts) != 0 {
		t.Fatalf("List = %v, %v", posts, err)
	}
}

func TestPostStore_FindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)
	id := uuid.MustParse(postA)

	mock.ExpectQuery(`FROM posts WHERE id = \$1`).WithArgs(id).WillReturnRows(sqlmock.NewRows(postCols))

	p, err := s.FindByID(id)
	if err != nil || p != nil {
		t.Fatalf("FindByID = %v, %v; want nil, nil", p, err)
	}
}

func TestPostStore_UpdateSnapshotsAndBumpsVersion(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)
	id := uuid.MustParse(postA)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO post_revisions`).WithArgs(id, "autosave").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE posts SET`).WillReturnRows(postRows(postA))
	mock.ExpectCommit()

	p := &models.Post{ID: id, Title: "Spring sale", Format: models.PostFormatBlocks, Status: models.PostStatusDraft, Version: 2}
	updated, err := s.Update(p, "autosave")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 3 {
		t.Errorf("version = %d, want 3", updated.Version)
	}
}

func TestPostStore_UpdateConflict(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)
	id := uuid.MustParse(postA)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO post_revisions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE posts SET`).WillReturnRows(sqlmock.NewRows(postCols))
	mock.ExpectRollback()

	_, err := s.Update(&models.Post{ID: id, Version: 1}, "")
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
}

func TestPostStore_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO post_revisions`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.Update(&models.Post{ID: uuid.MustParse(postA)}, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostStore_SetTags(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostStore(db)
	id := uuid.MustParse(postA)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM post_tags WHERE post_id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO post_tags`).WithArgs(id, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.SetTags(id, []uuid.UUID{uuid.MustParse(tagA)}); err != nil {
		t.Fatalf("SetTags: %v", err)
	}
}

func TestPostStore_Integration(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	t.Cleanup(func() { cleanPosts(t, db, "it-post", "it-post-copy") })

	d := blocks.Design{{ID: "h", Props: blocks.HeadingProps{Text: "Hi {{first_name}}", Level: "h1"}}}
	created, err := s.Create(&models.Post{
		Kind: models.PostKindEmail, Title: "IT", Slug: "it-post", Format: models.PostFormatBlocks,
		Blocks: d, VariableValues: map[string]string{"first_name": "Ana"}, Status: models.PostStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("version = %d, want 1", created.Version)
	}

	created.Title = "IT updated"
	updated, err := s.Update(created, "edit")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 2 || updated.Title != "IT updated" {
		t.Errorf("updated = %+v", updated)
	}
	if _, err := s.Update(created, "stale"); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale update err = %v, want ErrVersionConflict", err)
	}

	revs, err := NewRevisionStore(db).ListByPost(created.ID)
	if err != nil || len(revs) < 1 || revs[0].Title != "IT" {
		t.Errorf("revisions = %+v, %v", revs, err)
	}

	dup, err := s.Duplicate(created.ID, "IT copy", "it-post-copy")
	if err != nil || dup == nil || dup.Status != models.PostStatusDraft {
		t.Fatalf("Duplicate = %+v, %v", dup, err)
	}
	if blocks.Compile(dup.Blocks) != blocks.Compile(d) {
		t.Error("duplicate blocks differ")
	}
}
