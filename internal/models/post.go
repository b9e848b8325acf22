// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"mailcraft/internal/blocks"
)

// PostKind distinguishes marketing emails from blog posts. Both share the
// posts table.
type PostKind string

const (
	PostKindEmail PostKind = "email"
	PostKindBlog  PostKind = "blog"
)

// PostFormat selects the editor and the rendering path for a post.
type PostFormat string

const (
	// PostFormatHTML posts are edited as raw HTML in the classic editor.
	PostFormatHTML PostFormat = "html"
	// PostFormatBlocks posts are edited in the block designer and compiled.
	PostFormatBlocks PostFormat = "blocks"
	// PostFormatMarkdown posts are converted with goldmark (blog posts).
	PostFormatMarkdown PostFormat = "markdown"
)

// PostStatus is the workflow state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusReady     PostStatus = "ready"
	PostStatusPublished PostStatus = "published"
)

// Post is an email or blog post. Depending on Format, the source of truth
// is HTMLContent or Blocks; VariableValues holds the asset map resolving
// its {{name}} placeholders.
type Post struct {
	ID             uuid.UUID         `json:"id"`
	Kind           PostKind          `json:"kind"`
	Title          string            `json:"title"`
	Slug           string            `json:"slug"`
	Subject        string            `json:"subject"`
	Preheader      string            `json:"preheader"`
	Format         PostFormat        `json:"format"`
	HTMLContent    string            `json:"html_content"`
	Blocks         blocks.Design     `json:"blocks"`
	VariableValues map[string]string `json:"variable_values"`
	Status         PostStatus        `json:"status"`
	ThemeID        *uuid.UUID        `json:"theme_id,omitempty"`
	Version        int               `json:"version"`
	PublishedAt    *time.Time        `json:"published_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Populated by store methods that join post_tags.
	Tags []Tag `json:"tags,omitempty"`
}

// IsPublished returns true if the post is publicly viewable.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Source returns the document the variable extractor should scan for the
// post's current format.
func (p *Post) Source() string {
	if p.Format == PostFormatBlocks {
		return blocks.Compile(p.Blocks)
	}
	return p.HTMLContent
}

// ValidKind reports whether k is a known post kind.
func ValidKind(k PostKind) bool {
	return k == PostKindEmail || k == PostKindBlog
}

// ValidFormat reports whether f is a known post format.
func ValidFormat(f PostFormat) bool {
	switch f {
	case PostFormatHTML, PostFormatBlocks, PostFormatMarkdown:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known post status.
func ValidStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusReady, PostStatusPublished:
		return true
	}
	return false
}

// PostRevision stores a snapshot of a post taken before each update.
type PostRevision struct {
	ID             uuid.UUID         `json:"id"`
	PostID         uuid.UUID         `json:"post_id"`
	Version        int               `json:"version"`
	Title          string            `json:"title"`
	Subject        string            `json:"subject"`
	Format         PostFormat        `json:"format"`
	HTMLContent    string            `json:"html_content"`
	Blocks         blocks.Design     `json:"blocks"`
	VariableValues map[string]string `json:"variable_values"`
	Note           string            `json:"note"`
	CreatedAt      time.Time         `json:"created_at"`
}

// PostFilter narrows a post listing. Zero values mean "any".
type PostFilter struct {
	Kind   PostKind
	Status PostStatus
	TagID  *uuid.UUID
	Search string
	Limit  int
	Offset int
}
