// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements PostgreSQL persistence for posts, revisions,
// assets, themes and tags. Queries are plain SQL over database/sql; list
// queries with optional filters are built with squirrel.
//
// Lookup methods return (nil, nil) when the row does not exist. Mutations
// that target a missing row return ErrNotFound.
package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var (
	// ErrNotFound is returned by mutations whose target row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when an update was based on a stale
	// version of a post.
	ErrVersionConflict = errors.New("version conflict")
)

// psql is the squirrel builder configured for PostgreSQL placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// stringMap is a map[string]string stored in a JSONB column.
type stringMap map[string]string

// Value implements driver.Valuer. A nil map is stored as {}.
func (m stringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *stringMap) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = stringMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("stringMap: unsupported scan source %T", src)
	}
	out := stringMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("stringMap: %w", err)
	}
	*m = out
	return nil
}
