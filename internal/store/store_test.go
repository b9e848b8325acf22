// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared helpers: a go-sqlmock constructor for unit
// tests and a real database helper for integration tests, which are
// skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"mailcraft/internal/database"
)

// newMock returns a sqlmock-backed *sql.DB and verifies expectations on
// cleanup.
func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

var postCols = []string{
	"id", "kind", "title", "slug", "subject", "preheader", "format", "html_content",
	"blocks", "variable_values", "status", "theme_id", "version", "published_at", "created_at", "updated_at",
}

// postRowsTime is the timestamp used by every mocked row.
func postRowsTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// postRows builds a result set with one post row per id.
func postRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows(postCols)
	now := postRowsTime()
	for _, id := range ids {
		rows.AddRow(id, "email", "Spring sale", "spring-sale-"+id[:4], "{{first_name}}, 20% off", "", "blocks", "",
			[]byte(`[{"id":"b1","type":"spacer","props":{"height":32}}]`), []byte(`{"first_name":"Ana"}`),
			"draft", nil, 3, nil, now, now)
	}
	return rows
}

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "mailcraft")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "mailcraft")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanPosts removes test posts by slug. Call in t.Cleanup().
func cleanPosts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", slug)
	}
}

func TestStringMap(t *testing.T) {
	var m stringMap
	if err := m.Scan([]byte(`{"hero_src":"https://cdn/x.png"}`)); err != nil {
		t.Fatal(err)
	}
	if m["hero_src"] != "https://cdn/x.png" {
		t.Errorf("m = %v", m)
	}
	if err := m.Scan(nil); err != nil || len(m) != 0 {
		t.Errorf("Scan(nil) = %v, %v", m, err)
	}
	if err := m.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
	v, _ := stringMap(nil).Value()
	if v != "{}" {
		t.Errorf("nil Value = %v", v)
	}
}
