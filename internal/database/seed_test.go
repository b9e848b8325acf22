// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"mailcraft/internal/blocks"
)

func TestSeed_SkipsWhenThemesExist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM themes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSeed_InsertsThemeAndWelcomePost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM themes`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO themes`).
		WithArgs("Default", sqlmock.AnyArg(), sqlmock.AnyArg(), blocks.DefaultFontFamily).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("6f1c2a4e-0000-4000-8000-000000000001"))
	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs("Welcome email", "welcome-email", sqlmock.AnyArg(), sqlmock.AnyArg(), "6f1c2a4e-0000-4000-8000-000000000001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := Seed(db); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWelcomeDesignIsValid(t *testing.T) {
	d := WelcomeDesign()
	if err := blocks.Validate(d); err != nil {
		t.Fatalf("welcome design invalid: %v", err)
	}
	vars := blocks.Variables(d)
	want := map[string]bool{"brand_logo": true, "first_name": true, "hero_src": true, "hero_link_url": true, "cta_url": true}
	for _, v := range vars {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("variables %v missing from compiled welcome design (got %v)", want, vars)
	}
}
