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

// AssetStore handles asset metadata. The files themselves live in object
// storage under content-addressed keys.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

// assetColumns lists the columns selected in asset queries.
const assetColumns = `id, hash, original_name, content_type, size_bytes, width, height,
	s3_key, url, alt_text, source, created_at`

// scanAsset scans an asset row from the result set.
func scanAsset(scanner interface{ Scan(...any) error }) (*models.Asset, error) {
	var a models.Asset
	err := scanner.Scan(
		&a.ID, &a.Hash, &a.OriginalName, &a.ContentType, &a.SizeBytes, &a.Width, &a.Height,
		&a.S3Key, &a.URL, &a.AltText, &a.Source, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an asset. If an asset with the same hash already exists
// the existing row is returned unchanged and created is false.
func (s *AssetStore) Create(a *models.Asset) (asset *models.Asset, created bool, err error) {
	row := s.db.QueryRow(`
		INSERT INTO assets (hash, original_name, content_type, size_bytes, width, height,
			s3_key, url, alt_text, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (hash) DO NOTHING
		RETURNING `+assetColumns,
		a.Hash, a.OriginalName, a.ContentType, a.SizeBytes, a.Width, a.Height,
		a.S3Key, a.URL, a.AltText, a.Source,
	)
	asset, err = scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race to an identical upload.
		existing, ferr := s.FindByHash(a.Hash)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing == nil {
			return nil, false, fmt.Errorf("create asset: conflicting row for %s vanished", a.Hash)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create asset: %w", err)
	}
	return asset, true, nil
}

// FindByID retrieves an asset by its UUID. Returns nil if not found.
func (s *AssetStore) FindByID(id uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by id: %w", err)
	}
	return a, nil
}

// FindByHash retrieves an asset by its content hash. Returns nil if not
// found.
func (s *AssetStore) FindByHash(hash string) (*models.Asset, error) {
	row := s.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE hash = $1`, hash)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by hash: %w", err)
	}
	return a, nil
}

// List returns assets newest first.
func (s *AssetStore) List(limit, offset int) ([]models.Asset, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	rows, err := s.db.Query(`
		SELECT `+assetColumns+`
		FROM assets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var items []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// UpdateAlt sets the alt text of an asset.
func (s *AssetStore) UpdateAlt(id uuid.UUID, alt string) error {
	res, err := s.db.Exec(`UPDATE assets SET alt_text = $1 WHERE id = $2`, alt, id)
	if err != nil {
		return fmt.Errorf("update asset alt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an asset record and returns it so the caller can remove
// the stored object. Returns nil if the asset did not exist.
func (s *AssetStore) Delete(id uuid.UUID) (*models.Asset, error) {
	row := s.db.QueryRow(`DELETE FROM assets WHERE id = $1 RETURNING `+assetColumns, id)
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete asset: %w", err)
	}
	return a, nil
}
