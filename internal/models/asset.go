// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetSource records how an asset entered the library.
type AssetSource string

const (
	AssetSourceUpload AssetSource = "upload"
	AssetSourceAI     AssetSource = "ai"
	AssetSourceQR     AssetSource = "qr"
)

// Asset is a file stored in object storage. Content is addressed by its
// hash, so uploading the same bytes twice yields the same asset.
type Asset struct {
	ID           uuid.UUID   `json:"id"`
	Hash         string      `json:"hash"`
	OriginalName string      `json:"original_name"`
	ContentType  string      `json:"content_type"`
	SizeBytes    int64       `json:"size_bytes"`
	Width        int         `json:"width,omitempty"`
	Height       int         `json:"height,omitempty"`
	S3Key        string      `json:"s3_key"`
	URL          string      `json:"url"`
	AltText      string      `json:"alt_text"`
	Source       AssetSource `json:"source"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IsImage returns true if the asset is an image type.
func (a *Asset) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

// HumanSize returns a human-readable file size string.
func (a *Asset) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case a.SizeBytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(a.SizeBytes)/float64(mb))
	case a.SizeBytes >= kb:
		return fmt.Sprintf("%.0f KB", float64(a.SizeBytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", a.SizeBytes)
	}
}
