// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"encoding/hex"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Hash returns the hex-encoded BLAKE2b-256 digest of data. It is the
// identity of an asset: equal bytes, equal hash.
func Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key returns the content-addressed object key for a hash and content
// type, fanned out by the first two hex characters:
// assets/ab/abcdef….png
func Key(hash, contentType string) string {
	prefix := "00"
	if len(hash) >= 2 {
		prefix = hash[:2]
	}
	return "assets/" + prefix + "/" + hash + Ext(contentType)
}

// allowedTypes maps accepted upload content types to file extensions.
var allowedTypes = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

// Ext returns the file extension for an allowed content type, or "" for
// anything else.
func Ext(contentType string) string {
	return allowedTypes[contentType]
}

// DetectType sniffs the content type of data. SVG is detected by prefix
// because http.DetectContentType reports it as text.
func DetectType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if ct == "text/xml" || ct == "text/plain" {
		head := strings.ToLower(strings.TrimSpace(string(data[:min(len(data), 512)])))
		if strings.HasPrefix(head, "<svg") || (strings.HasPrefix(head, "<?xml") && strings.Contains(head, "<svg")) {
			return "image/svg+xml"
		}
	}
	return ct
}

// Allowed reports whether contentType may be stored.
func Allowed(contentType string) bool {
	_, ok := allowedTypes[contentType]
	return ok
}
