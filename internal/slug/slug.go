// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for post titles and
// tag names, plus collision handling against existing slugs.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLength is the longest slug Generate returns.
const MaxLength = 120

// Fallback is used when a title produces an empty slug.
const Fallback = "untitled"

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, whitespace or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace matches runs of spaces, tabs and newlines.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid matches a well-formed slug.
	valid = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}

// Unique returns base, or base with the smallest numeric suffix ("-2",
// "-3", ...) for which exists reports false. An empty base becomes
// Fallback.
func Unique(base string, exists func(string) (bool, error)) (string, error) {
	if base == "" {
		base = Fallback
	}
	candidate := base
	for i := 2; i < 1000; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", fmt.Errorf("slug check %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug %q: no free suffix", base)
}
