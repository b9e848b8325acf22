// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"mailcraft/internal/models"
	"mailcraft/internal/placeholder"
	"mailcraft/internal/slug"
)

// Validation limits for posts, themes and tags.
const (
	maxTitleLen       = 300
	maxSubjectLen     = 300
	maxPreheaderLen   = 300
	maxBodyLen        = 500_000
	maxVariables      = 200
	maxVariableLen    = 2_000
	maxThemeNameLen   = 200
	maxStylePromptLen = 4_000
	maxFontLen        = 300
	maxTagNameLen     = 100
	maxAltLen         = 500
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validatePost checks a post before it is saved and returns the first
// problem found, or "".
func validatePost(p *models.Post) string {
	if strings.TrimSpace(p.Title) == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return fmt.Sprintf("title is too long (max %d characters)", maxTitleLen)
	}
	if p.Slug != "" && !slug.Valid(p.Slug) {
		return "slug may only contain lowercase letters, digits and hyphens"
	}
	if utf8.RuneCountInString(p.Subject) > maxSubjectLen {
		return fmt.Sprintf("subject is too long (max %d characters)", maxSubjectLen)
	}
	if utf8.RuneCountInString(p.Preheader) > maxPreheaderLen {
		return fmt.Sprintf("preheader is too long (max %d characters)", maxPreheaderLen)
	}
	if !models.ValidKind(p.Kind) {
		return "kind must be email or blog"
	}
	if !models.ValidFormat(p.Format) {
		return "format must be html, blocks or markdown"
	}
	if p.Kind == models.PostKindEmail && p.Format == models.PostFormatMarkdown {
		return "emails are written as html or blocks"
	}
	if !models.ValidStatus(p.Status) {
		return "status must be draft, ready or published"
	}
	if len(p.HTMLContent) > maxBodyLen {
		return "content is too long"
	}
	return validateValues(p.VariableValues)
}

// validateValues checks a variable value map.
func validateValues(values map[string]string) string {
	if len(values) > maxVariables {
		return fmt.Sprintf("too many variable values (max %d)", maxVariables)
	}
	for name, v := range values {
		if !placeholder.IsToken(placeholder.Token(name)) {
			return fmt.Sprintf("invalid variable name %q", name)
		}
		if len(v) > maxVariableLen {
			return fmt.Sprintf("value of %s is too long", name)
		}
	}
	return placeholder.CheckValues(values)
}

// validateTheme checks a theme and returns the first problem found.
func validateTheme(t *models.Theme) string {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "theme name is required"
	}
	if utf8.RuneCountInString(name) > maxThemeNameLen {
		return fmt.Sprintf("theme name is too long (max %d characters)", maxThemeNameLen)
	}
	if utf8.RuneCountInString(t.StylePrompt) > maxStylePromptLen {
		return fmt.Sprintf("style prompt is too long (max %d characters)", maxStylePromptLen)
	}
	if len(t.FontFamily) > maxFontLen {
		return "font family is too long"
	}
	for k, v := range t.Palette {
		if strings.TrimSpace(k) == "" {
			return "palette colour names must not be empty"
		}
		if !hexColor.MatchString(v) {
			return fmt.Sprintf("palette colour %s must be a hex colour like #0f766e", k)
		}
	}
	return ""
}

// validateTagName checks a tag name.
func validateTagName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "tag name is required"
	}
	if utf8.RuneCountInString(name) > maxTagNameLen {
		return fmt.Sprintf("tag name is too long (max %d characters)", maxTagNameLen)
	}
	return ""
}
