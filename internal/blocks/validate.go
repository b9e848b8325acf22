// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"

	"mailcraft/internal/placeholder"
)

// MaxBlocks caps the size of a single design.
const MaxBlocks = 200

// ValidationError lists every problem found in a design.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid design: " + strings.Join(e.Problems, "; ")
}

// Validate checks a design before it is saved. The compiler tolerates
// everything Validate rejects; this exists to give authors feedback.
func Validate(d Design) error {
	var problems []string
	add := func(i int, format string, args ...any) {
		problems = append(problems, fmt.Sprintf("block %d: ", i)+fmt.Sprintf(format, args...))
	}

	if len(d) > MaxBlocks {
		problems = append(problems, fmt.Sprintf("too many blocks (max %d)", MaxBlocks))
	}

	seen := make(map[string]struct{}, len(d))
	for i, b := range d {
		if b.ID == "" {
			add(i, "missing id")
		} else if _, dup := seen[b.ID]; dup {
			add(i, "duplicate id %q", b.ID)
		}
		seen[b.ID] = struct{}{}

		switch p := b.Props.(type) {
		case nil:
			add(i, "missing props")
		case HeadingProps:
			if _, ok := headingSizes[p.Level]; !ok {
				add(i, "heading level must be h1, h2 or h3")
			}
			checkColor(add, i, "color", p.Color)
		case TextProps:
			checkColor(add, i, "color", p.Color)
			if p.FontSize <= 0 {
				add(i, "fontSize must be positive")
			}
		case ImageProps:
			checkLink(add, i, "src", p.Src)
			checkLink(add, i, "linkUrl", p.LinkURL)
			if p.Width <= 0 || p.Width > ContainerWidth {
				add(i, "width must be between 1 and %d", ContainerWidth)
			}
		case ButtonProps:
			checkLink(add, i, "url", p.URL)
			checkColor(add, i, "bgColor", p.BgColor)
			checkColor(add, i, "textColor", p.TextColor)
			if p.BorderRadius < 0 || p.PaddingX < 0 || p.PaddingY < 0 {
				add(i, "button spacing must not be negative")
			}
		case DividerProps:
			checkColor(add, i, "color", p.Color)
			if p.WidthPercent < 0 || p.WidthPercent > 100 {
				add(i, "widthPercent must be between 0 and 100")
			}
			if p.Thickness <= 0 {
				add(i, "thickness must be positive")
			}
		case SpacerProps:
			if p.Height < 0 {
				add(i, "height must not be negative")
			}
		case SocialProps:
			for _, n := range p.Networks {
				checkLink(add, i, n.Platform+" url", n.URL)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// checkColor accepts hex colours, a single placeholder token and empty
// strings. The compiler keeps nothing else.
func checkColor(add func(int, string, ...any), i int, field, v string) {
	if v == "" || placeholder.IsToken(v) {
		return
	}
	if !strings.HasPrefix(v, "#") || !govalidator.IsHexcolor(v) {
		add(i, "%s %q is not a hex colour", field, v)
	}
}

// checkLink accepts absolute URLs, mailto/tel links, anchors, placeholders
// and empty strings.
func checkLink(add func(int, string, ...any), i int, field, v string) {
	if v == "" || v == "#" || placeholder.HasUnresolved(v) {
		return
	}
	if strings.HasPrefix(v, "mailto:") || strings.HasPrefix(v, "tel:") {
		return
	}
	if !govalidator.IsRequestURL(v) {
		add(i, "%s %q is not a valid URL", field, v)
	}
}
