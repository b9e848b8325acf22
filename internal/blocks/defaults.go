// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"fmt"

	"github.com/google/uuid"
)

// Defaults used by the compiler when a prop is missing or unusable.
const (
	DefaultFontFamily = "Arial, Helvetica, sans-serif"
	DefaultTextColor  = "#374151"
	DefaultHeadColor  = "#111827"
	NeutralColor      = "#6b7280"
	ContainerWidth    = 600
)

// defaults is the palette table: the props a freshly inserted block starts
// with. Every decoded block is overlaid on these values.
var defaults = map[Type]func() Props{
	TypeHeading: func() Props {
		return HeadingProps{
			Text:       "Your headline here",
			Level:      "h1",
			Alignment:  AlignCenter,
			Color:      DefaultHeadColor,
			FontFamily: DefaultFontFamily,
		}
	},
	TypeText: func() Props {
		return TextProps{
			Text:       "Write something your readers will love.",
			Alignment:  AlignLeft,
			Color:      DefaultTextColor,
			FontSize:   16,
			LineHeight: 1.6,
		}
	},
	TypeImage: func() Props {
		return ImageProps{
			Src:       "",
			Alt:       "",
			Width:     ContainerWidth,
			Height:    Auto(),
			Alignment: AlignCenter,
		}
	},
	TypeButton: func() Props {
		return ButtonProps{
			Text:         "Shop now",
			URL:          "#",
			BgColor:      "#111827",
			TextColor:    "#ffffff",
			BorderRadius: 6,
			FontSize:     16,
			PaddingX:     24,
			PaddingY:     12,
			Alignment:    AlignCenter,
		}
	},
	TypeDivider: func() Props {
		return DividerProps{
			Color:        "#e5e7eb",
			Thickness:    1,
			WidthPercent: 100,
			Style:        "solid",
		}
	},
	TypeSpacer: func() Props {
		return SpacerProps{Height: 24}
	},
	TypeSocial: func() Props {
		return SocialProps{
			Networks: []Network{
				{Platform: "facebook", URL: "https://facebook.com/"},
				{Platform: "instagram", URL: "https://instagram.com/"},
				{Platform: "twitter", URL: "https://x.com/"},
			},
			Alignment: AlignCenter,
			IconSize:  32,
		}
	},
}

// Defaults returns the default props for t.
func Defaults(t Type) (Props, error) {
	fn, ok := defaults[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return fn(), nil
}

// New creates a block of type t with default props and a fresh id.
func New(t Type) (Block, error) {
	p, err := Defaults(t)
	if err != nil {
		return Block{}, err
	}
	return Block{ID: NewID(), Props: p}, nil
}

// NewID returns a fresh block id.
func NewID() string {
	return uuid.NewString()
}
