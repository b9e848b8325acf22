// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package blocks models the drag-and-drop email designer: an ordered list
// of typed blocks (heading, text, image, button, divider, spacer, social)
// and a pure compiler that turns that list into a single email-safe HTML
// document.
//
// The compiled document still contains {{name}} placeholders wherever the
// author (or the AI) used them; substitution happens afterwards in the
// placeholder package.
package blocks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Type identifies the kind of a block. It is derived from the concrete
// props value so a block can never change type after creation.
type Type string

const (
	TypeHeading Type = "heading"
	TypeText    Type = "text"
	TypeImage   Type = "image"
	TypeButton  Type = "button"
	TypeDivider Type = "divider"
	TypeSpacer  Type = "spacer"
	TypeSocial  Type = "social"
)

// Types lists every block type in palette order.
var Types = []Type{TypeHeading, TypeText, TypeImage, TypeButton, TypeDivider, TypeSpacer, TypeSocial}

// Valid reports whether t is a known block type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

var (
	// ErrUnknownType is returned when decoding or creating a block of an
	// unrecognised type.
	ErrUnknownType = errors.New("unknown block type")
	// ErrNotFound is returned by design operations that reference a block
	// id absent from the design.
	ErrNotFound = errors.New("block not found")
	// ErrTypeMismatch is returned when new props do not belong to the
	// block's type.
	ErrTypeMismatch = errors.New("props do not match block type")
)

// Props is the type-specific attribute record of a block. The interface is
// sealed: only the props structs in this package implement it.
type Props interface {
	blockType() Type
}

// Alignment is the horizontal placement of a block's content.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Block is one renderable unit of an email design.
type Block struct {
	ID    string
	Props Props
}

// Type returns the block's type, or "" for a block without props.
func (b Block) Type() Type {
	if b.Props == nil {
		return ""
	}
	return b.Props.blockType()
}

// Design is an ordered list of blocks. Order defines vertical placement in
// the compiled document.
type Design []Block

// HeadingProps renders a single h1, h2 or h3.
type HeadingProps struct {
	Text       string    `json:"text"`
	Level      string    `json:"level"`
	Alignment  Alignment `json:"alignment"`
	Color      string    `json:"color"`
	FontFamily string    `json:"fontFamily"`
}

// TextProps renders a paragraph. Newlines in Text become line breaks.
type TextProps struct {
	Text       string    `json:"text"`
	Alignment  Alignment `json:"alignment"`
	Color      string    `json:"color"`
	FontSize   int       `json:"fontSize"`
	LineHeight float64   `json:"lineHeight"`
}

// ImageProps renders an image, optionally wrapped in a link. Src and
// LinkURL may be literal URLs or {{name}} placeholders.
type ImageProps struct {
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	Width     int       `json:"width"`
	Height    Dimension `json:"height"`
	LinkURL   string    `json:"linkUrl"`
	Alignment Alignment `json:"alignment"`
}

// ButtonProps renders a link styled as a button.
type ButtonProps struct {
	Text         string    `json:"text"`
	URL          string    `json:"url"`
	BgColor      string    `json:"bgColor"`
	TextColor    string    `json:"textColor"`
	BorderRadius int       `json:"borderRadius"`
	FullWidth    bool      `json:"fullWidth"`
	FontSize     int       `json:"fontSize"`
	PaddingX     int       `json:"paddingX"`
	PaddingY     int       `json:"paddingY"`
	Alignment    Alignment `json:"alignment"`
}

// DividerProps renders a horizontal rule.
type DividerProps struct {
	Color        string `json:"color"`
	Thickness    int    `json:"thickness"`
	WidthPercent int    `json:"widthPercent"`
	Style        string `json:"style"`
}

// SpacerProps renders empty vertical space.
type SpacerProps struct {
	Height int `json:"height"`
}

// SocialProps renders a row of circular badges linking to social profiles.
type SocialProps struct {
	Networks  []Network `json:"networks"`
	Alignment Alignment `json:"alignment"`
	IconSize  int       `json:"iconSize"`
}

// Network is one social profile link.
type Network struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

func (HeadingProps) blockType() Type { return TypeHeading }
func (TextProps) blockType() Type    { return TypeText }
func (ImageProps) blockType() Type   { return TypeImage }
func (ButtonProps) blockType() Type  { return TypeButton }
func (DividerProps) blockType() Type { return TypeDivider }
func (SpacerProps) blockType() Type  { return TypeSpacer }
func (SocialProps) blockType() Type  { return TypeSocial }

// Dimension is an image height: either "auto" or a pixel value.
type Dimension struct {
	Auto bool
	Px   int
}

// Auto is the "auto" dimension.
func Auto() Dimension { return Dimension{Auto: true} }

// Px is a fixed pixel dimension.
func Px(n int) Dimension { return Dimension{Px: n} }

// IsAuto reports whether the dimension should be left to the browser. A
// non-positive pixel value is treated as auto.
func (d Dimension) IsAuto() bool {
	return d.Auto || d.Px <= 0
}

// MarshalJSON encodes "auto" as a string and pixel values as numbers.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.IsAuto() {
		return []byte(`"auto"`), nil
	}
	return []byte(strconv.Itoa(d.Px)), nil
}

// UnmarshalJSON accepts "auto", a number, or a numeric string such as
// "240" or "240px" (common in AI output).
func (d *Dimension) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" || strings.EqualFold(s, "auto") {
		*d = Auto()
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid dimension %s", data)
	}
	*d = Px(int(f))
	return nil
}
