// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"

	"mailcraft/internal/placeholder"
)

// Options tweak compilation for a specific consumer.
type Options struct {
	// Preview renders a visible placeholder box for images whose src is
	// still a {{name}} token (or empty), instead of an <img> pointing at
	// the raw token. Used by the editor's live preview.
	Preview bool
}

// The document shell is fixed: no tables, inline styles only, and a
// single centred container capped at ContainerWidth.
const (
	shellStart = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="x-apple-disable-message-reformatting">
<title></title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f5;">
<div style="max-width:600px;margin:0 auto;background-color:#ffffff;font-family:Arial, Helvetica, sans-serif;">
`
	shellEnd = `</div>
</body>
</html>
`
)

// headingSizes is the fixed font-size table per heading level.
var headingSizes = map[string]int{
	"h1": 32,
	"h2": 26,
	"h3": 20,
}

// socialColors maps each known platform to its brand colour. Unknown
// platforms fall back to NeutralColor.
var socialColors = map[string]string{
	"facebook":  "#1877f2",
	"twitter":   "#000000",
	"instagram": "#e4405f",
	"linkedin":  "#0a66c2",
	"youtube":   "#ff0000",
	"tiktok":    "#010101",
}

// socialLabels is the short glyph drawn inside each badge.
var socialLabels = map[string]string{
	"facebook":  "f",
	"twitter":   "X",
	"instagram": "IG",
	"linkedin":  "in",
	"youtube":   "YT",
	"tiktok":    "TT",
}

// Platforms lists the known social platforms.
var Platforms = []string{"facebook", "twitter", "instagram", "linkedin", "youtube", "tiktok"}

// Compile turns a design into a complete HTML email. It is a pure function
// of its input and never fails: unusable props fall back to defaults.
func Compile(d Design) string {
	return CompileWith(d, Options{})
}

// CompileWith is Compile with explicit options.
func CompileWith(d Design, opts Options) string {
	var b strings.Builder
	b.WriteString(shellStart)
	for _, blk := range d {
		writeBlock(&b, blk, opts)
	}
	b.WriteString(shellEnd)
	return b.String()
}

// CompileBody returns only the concatenated block fragments, without the
// document shell. Used when embedding a design inside another page.
func CompileBody(d Design, opts Options) string {
	var b strings.Builder
	for _, blk := range d {
		writeBlock(&b, blk, opts)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, blk Block, opts Options) {
	switch p := blk.Props.(type) {
	case HeadingProps:
		writeHeading(b, p)
	case TextProps:
		writeText(b, p)
	case ImageProps:
		writeImage(b, p, opts)
	case ButtonProps:
		writeButton(b, p)
	case DividerProps:
		writeDivider(b, p)
	case SpacerProps:
		writeSpacer(b, p)
	case SocialProps:
		writeSocial(b, p)
	}
}

func writeHeading(b *strings.Builder, p HeadingProps) {
	level := p.Level
	size, ok := headingSizes[level]
	if !ok {
		level, size = "h2", headingSizes["h2"]
	}
	b.WriteString("<" + level + ` style="margin:0;padding:12px 24px;font-size:` + px(size) +
		";line-height:1.25;font-weight:700;color:" + color(p.Color, DefaultHeadColor) +
		";font-family:" + fontFamily(p.FontFamily) +
		";text-align:" + string(align(p.Alignment)) + `;">`)
	b.WriteString(p.Text)
	b.WriteString("</" + level + ">\n")
}

func writeText(b *strings.Builder, p TextProps) {
	size := clamp(p.FontSize, 8, 72, 16)
	lh := p.LineHeight
	if lh <= 0 || lh > 4 {
		lh = 1.6
	}
	b.WriteString(`<div style="padding:8px 24px;font-size:` + px(size) +
		";line-height:" + strconv.FormatFloat(lh, 'f', -1, 64) +
		";color:" + color(p.Color, DefaultTextColor) +
		";text-align:" + string(align(p.Alignment)) + `;">`)
	text := strings.ReplaceAll(p.Text, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(text, "\n", "<br>"))
	b.WriteString("</div>\n")
}

func writeImage(b *strings.Builder, p ImageProps, opts Options) {
	width := clamp(p.Width, 1, ContainerWidth, ContainerWidth)
	margin := marginFor(align(p.Alignment))
	pending := p.Src == "" || placeholder.HasUnresolved(p.Src)

	b.WriteString(`<div style="padding:8px 0;">`)
	switch {
	case pending && opts.Preview:
		height := 200
		if !p.Height.IsAuto() {
			height = p.Height.Px
		}
		label := "Image"
		if p.Src != "" {
			label = p.Src
		}
		b.WriteString(`<div style="width:` + px(width) + ";max-width:100%;height:" + px(height) +
			";line-height:" + px(height) + ";margin:" + margin +
			`;background-color:#f3f4f6;border:2px dashed #d1d5db;box-sizing:border-box;color:` + NeutralColor +
			`;font-size:14px;text-align:center;overflow:hidden;">` + html.EscapeString(label) + "</div>")
	case p.Src == "":
		// Nothing to show in a sent email.
	default:
		img := `<img src="` + attr(p.Src) + `" alt="` + attr(p.Alt) + `" width="` + strconv.Itoa(width) + `"`
		style := "display:block;max-width:100%;border:0;margin:" + margin
		if p.Height.IsAuto() {
			style += ";height:auto"
		} else {
			img += ` height="` + strconv.Itoa(p.Height.Px) + `"`
			style += ";height:" + px(p.Height.Px)
		}
		img += ` style="` + style + `;">`
		if p.LinkURL != "" {
			img = `<a href="` + attr(p.LinkURL) + `" target="_blank" style="text-decoration:none;">` + img + "</a>"
		}
		b.WriteString(img)
	}
	b.WriteString("</div>\n")
}

func writeButton(b *strings.Builder, p ButtonProps) {
	padX := clamp(p.PaddingX, 0, 96, 24)
	padY := clamp(p.PaddingY, 0, 64, 12)
	style := "background-color:" + color(p.BgColor, "#111827") +
		";color:" + color(p.TextColor, "#ffffff") +
		";font-size:" + px(clamp(p.FontSize, 8, 48, 16)) +
		";font-weight:600;line-height:1.2;text-decoration:none" +
		";padding:" + px(padY) + " " + px(padX) +
		";border-radius:" + px(clamp(p.BorderRadius, 0, 999, 0))
	if p.FullWidth {
		style = "display:block;width:100%;box-sizing:border-box;text-align:center;" + style
	} else {
		style = "display:inline-block;" + style
	}
	href := p.URL
	if href == "" {
		href = "#"
	}
	b.WriteString(`<div style="padding:12px 24px;text-align:` + string(align(p.Alignment)) + `;">`)
	b.WriteString(`<a href="` + attr(href) + `" target="_blank" style="` + style + `;">` + p.Text + "</a>")
	b.WriteString("</div>\n")
}

func writeDivider(b *strings.Builder, p DividerProps) {
	style := p.Style
	switch style {
	case "solid", "dashed", "dotted":
	default:
		style = "solid"
	}
	b.WriteString(`<div style="padding:8px 24px;">`)
	b.WriteString(`<hr style="width:` + strconv.Itoa(clamp(p.WidthPercent, 0, 100, 100)) +
		"%;margin:0 auto;border:0;border-top:" + px(clamp(p.Thickness, 1, 20, 1)) + " " + style + " " +
		color(p.Color, "#e5e7eb") + `;height:0;">`)
	b.WriteString("</div>\n")
}

func writeSpacer(b *strings.Builder, p SpacerProps) {
	h := p.Height
	if h < 0 {
		h = 0
	}
	b.WriteString(`<div style="height:` + px(h) + ";line-height:" + px(h) + `;font-size:0;" aria-hidden="true"></div>` + "\n")
}

func writeSocial(b *strings.Builder, p SocialProps) {
	size := clamp(p.IconSize, 16, 64, 32)
	fontSize := size * 2 / 5
	b.WriteString(`<div style="padding:12px 24px;text-align:` + string(align(p.Alignment)) + `;">`)
	for _, n := range p.Networks {
		platform := strings.ToLower(strings.TrimSpace(n.Platform))
		bg, ok := socialColors[platform]
		if !ok {
			bg = NeutralColor
		}
		label, ok := socialLabels[platform]
		if !ok {
			label = "?"
			if r, _ := utf8.DecodeRuneInString(platform); r != utf8.RuneError {
				label = strings.ToUpper(string(r))
			}
		}
		style := "display:inline-block;width:" + px(size) + ";height:" + px(size) +
			";line-height:" + px(size) + ";border-radius:50%;background-color:" + bg +
			";color:#ffffff;font-size:" + px(fontSize) +
			";font-weight:700;text-align:center;text-decoration:none;margin:0 4px;"
		if n.URL == "" {
			b.WriteString(`<span title="` + attr(n.Platform) + `" style="` + style + `">` + html.EscapeString(label) + "</span>")
			continue
		}
		b.WriteString(`<a href="` + attr(n.URL) + `" target="_blank" title="` + attr(n.Platform) +
			`" style="` + style + `">` + html.EscapeString(label) + "</a>")
	}
	b.WriteString("</div>\n")
}

// align returns a, or center for unknown values.
func align(a Alignment) Alignment {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
		return a
	}
	return AlignCenter
}

// marginFor positions a block-level element of fixed width inside the
// container.
func marginFor(a Alignment) string {
	switch a {
	case AlignLeft:
		return "0 auto 0 0"
	case AlignRight:
		return "0 0 0 auto"
	}
	return "0 auto"
}

// color returns c when it is a hex colour or a single {{name}} token,
// fallback otherwise. Tokens are kept so the variable stays visible to
// the extractor; Resolve substitutes them before the final compile.
func color(c, fallback string) string {
	if strings.HasPrefix(c, "#") && govalidator.IsHexcolor(c) {
		return c
	}
	if placeholder.IsToken(c) {
		return c
	}
	return fallback
}

// fontFamily strips characters that would break out of the style attribute.
func fontFamily(f string) string {
	f = strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"':
			return -1
		}
		return r
	}, f)
	f = strings.TrimSpace(f)
	if f == "" {
		return DefaultFontFamily
	}
	return html.EscapeString(f)
}

// clamp bounds v to [lo, hi]. Values below lo (including the zero value of
// an absent prop when lo > 0) fall back to def.
func clamp(v, lo, hi, def int) int {
	if v < lo {
		return def
	}
	if v > hi {
		return hi
	}
	return v
}

func px(n int) string {
	return strconv.Itoa(n) + "px"
}

// attr escapes an attribute value. Placeholder braces and word characters
// are unaffected, so tokens survive for the renderer.
func attr(s string) string {
	return html.EscapeString(s)
}
