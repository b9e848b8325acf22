// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"html"
	"slices"

	"mailcraft/internal/placeholder"
)

// Variables returns the placeholder names used by the compiled design, in
// document order.
func Variables(d Design) []string {
	return placeholder.Extract(Compile(d))
}

// Resolve substitutes values into every string prop of the design. The
// editor preview uses it before CompileWith so that resolved images show
// and only pending ones render as placeholder boxes.
func Resolve(d Design, values map[string]string) Design {
	if len(values) == 0 {
		return slices.Clone(d)
	}
	r := func(s string) string { return placeholder.Render(s, values) }
	// Attribute props are escaped by the compiler, so values that arrive
	// already escaped are decoded first to avoid escaping them twice.
	a := func(s string) string { return html.UnescapeString(r(s)) }
	out := make(Design, len(d))
	for i, b := range d {
		switch p := b.Props.(type) {
		case HeadingProps:
			p.Text, p.Color, p.FontFamily = r(p.Text), r(p.Color), r(p.FontFamily)
			b.Props = p
		case TextProps:
			p.Text, p.Color = r(p.Text), r(p.Color)
			b.Props = p
		case ImageProps:
			p.Src, p.Alt, p.LinkURL = a(p.Src), a(p.Alt), a(p.LinkURL)
			b.Props = p
		case ButtonProps:
			p.Text, p.URL, p.BgColor, p.TextColor = r(p.Text), a(p.URL), r(p.BgColor), r(p.TextColor)
			b.Props = p
		case DividerProps:
			p.Color = r(p.Color)
			b.Props = p
		case SocialProps:
			nets := make([]Network, len(p.Networks))
			for j, n := range p.Networks {
				nets[j] = Network{Platform: n.Platform, URL: a(n.URL)}
			}
			p.Networks = nets
			b.Props = p
		}
		out[i] = b
	}
	return out
}
