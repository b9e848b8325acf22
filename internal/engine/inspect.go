// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mailcraft/internal/placeholder"
)

// Ref is an image or link reference found in rendered HTML. Variable is
// set when the reference is still a bare {{token}}.
type Ref struct {
	URL      string `json:"url"`
	Label    string `json:"label"`
	Variable string `json:"variable,omitempty"`
}

// Inspection lists the external references of a document and the
// problems an email client would show.
type Inspection struct {
	Images   []Ref    `json:"images"`
	Links    []Ref    `json:"links"`
	Warnings []string `json:"warnings"`
}

// Inspect parses html and collects its images and links.
func Inspect(html string) (*Inspection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}

	in := &Inspection{Images: []Ref{}, Links: []Ref{}, Warnings: []string{}}

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		alt, hasAlt := s.Attr("alt")
		in.Images = append(in.Images, newRef(src, alt))
		switch {
		case src == "":
			in.Warnings = append(in.Warnings, fmt.Sprintf("image %d has no src", i+1))
		case !hasAlt || strings.TrimSpace(alt) == "":
			in.Warnings = append(in.Warnings, fmt.Sprintf("image %s has no alt text", src))
		}
	})

	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		text := strings.Join(strings.Fields(s.Text()), " ")
		in.Links = append(in.Links, newRef(href, text))
		if href == "" || href == "#" {
			in.Warnings = append(in.Warnings, fmt.Sprintf("link %d (%q) has no target", i+1, text))
		}
	})

	return in, nil
}

func newRef(url, label string) Ref {
	r := Ref{URL: url, Label: label}
	if placeholder.IsToken(url) {
		r.Variable = placeholder.Extract(url)[0]
	}
	return r
}
