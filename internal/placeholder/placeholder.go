// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package placeholder implements the {{name}} variable contract shared by
// the HTML editor, the block compiler and the asset loader: scanning a
// document for variable names and substituting values into it.
//
// A token is "{{" followed by one or more word characters followed by "}}".
// There are no filters, expressions or whitespace inside a token. Anything
// else that looks similar is ordinary text and passes through untouched.
package placeholder

import (
	"regexp"
	"strings"
)

// tokenRe is the single source of the token grammar. Extract and Render
// both use it so they can never disagree on what a variable is.
var tokenRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Extract returns the distinct variable names referenced in doc, in the
// order of their first occurrence.
//
// Example: Extract("<img src='{{hero_src}}'><a href='{{hero_link_url}}'>")
// → ["hero_src", "hero_link_url"]
func Extract(doc string) []string {
	matches := tokenRe.FindAllStringSubmatch(doc, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Render substitutes values into every {{name}} token of doc. Tokens whose
// name has no entry in values are left in place unchanged, so callers can
// detect what still needs a value by scanning the output again.
//
// Values are inserted verbatim. No HTML escaping is applied: mailcraft is
// an authoring tool and values may legitimately carry markup.
func Render(doc string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(doc, "{{") {
		return doc
	}
	return tokenRe.ReplaceAllStringFunc(doc, func(token string) string {
		// token is "{{name}}"; strip the braces without a second regex pass.
		name := token[2 : len(token)-2]
		if v, ok := values[name]; ok {
			return v
		}
		return token
	})
}

// Unresolved returns the variable names still present in an already
// rendered document.
func Unresolved(rendered string) []string {
	return Extract(rendered)
}

// HasUnresolved reports whether rendered still contains any token.
func HasUnresolved(rendered string) bool {
	return tokenRe.MatchString(rendered)
}

// Token wraps name in braces, producing the literal placeholder.
func Token(name string) string {
	return "{{" + name + "}}"
}

// IsToken reports whether s consists of exactly one placeholder token.
func IsToken(s string) bool {
	loc := tokenRe.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// Missing returns the names referenced by doc that have no entry in values,
// in first-occurrence order.
func Missing(doc string, values map[string]string) []string {
	var out []string
	for _, name := range Extract(doc) {
		if _, ok := values[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
