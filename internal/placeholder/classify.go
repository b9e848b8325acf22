// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package placeholder

import (
	"sort"
	"strings"
)

// Kind is how the asset loader treats a variable, derived purely from its
// name.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindLink  Kind = "link"
	KindFit   Kind = "fit"
)

// rule is one predicate→kind pair. Rules are evaluated top to bottom and
// the first match wins.
type rule struct {
	kind  Kind
	match func(name string) bool
}

var imageSuffixes = []string{"_src", "_bg", "_logo", "_icon", "_img"}

// rules order matters: "hero_link_url" contains "url" and would otherwise
// be classified as an image.
var rules = []rule{
	{KindFit, func(n string) bool { return strings.HasSuffix(n, "_fit") }},
	{KindLink, func(n string) bool {
		return strings.HasSuffix(n, "_link_url") || strings.Contains(n, "link_url")
	}},
	{KindImage, func(n string) bool {
		for _, s := range imageSuffixes {
			if strings.HasSuffix(n, s) {
				return true
			}
		}
		return strings.Contains(n, "image") || strings.Contains(n, "url")
	}},
}

// Classify returns the kind of a variable by naming convention. Matching is
// case-sensitive, so names must be preserved exactly as authored.
func Classify(name string) Kind {
	for _, r := range rules {
		if r.match(name) {
			return r.kind
		}
	}
	return KindText
}

// FitModes lists the accepted values for a KindFit variable, in the order
// the asset loader offers them.
var FitModes = []string{"cover", "contain", "fill", "scale-down"}

// ValidFit reports whether v is an accepted object-fit token.
func ValidFit(v string) bool {
	for _, m := range FitModes {
		if v == m {
			return true
		}
	}
	return false
}

// Variable is one entry of the asset loader's view of a document.
type Variable struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Value    string `json:"value"`
	Resolved bool   `json:"resolved"`
}

// Describe lists every variable in doc with its kind and current value.
// A variable is resolved when values has an entry for it, even an empty one.
func Describe(doc string, values map[string]string) []Variable {
	names := Extract(doc)
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		v, ok := values[name]
		vars = append(vars, Variable{
			Name:     name,
			Kind:     Classify(name),
			Value:    v,
			Resolved: ok,
		})
	}
	return vars
}

// CheckValues returns a message for the first value that does not fit its
// variable's kind, or "" when all values are acceptable. Only fit values
// have a closed vocabulary; everything else is free-form.
func CheckValues(values map[string]string) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := values[name]
		if Classify(name) == KindFit && v != "" && !ValidFit(v) {
			return name + " must be one of: " + strings.Join(FitModes, ", ")
		}
	}
	return ""
}
