// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package placeholder

import (
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"empty", "", []string{}},
		{"no tokens", "<p>hello</p>", []string{}},
		{"image and link", "<img src='{{hero_src}}'><a href='{{hero_link_url}}'>", []string{"hero_src", "hero_link_url"}},
		{"duplicates keep first position", "{{b}} {{a}} {{b}} {{a}} {{c}}", []string{"b", "a", "c"}},
		{"case preserved", "{{Title}} {{title}}", []string{"Title", "title"}},
		{"digits and underscores", "{{cta_2}} {{_x}}", []string{"cta_2", "_x"}},
		{"whitespace inside is ignored", "{{ name }}", []string{}},
		{"non-word inside is ignored", "{{first-name}} {{a.b}}", []string{}},
		{"empty braces", "{{}}", []string{}},
		{"triple braces match inner token", "{{{name}}}", []string{"name"}},
		{"unclosed", "{{name} {{other", []string{}},
		{"json document", `[{"props":{"src":"{{logo_src}}","text":"Hi {{first_name}}"}}]`, []string{"logo_src", "first_name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.doc, got, tt.want)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := "{{a}}{{b}}{{a}}<img src='{{c_src}}'>"
	first := Extract(doc)
	for i := 0; i < 5; i++ {
		if got := Extract(doc); !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d: Extract = %v, want %v", i, got, first)
		}
	}
}

func TestExtract_Concurrent(t *testing.T) {
	doc := strings.Repeat("{{x}} {{y}} ", 100)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Extract(doc); len(got) != 2 {
				t.Errorf("Extract len = %d, want 2", len(got))
			}
		}()
	}
	wg.Wait()
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		values map[string]string
		want   string
	}{
		{"simple", "<h1>{{title}}</h1>", map[string]string{"title": "Hello"}, "<h1>Hello</h1>"},
		{"repeated and missing", "{{a}} {{a}} {{b}}", map[string]string{"a": "X"}, "X X {{b}}"},
		{"nil map", "{{a}}", nil, "{{a}}"},
		{"empty value still resolves", "[{{a}}]", map[string]string{"a": ""}, "[]"},
		{"no html escaping", "{{body}}", map[string]string{"body": "<b>&</b>"}, "<b>&</b>"},
		{"value containing a token is not re-expanded", "{{a}}", map[string]string{"a": "{{b}}", "b": "nope"}, "{{b}}"},
		{"malformed tokens untouched", "{{ a }} {{a-b}}", map[string]string{"a": "X", "a-b": "Y"}, "{{ a }} {{a-b}}"},
		{"case sensitive", "{{Name}}", map[string]string{"name": "x"}, "{{Name}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.doc, tt.values); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestRender_RoundTrip checks that supplying a value for every extracted
// name leaves no tokens behind.
func TestRender_RoundTrip(t *testing.T) {
	docs := []string{
		"<img src='{{hero_src}}' style='object-fit:{{hero_fit}}'><a href='{{hero_link_url}}'>{{cta}}</a>",
		"{{a}}{{a}}{{b}}",
		"plain",
	}
	for _, doc := range docs {
		values := map[string]string{}
		for _, name := range Extract(doc) {
			values[name] = "v_" + name
		}
		out := Render(doc, values)
		if HasUnresolved(out) {
			t.Errorf("Render(%q) left tokens: %q", doc, out)
		}
		if len(Unresolved(out)) != 0 {
			t.Errorf("Unresolved(%q) = %v, want none", out, Unresolved(out))
		}
	}
}

func TestMissing(t *testing.T) {
	got := Missing("{{a}} {{b}} {{c}} {{b}}", map[string]string{"b": "1"})
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing = %v, want %v", got, want)
	}
}

func TestIsToken(t *testing.T) {
	tests := map[string]bool{
		"{{hero_src}}":         true,
		"https://x/y.png":      false,
		"{{a}}{{b}}":           false,
		" {{a}}":               false,
		"prefix-{{a}}":         false,
		"":                     false,
		Token("generated_name"): true,
	}
	for in, want := range tests {
		if got := IsToken(in); got != want {
			t.Errorf("IsToken(%q) = %v, want %v", in, got, want)
		}
	}
}
