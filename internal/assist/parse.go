// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assist

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"mailcraft/internal/blocks"
)

// ErrNoDesign is returned when a model reply holds no block array.
var ErrNoDesign = errors.New("assist: no block array in response")

// fence matches a Markdown code fence with an optional language tag.
var fence = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*\\s*\n(.*?)\n?```")

// StripFences returns the body of the first fenced code block in s, or s
// trimmed when it contains no fence.
func StripFences(s string) string {
	if m := fence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// ExtractHTML returns the HTML document in a model reply, dropping code
// fences and any chatter before the first tag.
func ExtractHTML(s string) string {
	s = StripFences(s)
	if i := strings.Index(s, "<"); i > 0 {
		s = s[i:]
	}
	if i := strings.LastIndex(s, ">"); i >= 0 && i < len(s)-1 {
		s = s[:i+1]
	}
	return s
}

// locateArray finds the JSON array of blocks in s: a bare array, an object
// with a "blocks" (or "design") array, or the outermost [...] span.
func locateArray(s string) (gjson.Result, bool) {
	if gjson.Valid(s) {
		r := gjson.Parse(s)
		if r.IsArray() {
			return r, true
		}
		for _, path := range []string{"blocks", "design", "design.blocks"} {
			if v := r.Get(path); v.IsArray() {
				return v, true
			}
		}
	}
	i, j := strings.IndexByte(s, '['), strings.LastIndexByte(s, ']')
	if i >= 0 && j > i && gjson.Valid(s[i:j+1]) {
		return gjson.Parse(s[i : j+1]), true
	}
	return gjson.Result{}, false
}

// ParseDesign decodes a block design from a model reply. Blocks of unknown
// type are skipped and reported in warnings; missing or duplicate ids are
// replaced.
func ParseDesign(reply string) (blocks.Design, []string, error) {
	arr, ok := locateArray(StripFences(reply))
	if !ok {
		return nil, nil, ErrNoDesign
	}

	var (
		d        blocks.Design
		warnings []string
		decErr   error
	)
	arr.ForEach(func(key, value gjson.Result) bool {
		var b blocks.Block
		if err := json.Unmarshal([]byte(value.Raw), &b); err != nil {
			if errors.Is(err, blocks.ErrUnknownType) {
				warnings = append(warnings, fmt.Sprintf("skipped block %d: unknown type %q", key.Int(), value.Get("type").String()))
				return true
			}
			decErr = fmt.Errorf("block %d: %w", key.Int(), err)
			return false
		}
		d = append(d, b)
		return true
	})
	if decErr != nil {
		return nil, nil, decErr
	}
	return blocks.Normalize(d), warnings, nil
}

// numbered strips list markers such as "1. ", "2) ", "- " and "* ".
var numbered = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)

// ParseList extracts items from a numbered or bulleted list, one per line.
// A JSON array of strings is accepted too.
func ParseList(reply string) []string {
	s := StripFences(reply)
	if r := gjson.Parse(s); gjson.Valid(s) && r.IsArray() {
		var items []string
		for _, v := range r.Array() {
			if t := strings.TrimSpace(v.String()); t != "" {
				items = append(items, t)
			}
		}
		return items
	}

	var items []string
	for _, line := range strings.Split(s, "\n") {
		line = numbered.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(strings.Trim(line, `"'`))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// truncate shortens s to at most n bytes, appending "..." when cut. The
// cut backs up to a rune boundary so the result stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
