// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func ids(d Design) string {
	var s []string
	for _, b := range d {
		s = append(s, b.ID)
	}
	return strings.Join(s, ",")
}

func abc() Design {
	return Design{
		{ID: "a", Props: SpacerProps{Height: 1}},
		{ID: "b", Props: SpacerProps{Height: 2}},
		{ID: "c", Props: TextProps{Text: "c"}},
	}
}

func TestAdd(t *testing.T) {
	d := abc()
	x := Block{ID: "x", Props: SpacerProps{}}
	tests := []struct {
		index int
		want  string
	}{
		{0, "x,a,b,c"},
		{1, "a,x,b,c"},
		{3, "a,b,c,x"},
		{-1, "a,b,c,x"},
		{99, "a,b,c,x"},
	}
	for _, tt := range tests {
		if got := ids(Add(d, x, tt.index)); got != tt.want {
			t.Errorf("Add at %d = %s, want %s", tt.index, got, tt.want)
		}
	}
	if ids(d) != "a,b,c" {
		t.Error("Add mutated its input")
	}
}

func TestRemove(t *testing.T) {
	d := abc()
	got, err := Remove(d, "b")
	if err != nil || ids(got) != "a,c" {
		t.Fatalf("Remove = %s, %v", ids(got), err)
	}
	if ids(d) != "a,b,c" {
		t.Error("Remove mutated its input")
	}
	if _, err := Remove(d, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove missing err = %v, want ErrNotFound", err)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		from, to int
		want     string
	}{
		{0, 2, "b,c,a"},
		{2, 0, "c,a,b"},
		{1, 1, "a,b,c"},
		{0, 1, "b,a,c"},
	}
	for _, tt := range tests {
		d := abc()
		got, err := Move(d, tt.from, tt.to)
		if err != nil {
			t.Fatalf("Move(%d,%d): %v", tt.from, tt.to, err)
		}
		if ids(got) != tt.want {
			t.Errorf("Move(%d,%d) = %s, want %s", tt.from, tt.to, ids(got), tt.want)
		}
		if ids(d) != "a,b,c" {
			t.Error("Move mutated its input")
		}
	}
	if _, err := Move(abc(), 0, 3); err == nil {
		t.Error("Move out of range should fail")
	}
	if got, err := MoveByID(abc(), "c", 0); err != nil || ids(got) != "c,a,b" {
		t.Errorf("MoveByID = %s, %v", ids(got), err)
	}
}

func TestDuplicate(t *testing.T) {
	d := Design{{ID: "s", Props: SocialProps{Networks: []Network{{Platform: "youtube", URL: "https://yt"}}}}}
	got, newID, err := Duplicate(d, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].ID != newID || newID == "s" || newID == "" {
		t.Fatalf("Duplicate = %s (new %q)", ids(got), newID)
	}
	// The copy must not share the networks slice with the original.
	copied := got[1].Props.(SocialProps)
	copied.Networks[0].URL = "changed"
	if d[0].Props.(SocialProps).Networks[0].URL != "https://yt" {
		t.Error("duplicate shares networks with original")
	}
}

func TestUpdate(t *testing.T) {
	d := abc()
	got, err := Update(d, "a", SpacerProps{Height: 99})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Props.(SpacerProps).Height != 99 || d[0].Props.(SpacerProps).Height != 1 {
		t.Error("Update did not produce a new design")
	}
	if _, err := Update(d, "a", TextProps{}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("type change err = %v, want ErrTypeMismatch", err)
	}
	if _, err := Update(d, "nope", SpacerProps{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestNormalize(t *testing.T) {
	d := Design{
		{ID: "", Props: SpacerProps{}},
		{ID: "a", Props: SpacerProps{}},
		{ID: "a", Props: SpacerProps{}},
		{ID: "n"},
	}
	got := Normalize(d)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := map[string]bool{}
	for _, b := range got {
		if b.ID == "" || seen[b.ID] {
			t.Errorf("bad id %q", b.ID)
		}
		seen[b.ID] = true
	}
	if got[1].ID != "a" {
		t.Errorf("first occurrence id changed to %q", got[1].ID)
	}
}

func TestUnmarshalDesign_Defaults(t *testing.T) {
	data := `[
		{"id":"1","type":"heading","props":{"text":"Hello"}},
		{"id":"2","type":"image","props":{"src":"{{hero_src}}","height":"auto"}},
		{"id":"3","type":"image","props":{"height":"240px"}},
		{"id":"4","type":"social","props":{"networks":[{"platform":"tiktok","url":"https://t"}]}},
		{"id":"5","type":"spacer"}
	]`
	d, err := UnmarshalDesign([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	h := d[0].Props.(HeadingProps)
	if h.Text != "Hello" || h.Level != "h1" || h.FontFamily != DefaultFontFamily {
		t.Errorf("heading = %+v", h)
	}
	if img := d[1].Props.(ImageProps); !img.Height.IsAuto() || img.Width != ContainerWidth {
		t.Errorf("image = %+v", img)
	}
	if img := d[2].Props.(ImageProps); img.Height.Px != 240 {
		t.Errorf("height = %+v, want 240", img.Height)
	}
	if s := d[3].Props.(SocialProps); len(s.Networks) != 1 || s.IconSize != 32 {
		t.Errorf("social = %+v", s)
	}
	if sp := d[4].Props.(SpacerProps); sp.Height != 24 {
		t.Errorf("spacer = %+v", sp)
	}
}

func TestUnmarshalDesign_UnknownType(t *testing.T) {
	_, err := UnmarshalDesign([]byte(`[{"id":"1","type":"carousel","props":{}}]`))
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
}

func TestDesign_JSONRoundTrip(t *testing.T) {
	d := sampleDesign()
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type":"heading"`) || !strings.Contains(string(data), `"height":"auto"`) {
		t.Errorf("unexpected json: %s", data)
	}
	back, err := UnmarshalDesign(data)
	if err != nil {
		t.Fatal(err)
	}
	if Compile(back) != Compile(d) {
		t.Error("compiled output changed after JSON round trip")
	}
}

func TestDesign_Scan(t *testing.T) {
	var d Design
	if err := d.Scan([]byte(`[{"id":"1","type":"divider","props":{"widthPercent":40}}]`)); err != nil {
		t.Fatal(err)
	}
	if p := d[0].Props.(DividerProps); p.WidthPercent != 40 || p.Style != "solid" {
		t.Errorf("divider = %+v", p)
	}
	if err := d.Scan(nil); err != nil || len(d) != 0 {
		t.Errorf("Scan(nil) = %v, len %d", err, len(d))
	}
	v, _ := Design(nil).Value()
	if string(v.([]byte)) != "[]" {
		t.Errorf("nil Value = %s", v)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(sampleDesign()); err != nil {
		t.Errorf("sample design invalid: %v", err)
	}
	bad := Design{
		{ID: "x", Props: ButtonProps{URL: "not a url", BgColor: "blue", TextColor: "#fff"}},
		{ID: "x", Props: HeadingProps{Level: "h4"}},
	}
	err := Validate(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	joined := strings.Join(verr.Problems, "\n")
	for _, want := range []string{"not a valid URL", "not a hex colour", "duplicate id", "heading level"} {
		if !strings.Contains(joined, want) {
			t.Errorf("problems missing %q:\n%s", want, joined)
		}
	}
}
