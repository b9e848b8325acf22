// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"strings"
	"testing"
)

func TestHash(t *testing.T) {
	a := Hash([]byte("hello"))
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64", len(a))
	}
	if a != Hash([]byte("hello")) {
		t.Error("hash is not deterministic")
	}
	if a == Hash([]byte("hello!")) {
		t.Error("different content produced the same hash")
	}
}

func TestKey(t *testing.T) {
	h := Hash([]byte("x"))
	got := Key(h, "image/png")
	want := "assets/" + h[:2] + "/" + h + ".png"
	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
	if k := Key(h, "application/zip"); !strings.HasSuffix(k, h) {
		t.Errorf("unknown type key = %q, want no extension", k)
	}
}

func TestDetectType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", png, "image/png"},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), "image/svg+xml"},
		{"xml svg", []byte(`<?xml version="1.0"?><svg></svg>`), "image/svg+xml"},
		{"pdf", []byte("%PDF-1.7\n"), "application/pdf"},
		{"text", []byte("hello world"), "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.data); got != tt.want {
				t.Errorf("DetectType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewUnconfigured(t *testing.T) {
	c, err := New("", "eu-central-1", "", "", "assets", "")
	if c != nil || err != nil {
		t.Errorf("New() = %v, %v; want nil, nil", c, err)
	}
}

func TestURLAndKeyFromURL(t *testing.T) {
	c, err := New("https://s3.example.com/", "eu-central-1", "ak", "sk", "mailcraft-assets", "")
	if err != nil {
		t.Fatal(err)
	}
	key := "assets/ab/abc.png"
	u := c.URL(key)
	if u != "https://s3.example.com/mailcraft-assets/assets/ab/abc.png" {
		t.Errorf("URL = %q", u)
	}
	if got, ok := c.KeyFromURL(u); !ok || got != key {
		t.Errorf("KeyFromURL = %q, %v", got, ok)
	}
	if _, ok := c.KeyFromURL("https://elsewhere.example.com/x.png"); ok {
		t.Error("foreign URL matched")
	}

	cdn, _ := New("https://s3.example.com", "eu-central-1", "ak", "sk", "b", "https://cdn.example.com/")
	if got := cdn.URL(key); got != "https://cdn.example.com/"+key {
		t.Errorf("CDN URL = %q", got)
	}
}
