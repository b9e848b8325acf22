// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mailcraft/internal/handlers"
	"mailcraft/internal/middleware"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandlerMethods(t *testing.T) {
	// Health endpoint only accepts GET.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
}

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	return New(handlers.New(handlers.Deps{}), Options{
		AdminToken: "secret-token",
		AILimiter:  limiter,
	})
}

func send(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRouter_Auth(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"health is public", "/health", "", http.StatusOK},
		{"api without token", "/api/design/blocks", "", http.StatusUnauthorized},
		{"api with wrong token", "/api/design/blocks", "nope", http.StatusUnauthorized},
		{"api with token", "/api/design/blocks", "secret-token", http.StatusOK},
		{"unknown api route", "/api/nothing", "secret-token", http.StatusNotFound},
		{"public page bad slug", "/p/Not_A_Slug", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(h, http.MethodGet, tt.path, tt.token, "")
			if w.Code != tt.want {
				t.Errorf("GET %s: got %d, want %d", tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestRouter_SecureHeaders(t *testing.T) {
	w := send(newTestRouter(t, nil), http.MethodGet, "/health", "", "")
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		if w.Header().Get(h) == "" {
			t.Errorf("missing %s header", h)
		}
	}
}

func TestRouter_AILimiter(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	h := newTestRouter(t, limiter)

	body := `{"input":{"topic":"spring sale"}}`
	first := send(h, http.MethodPost, "/api/ai/tasks/subject_lines", "secret-token", body)
	if first.Code == http.StatusTooManyRequests {
		t.Fatalf("first request was throttled")
	}
	second := send(h, http.MethodPost, "/api/ai/tasks/subject_lines", "secret-token", body)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", second.Code)
	}

	// Non-AI routes share no budget with the limiter.
	if w := send(h, http.MethodGet, "/api/design/blocks", "secret-token", ""); w.Code != http.StatusOK {
		t.Errorf("design blocks after throttling: got %d, want 200", w.Code)
	}
}
