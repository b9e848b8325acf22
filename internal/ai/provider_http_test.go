// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---------- Helpers ----------

// captured records the last request a test server received.
type captured struct {
	path    string
	headers http.Header
	body    map[string]any
}

// newTestServer creates an httptest.Server that responds with the given
// status code and body, recording each request into c when non-nil.
func newTestServer(t *testing.T, statusCode int, body []byte, c *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c != nil {
			raw, _ := io.ReadAll(r.Body)
			c.path = r.URL.Path
			c.headers = r.Header.Clone()
			c.body = nil
			_ = json.Unmarshal(raw, &c.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openAISuccessBody(text string) []byte {
	b, _ := json.Marshal(openAIResponse{
		Model:   "gpt-test",
		Choices: []openAIChoice{{Message: openAIReplyMessage{Role: "assistant", Content: text}}},
		Usage:   openAIUsage{PromptTokens: 11, CompletionTokens: 7},
	})
	return b
}

func claudeSuccessBody(text string) []byte {
	b, _ := json.Marshal(claudeResponse{
		Model:   "claude-test",
		Content: []claudeContentBlock{{Type: "text", Text: text}},
		Usage:   claudeUsage{InputTokens: 5, OutputTokens: 3},
	})
	return b
}

func geminiSuccessBody(text string) []byte {
	b, _ := json.Marshal(geminiResponse{
		Candidates:    []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{{Text: text}}}}},
		UsageMetadata: geminiUsage{PromptTokenCount: 9, CandidatesTokenCount: 4},
	})
	return b
}

// chatRequest is a two-turn conversation whose last message carries an image.
func chatRequest() *Request {
	return &Request{
		System: "You design emails.",
		Messages: []Message{
			{Role: RoleUser, Content: "Make a hero"},
			{Role: RoleAssistant, Content: "[]"},
			{Role: RoleUser, Content: "Use this photo", Images: []Image{{Data: []byte("jpg"), ContentType: "image/jpeg"}}},
		},
		Model: "override-model",
		JSON:  true,
	}
}

// ---------- Claude ----------

func TestClaudeChat(t *testing.T) {
	var c captured
	srv := newTestServer(t, http.StatusOK, claudeSuccessBody("hello"), &c)
	p := newClaude(ProviderConfig{APIKey: "ck", Model: "default", BaseURL: srv.URL})

	resp, err := p.Chat(context.Background(), chatRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "hello" || resp.InputTokens != 5 || resp.OutputTokens != 3 {
		t.Errorf("resp = %+v", resp)
	}

	if c.path != "/v1/messages" {
		t.Errorf("path = %q", c.path)
	}
	if c.headers.Get("x-api-key") != "ck" || c.headers.Get("anthropic-version") == "" {
		t.Errorf("headers = %v", c.headers)
	}
	if c.body["model"] != "override-model" || c.body["system"] != "You design emails." {
		t.Errorf("body = %v", c.body)
	}
	msgs := c.body["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}
	if msgs[1].(map[string]any)["role"] != "assistant" {
		t.Error("assistant role not preserved")
	}
	last := msgs[2].(map[string]any)["content"].([]any)
	img := last[0].(map[string]any)
	if img["type"] != "image" {
		t.Fatalf("first block type = %v, want image", img["type"])
	}
	src := img["source"].(map[string]any)
	if src["data"] != base64.StdEncoding.EncodeToString([]byte("jpg")) || src["media_type"] != "image/jpeg" {
		t.Errorf("image source = %v", src)
	}
}

func TestClaudeChat_NoText(t *testing.T) {
	body, _ := json.Marshal(claudeResponse{Content: []claudeContentBlock{{Type: "tool_use"}}})
	srv := newTestServer(t, http.StatusOK, body, nil)
	p := newClaude(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := p.Chat(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "x"}}}); err == nil {
		t.Error("expected error for response without text")
	}
}

// ---------- OpenAI / Mistral ----------

func TestOpenAIChat(t *testing.T) {
	var c captured
	srv := newTestServer(t, http.StatusOK, openAISuccessBody(`{"ok":true}`), &c)
	p := newOpenAI(ProviderConfig{APIKey: "ok", Model: "default", BaseURL: srv.URL})

	resp, err := p.Chat(context.Background(), chatRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != `{"ok":true}` || resp.Model != "gpt-test" || resp.InputTokens != 11 {
		t.Errorf("resp = %+v", resp)
	}

	if c.path != "/chat/completions" || c.headers.Get("Authorization") != "Bearer ok" {
		t.Errorf("path %q auth %q", c.path, c.headers.Get("Authorization"))
	}
	if rf, _ := c.body["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Errorf("response_format = %v", c.body["response_format"])
	}
	msgs := c.body["messages"].([]any)
	if len(msgs) != 4 || msgs[0].(map[string]any)["role"] != "system" {
		t.Fatalf("messages = %v", msgs)
	}
	if _, ok := msgs[1].(map[string]any)["content"].(string); !ok {
		t.Error("text-only message should use string content")
	}
	parts := msgs[3].(map[string]any)["content"].([]any)
	iu := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(iu, "data:image/jpeg;base64,") {
		t.Errorf("image url = %q", iu)
	}
}

func TestMistralChat(t *testing.T) {
	var c captured
	srv := newTestServer(t, http.StatusOK, openAISuccessBody("bonjour"), &c)
	p := newMistral(ProviderConfig{APIKey: "mk", Model: "mistral-small", BaseURL: srv.URL})

	if p.Name() != "mistral" {
		t.Errorf("Name() = %q", p.Name())
	}
	resp, err := p.Chat(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "bonjour" || c.body["model"] != "mistral-small" {
		t.Errorf("resp %q model %v", resp.Text, c.body["model"])
	}
	if _, ok := c.body["response_format"]; ok {
		t.Error("response_format sent without JSON flag")
	}
}

func TestOpenAIChat_EmptyChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"choices":[]}`), nil)
	p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := p.Chat(context.Background(), &Request{}); err == nil {
		t.Error("expected error for empty choices")
	}
}

// ---------- Gemini ----------

func TestGeminiChat(t *testing.T) {
	var c captured
	srv := newTestServer(t, http.StatusOK, geminiSuccessBody("ciao"), &c)
	p := newGemini(ProviderConfig{APIKey: "gk", Model: "gemini-default", BaseURL: srv.URL})

	resp, err := p.Chat(context.Background(), chatRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text != "ciao" || resp.OutputTokens != 4 || resp.Model != "override-model" {
		t.Errorf("resp = %+v", resp)
	}
	if c.path != "/v1beta/models/override-model:generateContent" {
		t.Errorf("path = %q", c.path)
	}
	if c.headers.Get("x-goog-api-key") != "gk" {
		t.Error("api key header missing")
	}
	gc := c.body["generationConfig"].(map[string]any)
	if gc["responseMimeType"] != "application/json" {
		t.Errorf("generationConfig = %v", gc)
	}
	contents := c.body["contents"].([]any)
	if contents[1].(map[string]any)["role"] != "model" {
		t.Error("assistant turn not mapped to model role")
	}
	parts := contents[2].(map[string]any)["parts"].([]any)
	if _, ok := parts[0].(map[string]any)["inlineData"]; !ok {
		t.Errorf("image part missing: %v", parts)
	}
}

func TestGeminiGenerateImage(t *testing.T) {
	png := []byte("\x89PNG fake")
	body, _ := json.Marshal(geminiResponse{Candidates: []geminiCandidate{{Content: geminiContent{Parts: []geminiPart{
		{Text: "here you go"},
		{InlineData: &geminiInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(png)}},
	}}}}})
	var c captured
	srv := newTestServer(t, http.StatusOK, body, &c)

	p := newGemini(ProviderConfig{APIKey: "gk", BaseURL: srv.URL, ModelImage: "img-model"})
	data, ct, err := p.GenerateImage(context.Background(), "a red tulip")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(png) || ct != "image/png" {
		t.Errorf("GenerateImage = %q %q", data, ct)
	}
	if !strings.Contains(c.path, "img-model") {
		t.Errorf("path = %q", c.path)
	}

	noModel := newGemini(ProviderConfig{APIKey: "gk", BaseURL: srv.URL})
	if _, _, err := noModel.GenerateImage(context.Background(), "x"); err == nil {
		t.Error("expected error without image model")
	}
}

// ---------- Shared error handling ----------

func TestAPIErrors(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, []byte(`{"error":"slow down"}`), nil)
	providers := []Provider{
		newClaude(ProviderConfig{APIKey: "k", BaseURL: srv.URL}),
		newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL}),
		newMistral(ProviderConfig{APIKey: "k", BaseURL: srv.URL}),
		newGemini(ProviderConfig{APIKey: "k", BaseURL: srv.URL}),
	}
	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			_, err := p.Chat(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != http.StatusTooManyRequests || !strings.Contains(apiErr.Error(), "slow down") {
				t.Errorf("APIError = %v", apiErr)
			}
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{not json`), nil)
	p := newOpenAI(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Chat(context.Background(), &Request{})
	if err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Errorf("err = %v, want unmarshal error", err)
	}
}

func TestCancelledContext(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, claudeSuccessBody("late"), nil)
	p := newClaude(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Chat(ctx, &Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDefaultBaseURLs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"claude", newClaude(ProviderConfig{}).config.BaseURL, "https://api.anthropic.com"},
		{"openai", newOpenAI(ProviderConfig{}).config.BaseURL, "https://api.openai.com/v1"},
		{"mistral", newMistral(ProviderConfig{}).config.BaseURL, "https://api.mistral.ai/v1"},
		{"gemini", newGemini(ProviderConfig{}).config.BaseURL, "https://generativelanguage.googleapis.com"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s base URL = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

// ---------- Moderation ----------

func TestOpenAIModerator(t *testing.T) {
	body := []byte(`{"results":[{"flagged":true,"categories":{"hate/threatening":true,"self_harm":true,"violence":false}}]}`)
	srv := newTestServer(t, http.StatusOK, body, nil)

	res, err := newOpenAIModerator("k", srv.URL).CheckSafety(context.Background(), "bad")
	if err != nil {
		t.Fatal(err)
	}
	if res.Safe {
		t.Error("flagged prompt reported safe")
	}
	want := []string{"hate (threatening)", "self harm"}
	if strings.Join(res.Categories, "|") != strings.Join(want, "|") {
		t.Errorf("Categories = %v, want %v", res.Categories, want)
	}
}

func TestMistralModerator(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, []byte(`{"results":[{"categories":{"sexual":false,"pii":false}}]}`), nil)
	res, err := newMistralModerator("k", srv.URL).CheckSafety(context.Background(), "fine")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Safe {
		t.Errorf("res = %+v, want safe", res)
	}
}

func TestFallbackModerator(t *testing.T) {
	denied := newTestServer(t, http.StatusUnauthorized, []byte(`{"error":"project key"}`), nil)
	ok := newTestServer(t, http.StatusOK, []byte(`{"results":[{"categories":{}}]}`), nil)
	broken := newTestServer(t, http.StatusInternalServerError, []byte(`oops`), nil)

	f := &fallbackModerator{chain: []Moderator{newOpenAIModerator("k", denied.URL), newMistralModerator("k", ok.URL)}}
	res, err := f.CheckSafety(context.Background(), "hi")
	if err != nil || !res.Safe {
		t.Errorf("fallback = %+v, %v", res, err)
	}

	f = &fallbackModerator{chain: []Moderator{newOpenAIModerator("k", broken.URL), newMistralModerator("k", ok.URL)}}
	if _, err := f.CheckSafety(context.Background(), "hi"); err == nil {
		t.Error("server error should not fall through")
	}
}
