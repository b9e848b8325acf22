// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mailcraft/internal/ai"
	"mailcraft/internal/blocks"
	"mailcraft/internal/imaging"
	"mailcraft/internal/models"
	"mailcraft/internal/session"
)

// fakeChat records requests and returns a canned reply.
type fakeChat struct {
	mu       sync.Mutex
	reply    string
	err      error
	flagged  []string
	modErr   error
	requests []*ai.Request
	block    chan struct{}
}

func (f *fakeChat) Chat(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	model := req.Model
	if model == "" {
		model = "default"
	}
	return &ai.Response{Text: f.reply, Model: model, InputTokens: 10, OutputTokens: 20}, nil
}

func (f *fakeChat) CheckPrompt(_ context.Context, _ string) (*ai.ModerationResult, error) {
	if f.modErr != nil {
		return nil, f.modErr
	}
	return &ai.ModerationResult{Safe: len(f.flagged) == 0, Categories: f.flagged}, nil
}

func (f *fakeChat) last() *ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// memHistory is an in-memory conversation store.
type memHistory struct {
	mu   sync.Mutex
	msgs map[string][]session.Message
}

func newMemHistory() *memHistory {
	return &memHistory{msgs: make(map[string][]session.Message)}
}

func (h *memHistory) History(_ context.Context, id string) ([]session.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]session.Message(nil), h.msgs[id]...), nil
}

func (h *memHistory) Append(_ context.Context, id string, msgs ...session.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs[id] = append(h.msgs[id], msgs...)
	return nil
}

func (h *memHistory) Clear(_ context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.msgs, id)
	return nil
}

type fakeImages struct {
	urls []string
}

func (f *fakeImages) Prepare(_ context.Context, urls []string) ([]imaging.ProcessedImage, error) {
	f.urls = urls
	out := make([]imaging.ProcessedImage, len(urls))
	for i, u := range urls {
		out[i] = imaging.ProcessedImage{Source: u, Data: []byte{0xff, 0xd8}, ContentType: "image/jpeg"}
	}
	return out, nil
}

func newTestAssistant(chat *fakeChat) (*Assistant, *memHistory, *fakeImages) {
	h := newMemHistory()
	img := &fakeImages{}
	return New(chat, h, img, Models{Fast: "fast-model", Smart: "smart-model"}), h, img
}

func TestRun_GenerateHTML(t *testing.T) {
	chat := &fakeChat{reply: "```html\n<!DOCTYPE html><html><body><h1>Hi {{first_name}}</h1><img src=\"{{hero_src}}\" alt=\"\"></body></html>\n```"}
	a, _, _ := newTestAssistant(chat)
	theme := &models.Theme{Name: "Ocean", StylePrompt: "Calm and airy.", Palette: map[string]string{"primary": "#0f766e"}}

	out, err := a.Run(context.Background(), TaskGenerateHTML, &Input{Prompt: "welcome email", Theme: theme})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(out.HTML, "<!DOCTYPE html>") {
		t.Errorf("HTML = %q", out.HTML)
	}
	if len(out.Variables) != 2 {
		t.Errorf("Variables = %v, want first_name and hero_src", out.Variables)
	}
	if out.Route.Tier != TierSmart || out.Model != "smart-model" {
		t.Errorf("route = %+v, model = %q", out.Route, out.Model)
	}
	req := chat.last()
	if !strings.Contains(req.System, "Ocean") || !strings.Contains(req.System, "primary=#0f766e") {
		t.Errorf("system prompt lacks theme brief:\n%s", req.System)
	}
	if req.JSON {
		t.Error("html task requested JSON mode")
	}
}

func TestRun_EditDesign(t *testing.T) {
	chat := &fakeChat{reply: `{"blocks":[{"id":"b1","type":"button","props":{"text":"Shop","url":"{{cta_link_url}}","bgColor":"#ff0000"}},{"type":"carousel"}]}`}
	a, _, _ := newTestAssistant(chat)
	current := blocks.Design{{ID: "b1", Props: blocks.ButtonProps{Text: "Shop", URL: "{{cta_link_url}}"}}}

	out, err := a.Run(context.Background(), TaskEditDesign, &Input{Prompt: "make it red", Design: current})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Design) != 1 || out.Design[0].ID != "b1" {
		t.Fatalf("Design = %+v", out.Design)
	}
	if p := out.Design[0].Props.(blocks.ButtonProps); p.BgColor != "#ff0000" {
		t.Errorf("BgColor = %q", p.BgColor)
	}
	if len(out.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one for the unknown block", out.Warnings)
	}
	if out.Route.Tier != TierFast {
		t.Errorf("tier = %s, want fast", out.Route.Tier)
	}
	req := chat.last()
	if !req.JSON {
		t.Error("design task did not request JSON mode")
	}
	if !strings.Contains(req.Messages[0].Content, `"id":"b1"`) {
		t.Errorf("user prompt lacks current design: %s", req.Messages[0].Content)
	}
}

func TestRun_SubjectLines(t *testing.T) {
	chat := &fakeChat{reply: "1. Hello there\n2. Big news\n3. Don't miss this"}
	a, _, _ := newTestAssistant(chat)

	out, err := a.Run(context.Background(), TaskSubjectLines, &Input{HTML: "<p>Hi {{first_name}}, our sale starts now</p>"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Suggestions) != 3 {
		t.Errorf("Suggestions = %q", out.Suggestions)
	}
	if msg := chat.last().Messages[0].Content; !strings.Contains(msg, "[first_name]") {
		t.Errorf("content not flattened: %s", msg)
	}
}

func TestRun_BlogPost(t *testing.T) {
	chat := &fakeChat{reply: "```markdown\n## Release notes\n\nHello {{first_name}}\n```"}
	a, _, _ := newTestAssistant(chat)

	out, err := a.Run(context.Background(), TaskBlogPost, &Input{Prompt: "write release notes"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.Markdown, "## Release notes") {
		t.Errorf("Markdown = %q", out.Markdown)
	}
}

func TestRun_AltTextAttachesImage(t *testing.T) {
	chat := &fakeChat{reply: `"A red bicycle leaning on a wall"`}
	a, _, img := newTestAssistant(chat)

	out, err := a.Run(context.Background(), TaskAltText, &Input{ImageURLs: []string{"https://cdn.example.com/bike.png"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "A red bicycle leaning on a wall" {
		t.Errorf("Text = %q", out.Text)
	}
	if len(img.urls) != 1 {
		t.Errorf("images prepared = %v", img.urls)
	}
	req := chat.last()
	if len(req.Messages[0].Images) != 1 || req.Messages[0].Images[0].ContentType != "image/jpeg" {
		t.Errorf("image not attached: %+v", req.Messages[0])
	}
	if req.Model != "smart-model" {
		t.Errorf("model = %q, want smart for images", req.Model)
	}
}

func TestRun_Validation(t *testing.T) {
	a, _, _ := newTestAssistant(&fakeChat{reply: "x"})
	tests := []struct {
		name string
		task Task
		in   Input
	}{
		{"unknown task", Task("poem"), Input{Prompt: "x"}},
		{"empty prompt", TaskGenerateHTML, Input{Prompt: "   "}},
		{"edit without html", TaskEditHTML, Input{Prompt: "red"}},
		{"edit without design", TaskEditDesign, Input{Prompt: "red"}},
		{"subject without content", TaskSubjectLines, Input{}},
		{"alt text without image", TaskAltText, Input{}},
		{"bad session", TaskGenerateHTML, Input{Prompt: "x", SessionID: "../etc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Run(context.Background(), tt.task, &tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRun_Flagged(t *testing.T) {
	chat := &fakeChat{flagged: []string{"violence"}}
	a, _, _ := newTestAssistant(chat)

	_, err := a.Run(context.Background(), TaskGenerateHTML, &Input{Prompt: "something bad"})
	var fe *FlaggedError
	if !errors.As(err, &fe) || fe.Categories[0] != "violence" {
		t.Fatalf("err = %v, want FlaggedError", err)
	}
	if len(chat.requests) != 0 {
		t.Error("flagged prompt reached the model")
	}
}

func TestRun_ModerationFailureAllows(t *testing.T) {
	chat := &fakeChat{reply: "<p>ok</p>", modErr: errors.New("moderation down")}
	a, _, _ := newTestAssistant(chat)
	if _, err := a.Run(context.Background(), TaskGenerateHTML, &Input{Prompt: "hello"}); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestRun_NoHTMLInReply(t *testing.T) {
	a, _, _ := newTestAssistant(&fakeChat{reply: "Sorry, I can't help with that."})
	if _, err := a.Run(context.Background(), TaskGenerateHTML, &Input{Prompt: "x"}); err == nil {
		t.Error("expected error for reply without HTML")
	}
}

func TestRun_ProviderError(t *testing.T) {
	a, _, _ := newTestAssistant(&fakeChat{err: errors.New("boom")})
	if _, err := a.Run(context.Background(), TaskGenerateHTML, &Input{Prompt: "x"}); err == nil || errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want plain provider error", err)
	}
}

func TestRun_HistoryCarriedAcrossTurns(t *testing.T) {
	chat := &fakeChat{reply: "<p>v1</p>"}
	a, h, _ := newTestAssistant(chat)
	ctx := context.Background()

	if _, err := a.Run(ctx, TaskGenerateHTML, &Input{SessionID: "s1", Prompt: "first"}); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Run(ctx, TaskEditHTML, &Input{SessionID: "s1", Prompt: "second", HTML: "<p>v1</p>"}); err != nil {
		t.Fatal(err)
	}

	req := chat.last()
	if len(req.Messages) != 3 {
		t.Fatalf("messages = %d, want 3 (two history + new)", len(req.Messages))
	}
	if req.Messages[0].Content != "first" || req.Messages[1].Role != ai.RoleAssistant {
		t.Errorf("history = %+v", req.Messages[:2])
	}

	stored, _ := h.History(ctx, "s1")
	if len(stored) != 4 {
		t.Errorf("stored = %d, want 4", len(stored))
	}

	if err := a.Reset(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if stored, _ := h.History(ctx, "s1"); len(stored) != 0 {
		t.Errorf("history not cleared: %v", stored)
	}
}

func TestRun_NewRequestCancelsOld(t *testing.T) {
	chat := &fakeChat{reply: "<p>x</p>", block: make(chan struct{})}
	a, _, _ := newTestAssistant(chat)

	errc := make(chan error, 1)
	go func() {
		_, err := a.Run(context.Background(), TaskGenerateHTML, &Input{SessionID: "s", Prompt: "first"})
		errc <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !a.inflight.Running("s") {
		if time.Now().After(deadline) {
			t.Fatal("first request never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !a.Cancel("s") {
		t.Fatal("Cancel found no running request")
	}
	select {
	case err := <-errc:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("err = %v, want ErrCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request did not return")
	}
}

func TestRun_WithoutImagePreparer(t *testing.T) {
	a := New(&fakeChat{reply: "alt"}, nil, nil, Models{})
	_, err := a.Run(context.Background(), TaskAltText, &Input{ImageURLs: []string{"https://x/y.png"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
