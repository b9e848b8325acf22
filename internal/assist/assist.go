// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package assist orchestrates AI help in the editor: it routes each task
// to a fast or smart model, builds prompts with the active theme, attaches
// referenced images, keeps per-session conversation history and turns the
// reply into HTML, a block design, Markdown or a list of suggestions.
// Output passes through the same compiler and extractor as hand-written
// content.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailcraft/internal/ai"
	"mailcraft/internal/blocks"
	"mailcraft/internal/imaging"
	"mailcraft/internal/models"
	"mailcraft/internal/placeholder"
	"mailcraft/internal/session"
)

// Task names an assistant operation.
type Task string

const (
	TaskGenerateHTML   Task = "generate_html"
	TaskGenerateDesign Task = "generate_design"
	TaskEditHTML       Task = "edit_html"
	TaskEditDesign     Task = "edit_design"
	TaskSubjectLines   Task = "subject_lines"
	TaskBlogPost       Task = "blog_post"
	TaskAltText        Task = "alt_text"
)

// Tasks lists every task in a stable order.
var Tasks = []Task{
	TaskGenerateHTML, TaskGenerateDesign, TaskEditHTML, TaskEditDesign,
	TaskSubjectLines, TaskBlogPost, TaskAltText,
}

// Valid reports whether t is a known task.
func (t Task) Valid() bool {
	for _, k := range Tasks {
		if k == t {
			return true
		}
	}
	return false
}

// maxStoredReply caps how much of a reply is kept in conversation history.
const maxStoredReply = 8000

var (
	// ErrInvalidInput is returned when a task is missing required input.
	ErrInvalidInput = errors.New("assist: invalid input")
	// ErrCancelled is returned when a newer request or an explicit cancel
	// stopped the request.
	ErrCancelled = errors.New("assist: request cancelled")
)

// FlaggedError is returned when moderation rejects a prompt.
type FlaggedError struct {
	Categories []string
}

func (e *FlaggedError) Error() string {
	return "assist: prompt flagged for " + strings.Join(e.Categories, ", ")
}

// Input is everything a task may use. Only the fields relevant to the task
// need to be set.
type Input struct {
	SessionID string        `json:"session_id"`
	Prompt    string        `json:"prompt"`
	HTML      string        `json:"html"`
	Design    blocks.Design `json:"design"`
	ImageURLs []string      `json:"image_urls"`

	// Theme is resolved by the caller (usually the active theme).
	Theme *models.Theme `json:"-"`
}

func (in *Input) documentSize() int {
	if in.HTML != "" {
		return len(in.HTML)
	}
	if len(in.Design) == 0 {
		return 0
	}
	raw, _ := json.Marshal(in.Design)
	return len(raw)
}

// Output is the parsed result of a task.
type Output struct {
	Task        Task          `json:"task"`
	Route       Decision      `json:"route"`
	Model       string        `json:"model"`
	HTML        string        `json:"html,omitempty"`
	Design      blocks.Design `json:"design,omitempty"`
	Markdown    string        `json:"markdown,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
	Text        string        `json:"text,omitempty"`
	Variables   []string      `json:"variables,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Chatter is the model backend. *ai.Registry satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req *ai.Request) (*ai.Response, error)
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// History stores conversations. *session.Store satisfies it.
type History interface {
	History(ctx context.Context, id string) ([]session.Message, error)
	Append(ctx context.Context, id string, msgs ...session.Message) error
	Clear(ctx context.Context, id string) error
}

// ImagePreparer downloads and re-encodes images. *imaging.Fetcher
// satisfies it.
type ImagePreparer interface {
	Prepare(ctx context.Context, urls []string) ([]imaging.ProcessedImage, error)
}

// Models maps tiers to model names. An empty name uses the provider default.
type Models struct {
	Fast  string
	Smart string
}

func (m Models) forTier(t Tier) string {
	if t == TierSmart {
		return m.Smart
	}
	return m.Fast
}

// Assistant runs AI tasks.
type Assistant struct {
	chat     Chatter
	history  History
	images   ImagePreparer
	models   Models
	inflight *Inflight
}

// New creates an assistant. history and images may be nil, which disables
// conversation memory and image attachments.
func New(chat Chatter, history History, images ImagePreparer, models Models) *Assistant {
	return &Assistant{
		chat:     chat,
		history:  history,
		images:   images,
		models:   models,
		inflight: NewInflight(),
	}
}

// Cancel stops the running request of a session.
func (a *Assistant) Cancel(sessionID string) bool {
	return a.inflight.Cancel(sessionID)
}

// Reset cancels any running request and forgets the conversation.
func (a *Assistant) Reset(ctx context.Context, sessionID string) error {
	a.inflight.Cancel(sessionID)
	if a.history == nil {
		return nil
	}
	return a.history.Clear(ctx, sessionID)
}

// Run executes a task.
func (a *Assistant) Run(ctx context.Context, task Task, in *Input) (*Output, error) {
	start := time.Now()
	if err := validate(task, in); err != nil {
		return nil, err
	}

	if err := a.moderate(ctx, in.Prompt); err != nil {
		return nil, err
	}

	if in.SessionID != "" {
		var done func()
		ctx, done = a.inflight.Start(ctx, in.SessionID)
		defer done()
	}

	prompt, err := userPrompt(task, in)
	if err != nil {
		return nil, err
	}

	msgs := a.loadHistory(ctx, in.SessionID)
	user := ai.Message{Role: ai.RoleUser, Content: prompt}
	if len(in.ImageURLs) > 0 {
		if a.images == nil {
			return nil, fmt.Errorf("%w: image attachments are not available", ErrInvalidInput)
		}
		prepared, err := a.images.Prepare(ctx, in.ImageURLs)
		if err != nil {
			return nil, a.wrapCancel(ctx, fmt.Errorf("prepare images: %w", err))
		}
		for _, img := range prepared {
			user.Images = append(user.Images, ai.Image{Data: img.Data, ContentType: img.ContentType})
		}
	}
	msgs = append(msgs, user)

	route := Route(task, in)
	req := &ai.Request{
		System:   systemPrompt(task, in.Theme),
		Messages: msgs,
		Model:    a.models.forTier(route.Tier),
		JSON:     task == TaskGenerateDesign || task == TaskEditDesign,
	}
	if task == TaskGenerateDesign || task == TaskGenerateHTML || task == TaskEditHTML || task == TaskEditDesign {
		req.MaxTokens = 8192
	}

	resp, err := a.chat.Chat(ctx, req)
	if err != nil {
		return nil, a.wrapCancel(ctx, err)
	}

	out, err := parseReply(task, resp.Text)
	if err != nil {
		return nil, err
	}
	out.Route = route
	out.Model = resp.Model
	out.Elapsed = time.Since(start)

	slog.Info("assist task completed",
		"task", task,
		"tier", route.Tier,
		"reason", route.Reason,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"elapsed", out.Elapsed,
	)

	a.saveHistory(ctx, in.SessionID, prompt, resp.Text)
	return out, nil
}

// parseReply turns raw model text into the task's output shape.
func parseReply(task Task, text string) (*Output, error) {
	out := &Output{Task: task}
	switch task {
	case TaskGenerateHTML, TaskEditHTML:
		out.HTML = ExtractHTML(text)
		if !strings.Contains(out.HTML, "<") {
			return nil, fmt.Errorf("assist: reply contains no HTML")
		}
		out.Variables = placeholder.Extract(out.HTML)
	case TaskGenerateDesign, TaskEditDesign:
		d, warnings, err := ParseDesign(text)
		if err != nil {
			return nil, err
		}
		out.Design = d
		out.Warnings = warnings
		out.Variables = blocks.Variables(d)
	case TaskBlogPost:
		out.Markdown = StripFences(text)
		out.Variables = placeholder.Extract(out.Markdown)
	case TaskSubjectLines:
		out.Suggestions = ParseList(text)
	case TaskAltText:
		out.Text = strings.Trim(StripFences(text), "\"' \n")
	}
	return out, nil
}

func validate(task Task, in *Input) error {
	if !task.Valid() {
		return fmt.Errorf("%w: unknown task %q", ErrInvalidInput, task)
	}
	if in.SessionID != "" && !session.ValidID(in.SessionID) {
		return fmt.Errorf("%w: bad session id", ErrInvalidInput)
	}
	in.Prompt = strings.TrimSpace(in.Prompt)
	switch task {
	case TaskGenerateHTML, TaskGenerateDesign, TaskBlogPost:
		if in.Prompt == "" {
			return fmt.Errorf("%w: describe what to create", ErrInvalidInput)
		}
	case TaskEditHTML:
		if in.Prompt == "" || strings.TrimSpace(in.HTML) == "" {
			return fmt.Errorf("%w: an edit needs the current HTML and a change request", ErrInvalidInput)
		}
	case TaskEditDesign:
		if in.Prompt == "" || len(in.Design) == 0 {
			return fmt.Errorf("%w: an edit needs the current design and a change request", ErrInvalidInput)
		}
	case TaskSubjectLines:
		if strings.TrimSpace(in.HTML) == "" && len(in.Design) == 0 && in.Prompt == "" {
			return fmt.Errorf("%w: write some content first", ErrInvalidInput)
		}
	case TaskAltText:
		if len(in.ImageURLs) != 1 {
			return fmt.Errorf("%w: alt text needs exactly one image", ErrInvalidInput)
		}
	}
	return nil
}

// moderate checks the prompt. Moderation failures are logged and the
// prompt is allowed, since providers apply their own filters.
func (a *Assistant) moderate(ctx context.Context, prompt string) error {
	if prompt == "" {
		return nil
	}
	res, err := a.chat.CheckPrompt(ctx, truncate(prompt, 4000))
	if err != nil {
		slog.Warn("moderation check failed, allowing prompt", "error", err)
		return nil
	}
	if !res.Safe {
		slog.Warn("prompt flagged by moderation", "categories", strings.Join(res.Categories, ", "))
		return &FlaggedError{Categories: res.Categories}
	}
	return nil
}

func (a *Assistant) loadHistory(ctx context.Context, id string) []ai.Message {
	if a.history == nil || id == "" {
		return nil
	}
	stored, err := a.history.History(ctx, id)
	if err != nil {
		slog.Warn("load conversation failed", "session", id, "error", err)
		return nil
	}
	msgs := make([]ai.Message, 0, len(stored)+1)
	for _, m := range stored {
		msgs = append(msgs, ai.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

func (a *Assistant) saveHistory(ctx context.Context, id, prompt, reply string) {
	if a.history == nil || id == "" {
		return
	}
	err := a.history.Append(context.WithoutCancel(ctx), id,
		session.Message{Role: session.RoleUser, Content: prompt},
		session.Message{Role: session.RoleAssistant, Content: truncate(reply, maxStoredReply)},
	)
	if err != nil {
		slog.Warn("save conversation failed", "session", id, "error", err)
	}
}

// wrapCancel reports ErrCancelled when ctx was cancelled by the inflight
// registry rather than failing on its own.
func (a *Assistant) wrapCancel(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	return err
}
