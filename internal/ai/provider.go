// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified chat interface over multiple LLM providers
// (Claude, Gemini, OpenAI, Mistral). Each provider implements Provider and
// the Registry selects the active one by name. Requests carry a system
// prompt, the conversation so far, optional inline images and an optional
// per-call model override.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// Roles of a chat message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTokens is used when a request does not set MaxTokens.
const DefaultMaxTokens = 4096

// ErrNoProvider is returned when the requested provider is not configured.
var ErrNoProvider = errors.New("ai: no provider configured")

// Image is an inline image attached to a message.
type Image struct {
	Data        []byte
	ContentType string
}

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
	Images  []Image
}

// Request is a single chat completion call.
type Request struct {
	System    string
	Messages  []Message
	Model     string // overrides the provider's default model when set
	MaxTokens int
	JSON      bool // ask the provider for a JSON-only response where supported
}

// Response is the text produced by a provider.
type Response struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing.
type Provider interface {
	// Chat sends a request to the LLM and returns its reply.
	Chat(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey     string
	Model      string
	ModelImage string // image model, used by providers that implement ImageGenerator
	BaseURL    string
}

// APIError is a non-2xx reply from a provider API.
type APIError struct {
	Provider string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Body)
}

// Registry manages available AI providers and selects the active one.
// It supports runtime switching by changing the active provider name.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	moderator Moderator // may be nil if no moderation API is available
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are silently skipped.
// A Moderator is configured when an OpenAI or Mistral key is present:
// OpenAI's free endpoint is preferred and Mistral is the fallback.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		switch name {
		case "openai":
			r.providers[name] = newOpenAI(cfg)
		case "gemini":
			r.providers[name] = newGemini(cfg)
		case "claude":
			r.providers[name] = newClaude(cfg)
		case "mistral":
			r.providers[name] = newMistral(cfg)
		}
	}

	var mods []Moderator
	if cfg := configs["openai"]; cfg.APIKey != "" {
		mods = append(mods, newOpenAIModerator(cfg.APIKey, cfg.BaseURL))
	}
	if cfg := configs["mistral"]; cfg.APIKey != "" {
		mods = append(mods, newMistralModerator(cfg.APIKey, cfg.BaseURL))
	}
	switch len(mods) {
	case 0:
	case 1:
		r.moderator = mods[0]
	default:
		r.moderator = &fallbackModerator{chain: mods}
	}

	return r
}

// Chat sends req to the active provider.
func (r *Registry) Chat(ctx context.Context, req *Request) (*Response, error) {
	p, err := r.Active()
	if err != nil {
		return nil, err
	}
	return p.Chat(ctx, req)
}

// Generate is a single-turn convenience wrapper around Chat.
func (r *Registry) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := r.Chat(ctx, &Request{
		System:   systemPrompt,
		Messages: []Message{{Role: RoleUser, Content: userPrompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoProvider, r.active)
	}
	return p, nil
}

// Provider returns a named provider.
func (r *Registry) Provider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoProvider, name)
	}
	return p, nil
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?)", name)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the sorted names of all configured providers.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds or replaces a provider in the registry.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}

// CheckPrompt runs a prompt through the moderation API before generation.
// When no moderator is configured every prompt is reported safe.
func (r *Registry) CheckPrompt(ctx context.Context, prompt string) (*ModerationResult, error) {
	if r.moderator == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return r.moderator.CheckSafety(ctx, prompt)
}

// SetModerator replaces the moderator. A nil moderator disables checks.
func (r *Registry) SetModerator(m Moderator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderator = m
}

// maxTokens returns the request's token budget or the default.
func maxTokens(req *Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return DefaultMaxTokens
}

// postJSON marshals body, POSTs it to url with the given headers and
// decodes a 200 reply into out. Non-200 replies become *APIError.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s marshal: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s http: %w", provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s read body: %w", provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: provider, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s unmarshal: %w", provider, err)
	}
	return nil
}
