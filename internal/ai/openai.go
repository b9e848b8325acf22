// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// openAIProvider implements the Provider interface using the OpenAI
// chat completions API (POST /v1/chat/completions). Mistral reuses it
// because its API has the same shape.
type openAIProvider struct {
	name   string
	config ProviderConfig
	client *http.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &openAIProvider{
		name:   "openai",
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// newMistral creates a Mistral provider on its OpenAI-compatible API.
func newMistral(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	p := newOpenAI(cfg)
	p.name = "mistral"
	return p
}

func (p *openAIProvider) Name() string { return p.name }

// Chat sends a chat completion request. Messages with images use the
// multi-part content form with data URLs.
func (p *openAIProvider) Chat(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	body := openAIRequest{
		Model:     model,
		MaxTokens: maxTokens(req),
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "assistant"
		}
		if len(m.Images) == 0 {
			body.Messages = append(body.Messages, openAIMessage{Role: role, Content: m.Content})
			continue
		}
		parts := []openAIPart{{Type: "text", Text: m.Content}}
		for _, img := range m.Images {
			parts = append(parts, openAIPart{
				Type: "image_url",
				ImageURL: &openAIImageURL{
					URL: "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
				},
			})
		}
		body.Messages = append(body.Messages, openAIMessage{Role: role, Content: parts})
	}
	if req.JSON {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	headers := map[string]string{"Authorization": "Bearer " + p.config.APIKey}

	var result openAIResponse
	if err := postJSON(ctx, p.client, p.name, p.config.BaseURL+"/chat/completions", headers, body, &result); err != nil {
		return nil, err
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%s: no choices returned", p.name)
	}

	return &Response{
		Text:         result.Choices[0].Message.Content,
		Model:        result.Model,
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
	}, nil
}

// --- OpenAI-compatible request/response types ---

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

// openAIMessage.Content is a string or a []openAIPart.
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIReplyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChoice struct {
	Message openAIReplyMessage `json:"message"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type openAIResponse struct {
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}
