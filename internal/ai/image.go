// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
)

// ImageGenerator is an optional interface that AI providers can implement
// to support image generation. Claude, OpenAI chat and Mistral are treated
// as text-only here.
type ImageGenerator interface {
	// GenerateImage creates an image from a text prompt. Returns the raw
	// image bytes and the MIME content type (e.g., "image/png").
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// imageGenerator returns the active provider when it can generate images,
// otherwise the first configured provider that can (by name order).
func (r *Registry) imageGenerator() (ImageGenerator, error) {
	if p, err := r.Active(); err == nil {
		if ig, ok := p.(ImageGenerator); ok {
			return ig, nil
		}
	}
	for _, name := range r.Available() {
		p, err := r.Provider(name)
		if err != nil {
			continue
		}
		if ig, ok := p.(ImageGenerator); ok {
			return ig, nil
		}
	}
	return nil, fmt.Errorf("ai: no configured provider supports image generation")
}

// GenerateImage generates an image with the best available provider.
func (r *Registry) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	ig, err := r.imageGenerator()
	if err != nil {
		return nil, "", err
	}
	return ig.GenerateImage(ctx, prompt)
}

// SupportsImageGeneration reports whether any configured provider can
// generate images.
func (r *Registry) SupportsImageGeneration() bool {
	_, err := r.imageGenerator()
	return err == nil
}
