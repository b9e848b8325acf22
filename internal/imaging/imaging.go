// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging probes uploaded images and prepares bounded JPEG copies
// of referenced images so they can be attached to AI requests. Images are
// downscaled to a maximum width, flattened onto white and re-encoded.
// Images narrower than the limit are re-encoded without upscaling.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	// Registered decoders.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMaxWidth is the widest image sent to a model.
	DefaultMaxWidth = 1024

	// DefaultQuality is the JPEG quality used for re-encoding.
	DefaultQuality = 80

	// MaxSourceBytes bounds how much of a remote image is read.
	MaxSourceBytes = 10 << 20

	// maxParallel limits concurrent downloads in Prepare.
	maxParallel = 4
)

// ErrTooLarge is returned when a remote image exceeds MaxSourceBytes.
var ErrTooLarge = errors.New("imaging: source too large")

// ProcessedImage holds one re-encoded image ready for a model request.
type ProcessedImage struct {
	Source      string // URL the image was fetched from, empty for in-memory input
	Width       int    // Output width
	Height      int    // Output height
	Data        []byte // JPEG-encoded bytes
	ContentType string // Always "image/jpeg"
}

// Probe decodes only the image header and returns its dimensions and
// format name ("png", "jpeg", "gif", "webp").
func Probe(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("imaging: probe failed: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// Fit decodes data, scales it down to at most maxWidth pixels wide keeping
// the aspect ratio, and encodes it as JPEG.
func Fit(data []byte, maxWidth, quality int) (*ProcessedImage, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode failed: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("imaging: empty image")
	}
	if w > maxWidth {
		h = max(1, h*maxWidth/w)
		w = maxWidth
	}

	// JPEG has no alpha, so transparent areas become white.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode failed: %w", err)
	}

	return &ProcessedImage{
		Width:       w,
		Height:      h,
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
	}, nil
}

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client   *http.Client
	maxWidth int
}

// NewFetcher creates a fetcher. A nil client gets a 20 second timeout.
func NewFetcher(client *http.Client, maxWidth int) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &Fetcher{client: client, maxWidth: maxWidth}
}

// Fetch downloads a single image, capped at MaxSourceBytes.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("imaging: request %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imaging: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imaging: fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("imaging: read %s: %w", url, err)
	}
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, url)
	}
	return data, nil
}

// Prepare downloads and re-encodes every URL concurrently. Results keep
// the order of urls. The first failure cancels the remaining downloads.
func (f *Fetcher) Prepare(ctx context.Context, urls []string) ([]ProcessedImage, error) {
	out := make([]ProcessedImage, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, u := range urls {
		g.Go(func() error {
			data, err := f.Fetch(ctx, u)
			if err != nil {
				return err
			}
			img, err := Fit(data, f.maxWidth, DefaultQuality)
			if err != nil {
				return fmt.Errorf("%s: %w", u, err)
			}
			img.Source = u
			out[i] = *img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
