// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	previewKeyPrefix = "preview:"

	// DefaultPreviewTTL bounds how long a compiled preview is kept. The
	// editor recompiles on every change, so entries are short-lived.
	DefaultPreviewTTL = 10 * time.Minute
)

// PreviewCache memoises compiled previews by a hash of their inputs. Since
// compilation is a pure function, a hit is indistinguishable from a fresh
// compile.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache backed by the given Valkey client.
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl == 0 {
		ttl = DefaultPreviewTTL
	}
	return &PreviewCache{client: client, ttl: ttl}
}

// Get returns the cached output for key.
func (c *PreviewCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, previewKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		slog.Warn("preview cache get error", "error", err)
		return "", false
	}
	return val, true
}

// Set stores output under key.
func (c *PreviewCache) Set(ctx context.Context, key, output string) {
	if err := c.client.Set(ctx, previewKeyPrefix+key, output, c.ttl).Err(); err != nil {
		slog.Warn("preview cache set error", "error", err)
	}
}

// Clear removes every cached preview.
func (c *PreviewCache) Clear(ctx context.Context) int {
	return deletePrefix(ctx, c.client, previewKeyPrefix)
}

// PreviewKey derives a cache key from a mode, the raw source (HTML or
// serialized design) and the variable values. Map keys are sorted so equal
// inputs always hash equally.
func PreviewKey(mode string, source []byte, values map[string]string) string {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([][2]string, len(names))
	for i, k := range names {
		pairs[i] = [2]string{k, values[k]}
	}
	// Marshalling a slice of string pairs cannot fail.
	vals, _ := json.Marshal(pairs)

	h, _ := blake2b.New256(nil)
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write(source)
	h.Write([]byte{0})
	h.Write(vals)
	return hex.EncodeToString(h.Sum(nil))
}
