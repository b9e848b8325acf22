// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed assistant conversations. Each
// editor session keeps a bounded chat history stored as a Valkey list of
// JSON messages with automatic TTL expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL is how long an idle conversation lives in Valkey.
	DefaultTTL = 2 * time.Hour

	// DefaultMaxMessages caps the stored history. Older turns are trimmed.
	DefaultMaxMessages = 20

	// keyPrefix namespaces conversation keys in Valkey.
	keyPrefix = "conv:"

	// idLength is the byte length of a generated session ID (16 bytes = 32 hex chars).
	idLength = 16
)

// Roles of a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrInvalidID is returned for session IDs that are empty or contain
// characters outside [A-Za-z0-9_-].
var ErrInvalidID = errors.New("invalid session id")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Message is a single conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages conversation history in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	max    int
}

// NewStore creates a conversation store backed by the given Valkey client.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		max:    DefaultMaxMessages,
	}
}

// WithLimits returns a copy of the store using the given TTL and history
// cap. Zero values keep the current setting.
func (s *Store) WithLimits(ttl time.Duration, max int) *Store {
	c := *s
	if ttl > 0 {
		c.ttl = ttl
	}
	if max > 0 {
		c.max = max
	}
	return &c
}

// NewID generates a random session identifier.
func NewID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidID reports whether id can be used as a session identifier.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// Append adds messages to the end of a conversation, trims it to the
// configured cap and refreshes its TTL in one transaction.
func (s *Store) Append(ctx context.Context, id string, msgs ...Message) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("session marshal: %w", err)
		}
		values = append(values, payload)
	}

	key := keyPrefix + id
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, int64(-s.max), -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session append: %w", err)
	}
	return nil
}

// History returns the stored conversation, oldest first. A missing or
// expired conversation yields an empty slice.
func (s *Store) History(ctx context.Context, id string) ([]Message, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	raw, err := s.client.LRange(ctx, keyPrefix+id, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("session history: %w", err)
	}

	msgs := make([]Message, 0, len(raw))
	for _, r := range raw {
		var m Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("session unmarshal: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Clear removes a conversation.
func (s *Store) Clear(ctx context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
