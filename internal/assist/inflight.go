// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assist

import (
	"context"
	"sync"
)

// Inflight tracks the running AI request of each editor session. Starting
// a request for a session cancels the one already running for it.
type Inflight struct {
	mu      sync.Mutex
	next    uint64
	running map[string]inflightEntry
}

type inflightEntry struct {
	seq    uint64
	cancel context.CancelFunc
}

// NewInflight creates an empty registry.
func NewInflight() *Inflight {
	return &Inflight{running: make(map[string]inflightEntry)}
}

// Start registers a request for session and returns its context and a
// done func the caller must invoke when the request finishes. Any earlier
// request for the same session is cancelled.
func (f *Inflight) Start(parent context.Context, session string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	f.mu.Lock()
	if prev, ok := f.running[session]; ok {
		prev.cancel()
	}
	f.next++
	seq := f.next
	f.running[session] = inflightEntry{seq: seq, cancel: cancel}
	f.mu.Unlock()

	done := func() {
		f.mu.Lock()
		// A newer request may have replaced this one.
		if cur, ok := f.running[session]; ok && cur.seq == seq {
			delete(f.running, session)
		}
		f.mu.Unlock()
		cancel()
	}
	return ctx, done
}

// Cancel stops the running request for session. It reports whether one
// was running.
func (f *Inflight) Cancel(session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.running[session]
	if ok {
		cur.cancel()
		delete(f.running, session)
	}
	return ok
}

// Running reports whether session has a request in flight.
func (f *Inflight) Running(session string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.running[session]
	return ok
}

// Len returns the number of sessions with a request in flight.
func (f *Inflight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.running)
}
