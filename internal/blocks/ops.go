// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package blocks

import (
	"fmt"
	"slices"
)

// Design operations never modify their input. Each returns a new slice so
// callers holding the previous design (undo history, cache keys) keep a
// stable value.

// Find returns the index of the block with the given id, or -1.
func Find(d Design, id string) int {
	return slices.IndexFunc(d, func(b Block) bool { return b.ID == id })
}

// Add inserts b at index. An index outside [0, len(d)] appends.
func Add(d Design, b Block, index int) Design {
	if index < 0 || index > len(d) {
		index = len(d)
	}
	out := make(Design, 0, len(d)+1)
	out = append(out, d[:index]...)
	out = append(out, b)
	out = append(out, d[index:]...)
	return out
}

// Remove deletes the block with the given id.
func Remove(d Design, id string) (Design, error) {
	i := Find(d, id)
	if i < 0 {
		return nil, fmt.Errorf("remove %q: %w", id, ErrNotFound)
	}
	out := make(Design, 0, len(d)-1)
	out = append(out, d[:i]...)
	return append(out, d[i+1:]...), nil
}

// Move relocates the block at index from to index to, shifting the blocks
// in between. Both indexes must be within the design.
func Move(d Design, from, to int) (Design, error) {
	if from < 0 || from >= len(d) || to < 0 || to >= len(d) {
		return nil, fmt.Errorf("move %d→%d: index out of range (len %d)", from, to, len(d))
	}
	out := slices.Clone(d)
	if from == to {
		return out, nil
	}
	b := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, b), nil
}

// MoveByID moves the block with the given id to index to.
func MoveByID(d Design, id string, to int) (Design, error) {
	i := Find(d, id)
	if i < 0 {
		return nil, fmt.Errorf("move %q: %w", id, ErrNotFound)
	}
	return Move(d, i, to)
}

// Duplicate inserts a copy of the block with the given id directly after
// it. The copy gets a fresh id.
func Duplicate(d Design, id string) (Design, string, error) {
	i := Find(d, id)
	if i < 0 {
		return nil, "", fmt.Errorf("duplicate %q: %w", id, ErrNotFound)
	}
	cp := Block{ID: NewID(), Props: cloneProps(d[i].Props)}
	return Add(d, cp, i+1), cp.ID, nil
}

// Update replaces the props of the block with the given id. The new props
// must be of the block's type.
func Update(d Design, id string, props Props) (Design, error) {
	i := Find(d, id)
	if i < 0 {
		return nil, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	if props == nil || props.blockType() != d[i].Type() {
		return nil, fmt.Errorf("update %q: %w", id, ErrTypeMismatch)
	}
	out := slices.Clone(d)
	out[i] = Block{ID: id, Props: props}
	return out, nil
}

// Normalize returns a copy of d where every block has a unique, non-empty
// id and nil props are dropped. AI output is passed through it before use.
func Normalize(d Design) Design {
	out := make(Design, 0, len(d))
	seen := make(map[string]struct{}, len(d))
	for _, b := range d {
		if b.Props == nil {
			continue
		}
		if _, dup := seen[b.ID]; b.ID == "" || dup {
			b.ID = NewID()
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}

// cloneProps deep-copies props that hold reference types.
func cloneProps(p Props) Props {
	if s, ok := p.(SocialProps); ok {
		s.Networks = slices.Clone(s.Networks)
		return s
	}
	return p
}
