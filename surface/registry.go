// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "slices"

// ID identifies a surface within its Context.
type ID uint64

// registry maps IDs to live surfaces. It never keeps a surface alive on
// its own: Release removes the entry.
type registry struct {
	next    ID
	entries map[ID]*Surface
}

func newRegistry() registry {
	return registry{entries: make(map[ID]*Surface)}
}

func (r *registry) add(s *Surface) ID {
	r.next++
	r.entries[r.next] = s
	return r.next
}

func (r *registry) remove(id ID) {
	delete(r.entries, id)
}

func (r *registry) get(id ID) (*Surface, bool) {
	s, ok := r.entries[id]
	return s, ok
}

// ids returns the live IDs in ascending (creation) order.
func (r *registry) ids() []ID {
	out := make([]ID, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
