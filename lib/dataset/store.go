// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"slices"

	"github.com/vigil-project/vigil/lib/acquire"
)

// Entry is the latest known state of one query: its display alias,
// per-facet series, axis bounds, and whether any payload has arrived
// yet. A placeholder entry (created by Rename before first data) has
// HasData false and empty series.
type Entry struct {
	Alias   string
	Series  map[string][]acquire.Point
	Bounds  acquire.Bounds
	HasData bool
}

// Store maps canonical query text to its Entry, in sorted key order
// (the operator's visual list order). The selection cursor is tracked
// by key so it survives inserts and refreshes, and clamped on
// removal.
type Store struct {
	keys       []string
	entries    map[string]*Entry
	tombstones map[string]struct{}
	selected   string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		entries:    make(map[string]*Entry),
		tombstones: make(map[string]struct{}),
	}
}

// Len returns the number of entries.
func (store *Store) Len() int { return len(store.keys) }

// Empty reports whether the store has no entries.
func (store *Store) Empty() bool { return len(store.keys) == 0 }

// Keys returns the canonical query texts in visual list order. The
// returned slice is the store's own; callers must not mutate it.
func (store *Store) Keys() []string { return store.keys }

// Get returns the entry for the canonical query text.
func (store *Store) Get(queryText string) (*Entry, bool) {
	entry, exists := store.entries[queryText]
	return entry, exists
}

// At resolves a visual index to its key and entry.
func (store *Store) At(index int) (string, *Entry, bool) {
	if index < 0 || index >= len(store.keys) {
		return "", nil, false
	}
	key := store.keys[index]
	return key, store.entries[key], true
}

// Track registers intent to receive payloads for queryText, clearing
// any tombstone left by an earlier Remove. Called when the operator
// adds a query (typed or session-loaded).
func (store *Store) Track(queryText string) {
	delete(store.tombstones, queryText)
}

// Upsert applies one payload. A payload for a tombstoned query is
// stale (its task was cancelled but had a call in flight) and is
// dropped without recreating the entry; Upsert reports whether the
// payload was applied. Alias and the selection cursor are never
// touched: aliasing and data refresh are independent axes.
//
// Upsert is idempotent: re-applying the same payload leaves the entry
// unchanged.
func (store *Store) Upsert(payload acquire.Payload) bool {
	if _, removed := store.tombstones[payload.Query]; removed {
		return false
	}

	if entry, exists := store.entries[payload.Query]; exists {
		entry.Series = payload.Series
		entry.Bounds = payload.Bounds
		entry.HasData = true
		return true
	}

	store.insert(payload.Query, &Entry{
		Series:  payload.Series,
		Bounds:  payload.Bounds,
		HasData: true,
	})
	return true
}

// Rename sets the display alias for queryText. If no entry exists yet
// (rename before first data, e.g. from session import) a placeholder
// entry is created so the alias is visible immediately.
func (store *Store) Rename(queryText, alias string) {
	if entry, exists := store.entries[queryText]; exists {
		entry.Alias = alias
		return
	}

	store.insert(queryText, &Entry{
		Alias:  alias,
		Series: make(map[string][]acquire.Point),
		Bounds: acquire.NewBounds(),
	})
}

// Remove deletes the entry at the visual index and tombstones its
// key so a late payload cannot resurrect it. Returns the removed
// canonical text so the caller can cancel the acquisition task.
// Out-of-range indexes are a no-op. The selection cursor is clamped
// into range (or cleared when the store empties).
func (store *Store) Remove(index int) (string, bool) {
	if index < 0 || index >= len(store.keys) {
		return "", false
	}

	removed := store.keys[index]
	store.keys = slices.Delete(store.keys, index, index+1)
	delete(store.entries, removed)
	store.tombstones[removed] = struct{}{}

	if store.selected == removed {
		if len(store.keys) == 0 {
			store.selected = ""
		} else {
			store.selected = store.keys[min(index, len(store.keys)-1)]
		}
	}
	return removed, true
}

// Selected returns the visual index of the selection cursor.
func (store *Store) Selected() (int, bool) {
	if store.selected == "" {
		return 0, false
	}
	index, found := slices.BinarySearch(store.keys, store.selected)
	if !found {
		return 0, false
	}
	return index, true
}

// SelectedKey returns the canonical text under the selection cursor.
func (store *Store) SelectedKey() (string, bool) {
	if store.selected == "" {
		return "", false
	}
	return store.selected, true
}

// SelectedEntry returns the entry under the selection cursor.
func (store *Store) SelectedEntry() (*Entry, bool) {
	entry, exists := store.entries[store.selected]
	return entry, exists
}

// Select moves the cursor to the given visual index, ignoring
// out-of-range values.
func (store *Store) Select(index int) {
	if index < 0 || index >= len(store.keys) {
		return
	}
	store.selected = store.keys[index]
}

// SelectNext advances the cursor circularly (last wraps to first).
// No-op on an empty store; with no prior selection it selects the
// first entry.
func (store *Store) SelectNext() {
	if len(store.keys) == 0 {
		return
	}
	index, selected := store.Selected()
	if !selected {
		store.selected = store.keys[0]
		return
	}
	store.selected = store.keys[(index+1)%len(store.keys)]
}

// SelectPrevious moves the cursor backwards circularly (first wraps
// to last). No-op on an empty store.
func (store *Store) SelectPrevious() {
	if len(store.keys) == 0 {
		return
	}
	index, selected := store.Selected()
	if !selected {
		store.selected = store.keys[0]
		return
	}
	store.selected = store.keys[(index-1+len(store.keys))%len(store.keys)]
}

// insert adds a new key in sorted position.
func (store *Store) insert(queryText string, entry *Entry) {
	index, _ := slices.BinarySearch(store.keys, queryText)
	store.keys = slices.Insert(store.keys, index, queryText)
	store.entries[queryText] = entry
}
