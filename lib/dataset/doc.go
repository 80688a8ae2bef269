// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package dataset is the in-memory working set behind the dashboard:
// one [Entry] per active query (latest series, alias, axis bounds),
// the facet color registry, and the destructive-filter log buffer.
//
// Everything here is owned exclusively by the UI goroutine. The
// acquisition pipeline never touches the store directly; its payloads
// arrive over a channel and the UI applies them via [Store.Upsert].
// That one-directional flow is what lets the store go lock-free.
//
// Removal and late payloads: cancelling a query's refresh task is
// cooperative, so a payload for a removed query can still arrive
// afterwards. Remove records a tombstone for the canonical text and
// Upsert drops tombstoned payloads instead of resurrecting the entry.
// Track clears the tombstone when the operator re-adds the query.
package dataset
