// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package acquire keeps every active query refreshed without ever
// blocking the UI. One goroutine per query polls a wall-clock cadence
// gate (every 5 seconds), calls the telemetry backend, reduces the
// rows into per-facet series plus axis bounds, and delivers a
// [Payload] on a shared channel that the UI drains once per frame.
//
// Failure handling is deliberately quiet: a backend error becomes an
// empty result set, not a surfaced error — the dashboard shows "no
// data yet" rather than an error state, and callers must not treat
// payload silence as failure.
//
// Cancellation is cooperative. Stopping a query cancels its context;
// the goroutine notices within one poll sub-interval (or after an
// in-flight request completes) and exits without sending. A late
// payload that slips out anyway is dropped downstream by the dataset
// store's tombstones.
package acquire
