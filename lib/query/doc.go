// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package query models the structured telemetry query that the rest of
// Vigil passes around: a fixed-order clause grammar (FROM, SELECT,
// WHERE, optional FACET, SINCE, UNTIL, LIMIT, display mode) with two
// pure conversions between it and its textual form.
//
// Parse scans operator input into a [Query]; Render produces the
// canonical text sent to the telemetry backend. The two compose:
// Render(Parse(text)) reproduces text up to whitespace normalization
// and the ` as value` result binding that Render always attaches to
// the projection clause.
//
// The grammar is deliberately rigid. The remote query language itself
// requires this clause order, so the scanner makes no attempt at
// recovery or reordering: a missing mandatory keyword fails with a
// [MissingClauseError] naming the first absent clause in scan order.
package query
