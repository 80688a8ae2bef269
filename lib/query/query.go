// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package query

import "strings"

// Mode selects how the backend shapes the result set and how the
// dashboard renders it.
type Mode int

const (
	// ModeTimeseries asks the backend for bucketed points over time.
	ModeTimeseries Mode = iota
	// ModeTable asks for a flat row listing.
	ModeTable
)

// String returns the uppercase keyword form used in canonical text.
func (mode Mode) String() string {
	if mode == ModeTable {
		return "TABLE"
	}
	return "TIMESERIES"
}

// bindingSuffix is the result-binding annotation Render attaches to
// the projection clause so the backend labels the projected value
// uniformly. Session load strips it before re-parsing.
const bindingSuffix = " as value"

// Query is the structured form of one telemetry query. Immutable by
// convention: construct via Parse (or a literal in tests), never
// mutate a stored value.
type Query struct {
	// Source is the event type queried (FROM clause).
	Source string
	// Projection is the selected expression (SELECT clause), without
	// the result-binding suffix.
	Projection string
	// Filter is the predicate (WHERE clause).
	Filter string
	// Grouping partitions rows into facets (FACET clause). Empty
	// means absent: the single implicit group.
	Grouping string
	// Since and Until bound the time window. Relative ("10 minutes
	// ago") or absolute expressions, passed through verbatim.
	Since string
	Until string
	// Limit caps the row count, passed through verbatim.
	Limit string
	// Mode is the trailing display-mode keyword.
	Mode Mode
}

// Render produces the canonical query text: clauses in fixed order,
// single-space separated, projection suffixed with the result
// binding, FACET emitted only when non-empty.
func (q Query) Render() string {
	var builder strings.Builder
	builder.WriteString("FROM ")
	builder.WriteString(q.Source)
	builder.WriteString(" SELECT ")
	builder.WriteString(q.Projection)
	builder.WriteString(bindingSuffix)
	builder.WriteString(" WHERE ")
	builder.WriteString(q.Filter)
	if q.Grouping != "" {
		builder.WriteString(" FACET ")
		builder.WriteString(q.Grouping)
	}
	builder.WriteString(" SINCE ")
	builder.WriteString(q.Since)
	builder.WriteString(" UNTIL ")
	builder.WriteString(q.Until)
	builder.WriteString(" LIMIT ")
	builder.WriteString(q.Limit)
	builder.WriteString(" ")
	builder.WriteString(q.Mode.String())
	return builder.String()
}

// StripBinding removes every occurrence of the result-binding
// annotation from text. Session files store rendered queries, which
// carry the binding; it must come off before the text goes back
// through Parse (the grammar does not recognize it).
func StripBinding(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, bindingSuffix, ""))
}
