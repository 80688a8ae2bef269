// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"fmt"
	"strings"
)

// MissingClauseError reports the first mandatory clause keyword that
// the scanner could not find in its expected position.
type MissingClauseError struct {
	// Clause is the keyword that was expected: FROM, SELECT, WHERE,
	// SINCE, UNTIL, LIMIT, or MODE for the trailing display-mode
	// keyword.
	Clause string
}

func (err *MissingClauseError) Error() string {
	return fmt.Sprintf("query missing %s clause", err.Clause)
}

// Parse scans text into a Query. The grammar is a strict fixed clause
// order — FROM, SELECT, WHERE, optional FACET, SINCE, UNTIL, LIMIT,
// then TIMESERIES or TABLE — with each clause body running from its
// introducing keyword to the next expected keyword. Keywords must be
// uppercase; lowercase input is a parse failure, not normalized.
//
// FACET is the only clause allowed to be absent: when its keyword does
// not appear between WHERE and SINCE the grouping is empty. Any other
// missing keyword returns a *MissingClauseError for the first clause
// (in scan order) that could not be located.
func Parse(text string) (Query, error) {
	rest := strings.TrimSpace(text)

	rest, ok := expectKeyword(rest, "FROM")
	if !ok {
		return Query{}, &MissingClauseError{Clause: "FROM"}
	}

	source, rest, ok := scanUntil(rest, "SELECT")
	if !ok {
		return Query{}, &MissingClauseError{Clause: "SELECT"}
	}
	rest, _ = expectKeyword(rest, "SELECT")

	projection, rest, ok := scanUntil(rest, "WHERE")
	if !ok {
		return Query{}, &MissingClauseError{Clause: "WHERE"}
	}
	rest, _ = expectKeyword(rest, "WHERE")

	// WHERE runs to FACET when present, otherwise straight to SINCE.
	var filter, grouping string
	if body, afterFacet, found := scanUntil(rest, "FACET"); found && beforeKeyword(rest, "FACET", "SINCE") {
		filter = body
		afterFacet, _ = expectKeyword(afterFacet, "FACET")
		grouping, rest, ok = scanUntil(afterFacet, "SINCE")
		if !ok {
			return Query{}, &MissingClauseError{Clause: "SINCE"}
		}
	} else {
		filter, rest, ok = scanUntil(rest, "SINCE")
		if !ok {
			return Query{}, &MissingClauseError{Clause: "SINCE"}
		}
	}
	rest, _ = expectKeyword(rest, "SINCE")

	since, rest, ok := scanUntil(rest, "UNTIL")
	if !ok {
		return Query{}, &MissingClauseError{Clause: "UNTIL"}
	}
	rest, _ = expectKeyword(rest, "UNTIL")

	until, rest, ok := scanUntil(rest, "LIMIT")
	if !ok {
		return Query{}, &MissingClauseError{Clause: "LIMIT"}
	}
	rest, _ = expectKeyword(rest, "LIMIT")

	limit, rest, mode, ok := scanMode(rest)
	if !ok {
		return Query{}, &MissingClauseError{Clause: "MODE"}
	}
	_ = rest // Text after the mode keyword is ignored, as the backend does.

	return Query{
		Source:     source,
		Projection: projection,
		Filter:     filter,
		Grouping:   grouping,
		Since:      since,
		Until:      until,
		Limit:      limit,
		Mode:       mode,
	}, nil
}

// expectKeyword consumes keyword at the start of rest. Reports false
// when rest does not begin with it.
func expectKeyword(rest, keyword string) (string, bool) {
	if !strings.HasPrefix(rest, keyword) {
		return rest, false
	}
	return rest[len(keyword):], true
}

// scanUntil splits rest at the first occurrence of keyword. The body
// (text before the keyword, whitespace-trimmed) and the remainder
// (starting at the keyword itself) are returned. Reports false when
// the keyword does not occur.
func scanUntil(rest, keyword string) (body, remainder string, ok bool) {
	index := strings.Index(rest, keyword)
	if index < 0 {
		return "", rest, false
	}
	return strings.TrimSpace(rest[:index]), rest[index:], true
}

// beforeKeyword reports whether first occurs in rest before second.
// Used to decide whether a FACET keyword belongs to this query or
// only appears past the SINCE boundary (in which case the grouping
// is absent).
func beforeKeyword(rest, first, second string) bool {
	firstIndex := strings.Index(rest, first)
	secondIndex := strings.Index(rest, second)
	if firstIndex < 0 {
		return false
	}
	return secondIndex < 0 || firstIndex < secondIndex
}

// scanMode splits the LIMIT body from the trailing display-mode
// keyword. Whichever of TIMESERIES or TABLE occurs first terminates
// the limit clause and selects the mode.
func scanMode(rest string) (limit, remainder string, mode Mode, ok bool) {
	timeseriesIndex := strings.Index(rest, "TIMESERIES")
	tableIndex := strings.Index(rest, "TABLE")

	switch {
	case timeseriesIndex >= 0 && (tableIndex < 0 || timeseriesIndex < tableIndex):
		return strings.TrimSpace(rest[:timeseriesIndex]), rest[timeseriesIndex+len("TIMESERIES"):], ModeTimeseries, true
	case tableIndex >= 0:
		return strings.TrimSpace(rest[:tableIndex]), rest[tableIndex+len("TABLE"):], ModeTable, true
	default:
		return "", rest, ModeTimeseries, false
	}
}
