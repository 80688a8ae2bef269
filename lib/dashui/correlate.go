// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"strings"

	"github.com/vigil-project/vigil/lib/query"
)

// correlationToken extracts the pivot token from a log line: the last
// whitespace-delimited token, with surrounding punctuation stripped.
// Returns "" when the line has no usable token.
func correlationToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], `.,;:!?()'"`)
}

// correlationQuery synthesizes the query submitted when the operator
// correlates on a log line: a timeseries count of log events whose
// message contains the extracted token.
func correlationQuery(token string) query.Query {
	return query.Query{
		Source:     "Log",
		Projection: "count(*)",
		Filter:     "message LIKE '%" + token + "%'",
		Since:      "30 minutes ago",
		Until:      "now",
		Limit:      "100",
		Mode:       query.ModeTimeseries,
	}
}
