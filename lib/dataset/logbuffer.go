// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"slices"
	"strings"

	"github.com/vigil-project/vigil/lib/telemetry"
)

// LogBuffer holds log lines keyed and ordered by timestamp, with a
// set of substring filters. Filtering is destructive and monotonic:
// adding a filter permanently drops every entry whose lines match
// none of the active filters, and nothing can restore a dropped
// entry within a session.
type LogBuffer struct {
	timestamps []string
	lines      map[string][]string
	filters    []string
}

// NewLogBuffer returns an empty buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{lines: make(map[string][]string)}
}

// Append merges incoming rows into the buffer. Rows that fail the
// active filters are dropped on arrival: once a filter is in force it
// governs new data too, otherwise the reduction would silently erode.
func (buffer *LogBuffer) Append(rows []telemetry.LogRow) {
	for _, row := range rows {
		if !buffer.matches(row.Lines) {
			continue
		}
		if _, exists := buffer.lines[row.Timestamp]; !exists {
			index, _ := slices.BinarySearch(buffer.timestamps, row.Timestamp)
			buffer.timestamps = slices.Insert(buffer.timestamps, index, row.Timestamp)
		}
		buffer.lines[row.Timestamp] = append(buffer.lines[row.Timestamp], row.Lines...)
	}
}

// AddFilter adds a substring filter and destructively reduces the
// buffer: entries where no line contains any active filter are
// removed for good. Filters accumulate; each one can only narrow the
// surviving set further.
func (buffer *LogBuffer) AddFilter(substring string) {
	substring = strings.TrimSpace(substring)
	if substring == "" {
		return
	}
	buffer.filters = append(buffer.filters, substring)

	surviving := buffer.timestamps[:0]
	for _, timestamp := range buffer.timestamps {
		if buffer.matches(buffer.lines[timestamp]) {
			surviving = append(surviving, timestamp)
		} else {
			delete(buffer.lines, timestamp)
		}
	}
	buffer.timestamps = surviving
}

// matches reports whether at least one line contains at least one
// active filter. With no filters everything matches.
func (buffer *LogBuffer) matches(lines []string) bool {
	if len(buffer.filters) == 0 {
		return true
	}
	for _, line := range lines {
		for _, filter := range buffer.filters {
			if strings.Contains(line, filter) {
				return true
			}
		}
	}
	return false
}

// Filters returns the active filter substrings in the order applied.
func (buffer *LogBuffer) Filters() []string { return buffer.filters }

// Len returns the number of timestamp entries.
func (buffer *LogBuffer) Len() int { return len(buffer.timestamps) }

// Timestamps returns the entry keys in ascending order. The returned
// slice is the buffer's own; callers must not mutate it.
func (buffer *LogBuffer) Timestamps() []string { return buffer.timestamps }

// Lines returns the lines recorded under a timestamp key.
func (buffer *LogBuffer) Lines(timestamp string) []string {
	return buffer.lines[timestamp]
}

// At resolves a visual index to its timestamp key.
func (buffer *LogBuffer) At(index int) (string, bool) {
	if index < 0 || index >= len(buffer.timestamps) {
		return "", false
	}
	return buffer.timestamps[index], true
}
