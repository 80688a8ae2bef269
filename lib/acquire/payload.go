// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package acquire

import (
	"math"

	"github.com/vigil-project/vigil/lib/telemetry"
)

// Point is one (time, value) sample within a facet's series.
type Point struct {
	Time  float64
	Value float64
}

// Bounds holds the global extremes across every row of a payload,
// per axis. Mins seed at +Inf and maxes at 0, folded across all rows
// regardless of facet, so an empty payload keeps the seeds.
type Bounds struct {
	MinTime  float64
	MinValue float64
	MaxTime  float64
	MaxValue float64
}

// NewBounds returns the seed bounds: +Inf mins, zero maxes.
func NewBounds() Bounds {
	return Bounds{
		MinTime:  math.Inf(1),
		MinValue: math.Inf(1),
	}
}

// fold widens the bounds to include one row.
func (bounds *Bounds) fold(row telemetry.Row) {
	bounds.MinTime = math.Min(bounds.MinTime, row.Timestamp)
	bounds.MinValue = math.Min(bounds.MinValue, row.Value)
	bounds.MaxTime = math.Max(bounds.MaxTime, row.Timestamp)
	bounds.MaxValue = math.Max(bounds.MaxValue, row.Value)
}

// Payload is one refresh result for one query, delivered to the UI on
// the pipeline's shared channel.
type Payload struct {
	// Query is the canonical query text, the dataset store's key.
	Query string

	// Series maps each facet key to its points in response order
	// (response order is time order). Absent grouping yields the
	// single implicit "" key.
	Series map[string][]Point

	// Bounds are the global axis extremes across every row.
	Bounds Bounds

	// Facets lists the distinct facet keys in first-seen order, so
	// the UI can assign colors to new keys without walking Series.
	Facets []string
}

// reduce groups response rows by facet, folds the global bounds, and
// records the distinct facet keys in first-seen order.
func reduce(queryText string, rows []telemetry.Row) Payload {
	payload := Payload{
		Query:  queryText,
		Series: make(map[string][]Point),
		Bounds: NewBounds(),
	}

	for _, row := range rows {
		payload.Bounds.fold(row)
		if _, seen := payload.Series[row.Facet]; !seen {
			payload.Facets = append(payload.Facets, row.Facet)
		}
		payload.Series[row.Facet] = append(payload.Series[row.Facet], Point{
			Time:  row.Timestamp,
			Value: row.Value,
		})
	}

	return payload
}

// LogBatch is one refresh result from a log query: the raw
// timestamped line groups for the logs tab.
type LogBatch struct {
	Query string
	Rows  []telemetry.LogRow
}
