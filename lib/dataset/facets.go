// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dataset

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// goldenAngle steps the hue wheel so consecutive facet colors land
// far apart no matter how many are assigned.
const goldenAngle = 137.508

// FacetColors assigns each facet key a color the first time it is
// observed and never reassigns it, so a series keeps its color across
// refreshes even as other series come and go.
type FacetColors struct {
	colors map[string]lipgloss.Color
	next   float64
}

// NewFacetColors returns an empty registry.
func NewFacetColors() *FacetColors {
	return &FacetColors{colors: make(map[string]lipgloss.Color)}
}

// Assign registers any keys not yet seen, walking the hue wheel by
// the golden angle for each new key. Already-assigned keys are left
// untouched.
func (facets *FacetColors) Assign(keys []string) {
	for _, key := range keys {
		if _, assigned := facets.colors[key]; assigned {
			continue
		}
		hue := facets.next
		facets.next += goldenAngle
		for facets.next >= 360 {
			facets.next -= 360
		}
		facets.colors[key] = lipgloss.Color(colorful.Hsv(hue, 0.65, 0.95).Hex())
	}
}

// Get returns the color for a facet key, or a neutral gray for keys
// that were never assigned (should not happen in practice: Assign
// runs on every payload before rendering).
func (facets *FacetColors) Get(key string) lipgloss.Color {
	if color, assigned := facets.colors[key]; assigned {
		return color
	}
	return lipgloss.Color("245")
}

// Len returns the number of assigned keys.
func (facets *FacetColors) Len() int { return len(facets.colors) }
