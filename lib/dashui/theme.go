// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import "github.com/charmbracelet/lipgloss"

// Theme defines the dashboard's color palette. ANSI 256-color codes
// throughout for broad terminal compatibility; facet series colors
// come from the dataset.FacetColors registry, not the theme.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	BorderColor  lipgloss.Color
	FocusBorder  lipgloss.Color
	HelpText     lipgloss.Color
	LoadingText  lipgloss.Color
	AxisLabel    lipgloss.Color
	FilterActive lipgloss.Color

	StatusWarn  lipgloss.Color
	StatusError lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	BorderColor:  lipgloss.Color("240"),
	FocusBorder:  lipgloss.Color("75"),
	HelpText:     lipgloss.Color("241"),
	LoadingText:  lipgloss.Color("220"),
	AxisLabel:    lipgloss.Color("245"),
	FilterActive: lipgloss.Color("208"),

	StatusWarn:  lipgloss.Color("220"),
	StatusError: lipgloss.Color("196"),
}
