// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the normal-mode key bindings. Input-mode keys
// (runes, backspace, cursor movement, enter, esc) are handled by the
// focused text input and the commit/abort logic directly.
type KeyMap struct {
	Next     key.Binding // Move the list cursor down.
	Previous key.Binding // Move the list cursor up.

	AddQuery  key.Binding // Open the query input.
	Rename    key.Binding // Alias the selected query.
	Delete    key.Binding // Remove the selected query.
	Dashboard key.Binding // Toggle the all-queries dashboard view.

	SwitchTab key.Binding // Flip between the graph and logs tabs.

	OpenDetail key.Binding // Logs tab: open the selected entry.
	Correlate  key.Binding // Log detail: query on the selected line's last token.
	Search     key.Binding // Logs tab: add a destructive filter.

	Quit key.Binding // Prompt to save the session, then exit.
}

// DefaultKeyMap is the built-in binding set: vim-style j/k movement
// with arrow keys as synonyms.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "next"),
	),
	Previous: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "previous"),
	),
	AddQuery: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit query"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete"),
	),
	Dashboard: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "dashboard"),
	),
	SwitchTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "graph/logs"),
	),
	OpenDetail: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open log entry"),
	),
	Correlate: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "correlate"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter logs"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}
