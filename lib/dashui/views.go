// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vigil-project/vigil/lib/acquire"
	"github.com/vigil-project/vigil/lib/dataset"
)

// sparkBlocks are the eighth-block runes used for series rendering,
// lowest to highest.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "starting..."
	}

	switch model.focus {
	case FocusSessionLoad:
		return model.renderPrompt("Load session?",
			"A previous session was found at "+model.sessionPath+".\nImport it? (y/n)")
	case FocusSessionSave:
		return model.renderPrompt("Save session?",
			"Persist the current queries to "+model.sessionPath+"?\n(y/n, any answer exits)")
	case FocusDashboard:
		return model.renderDashboard()
	}

	var sections []string
	sections = append(sections, model.renderInputBar())

	contentHeight := max(model.height-lipgloss.Height(sections[0])-1, 3)
	switch model.tab {
	case TabGraph:
		sections = append(sections, model.renderGraphTab(contentHeight))
	case TabLogs:
		sections = append(sections, model.renderLogsTab(contentHeight))
	}

	sections = append(sections, model.renderStatusLine())

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if model.focus == FocusRename {
		modal := model.renderModal("Rename query", model.renameInput.View())
		return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return body
}

// renderInputBar shows the query input when it has focus, otherwise a
// one-line hint.
func (model Model) renderInputBar() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Width(max(model.width-2, 20)).
		Padding(0, 1)

	if model.focus == FocusQueryInput {
		style = style.BorderForeground(model.theme.FocusBorder)
		return style.Render(model.queryInput.View())
	}

	hint := lipgloss.NewStyle().Foreground(model.theme.FaintText).
		Render("press e to compose a query")
	return style.Render(hint)
}

// renderGraphTab is the default layout: query list on the left, the
// selected query's graph on the right.
func (model Model) renderGraphTab(height int) string {
	listWidth := max(model.width/5, 20)
	graphWidth := max(model.width-listWidth-4, 20)

	list := model.renderQueryList(listWidth, height)

	var graph string
	if entry, ok := model.store.SelectedEntry(); ok {
		if entry.HasData {
			graph = model.renderGraph(entry, graphWidth, height)
		} else {
			graph = model.renderCentered(graphWidth, height,
				lipgloss.NewStyle().Foreground(model.theme.LoadingText).Render("fetching data..."))
		}
	} else {
		graph = model.renderCentered(graphWidth, height,
			lipgloss.NewStyle().Foreground(model.theme.FaintText).
				Render("no query selected\n\ne: compose  Tab: logs  q: quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, list, graph)
}

// renderQueryList renders the left pane: one row per query, alias
// preferred over canonical text, selection highlighted.
func (model Model) renderQueryList(width, height int) string {
	selectedIndex, hasSelection := model.store.Selected()

	var rows []string
	for index, queryText := range model.store.Keys() {
		entry, _ := model.store.Get(queryText)
		label := queryText
		if entry.Alias != "" {
			label = entry.Alias
		}
		if !entry.HasData {
			label += " …"
		}
		label = truncate(label, width-2)

		style := lipgloss.NewStyle().Foreground(model.theme.NormalText).Width(width - 2)
		if hasSelection && index == selectedIndex {
			style = style.
				Background(model.theme.SelectedBackground).
				Foreground(model.theme.SelectedForeground)
		}
		rows = append(rows, style.Render(label))
	}
	if len(rows) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("(no queries)"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Width(width).
		Height(height-2).
		Render(strings.Join(rows, "\n"))
}

// renderGraph renders one entry: a sparkline per facet in its
// registered color, with axis bound labels underneath.
func (model Model) renderGraph(entry *dataset.Entry, width, height int) string {
	innerWidth := max(width-4, 10)

	var lines []string
	for _, facetKey := range sortedFacets(entry) {
		points := entry.Series[facetKey]
		label := facetKey
		if label == "" {
			label = "value"
		}
		color := model.facetColors.Get(facetKey)
		lines = append(lines,
			lipgloss.NewStyle().Foreground(color).Render(truncate(label, innerWidth)),
			lipgloss.NewStyle().Foreground(color).Render(sparkline(points, entry.Bounds, innerWidth)),
		)
	}

	axis := ""
	if !math.IsInf(entry.Bounds.MinValue, 1) {
		axis = fmt.Sprintf("value %.2f – %.2f", entry.Bounds.MinValue, entry.Bounds.MaxValue)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.AxisLabel).Render(axis))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Width(width).
		Height(height-2).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderDashboard shows every query's sparkline at once.
func (model Model) renderDashboard() string {
	width := max(model.width-4, 20)
	innerWidth := max(width-4, 10)

	var blocks []string
	for _, queryText := range model.store.Keys() {
		entry, _ := model.store.Get(queryText)
		label := queryText
		if entry.Alias != "" {
			label = entry.Alias
		}

		var lines []string
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.NormalText).Bold(true).
			Render(truncate(label, innerWidth)))
		if entry.HasData {
			for _, facetKey := range sortedFacets(entry) {
				color := model.facetColors.Get(facetKey)
				lines = append(lines, lipgloss.NewStyle().Foreground(color).
					Render(sparkline(entry.Series[facetKey], entry.Bounds, innerWidth)))
			}
		} else {
			lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.LoadingText).Render("fetching data..."))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("(no queries)"))
	}

	content := strings.Join(blocks, "\n\n")
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(model.theme.FocusBorder).
		Width(width).
		Padding(0, 1).
		Render(content)
}

// renderLogsTab shows the log list, the search input when active, and
// the detail view when an entry is open.
func (model Model) renderLogsTab(height int) string {
	if model.focus == FocusLogDetail {
		return model.renderLogDetail(height)
	}

	var rows []string

	if model.focus == FocusSearch {
		rows = append(rows, model.searchInput.View())
	}
	if filters := model.logs.Filters(); len(filters) > 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(model.theme.FilterActive).
			Render("filters: "+strings.Join(filters, ", ")))
	}

	timestamps := model.logs.Timestamps()
	if len(timestamps) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("(no log entries)"))
	}
	for index, timestamp := range timestamps {
		preview := ""
		if lines := model.logs.Lines(timestamp); len(lines) > 0 {
			preview = lines[0]
		}
		label := truncate(timestamp+"  "+preview, max(model.width-4, 20))

		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if index == model.logCursor {
			style = style.
				Background(model.theme.SelectedBackground).
				Foreground(model.theme.SelectedForeground)
		}
		rows = append(rows, style.Render(label))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Width(max(model.width-2, 20)).
		Height(height-2).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

// renderLogDetail shows one entry's lines with a line cursor; the
// selected line is the correlation pivot.
func (model Model) renderLogDetail(height int) string {
	var rows []string
	rows = append(rows, lipgloss.NewStyle().Bold(true).Foreground(model.theme.NormalText).
		Render(model.detailTimestamp))

	for index, line := range model.logs.Lines(model.detailTimestamp) {
		style := lipgloss.NewStyle().Foreground(model.theme.NormalText)
		if index == model.detailCursor {
			style = style.
				Background(model.theme.SelectedBackground).
				Foreground(model.theme.SelectedForeground)
		}
		rows = append(rows, style.Render(truncate(line, max(model.width-6, 20))))
	}

	rows = append(rows, "",
		lipgloss.NewStyle().Foreground(model.theme.HelpText).
			Render("c: correlate on selected line  Esc: back"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.FocusBorder).
		Width(max(model.width-2, 20)).
		Height(height-2).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

// renderPrompt draws a centered yes/no modal with the prompt input.
func (model Model) renderPrompt(title, question string) string {
	modal := model.renderModal(title, question+"\n\n"+model.promptInput.View())
	return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderModal draws a bordered box with a bold title.
func (model Model) renderModal(title, body string) string {
	content := lipgloss.NewStyle().Bold(true).Foreground(model.theme.NormalText).Render(title) +
		"\n\n" + body
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(model.theme.FocusBorder).
		Padding(1, 2).
		Render(content)
}

// renderStatusLine shows the latest background log record until it
// fades, otherwise the key help for the current tab.
func (model Model) renderStatusLine() string {
	if model.status != "" {
		color := model.theme.StatusWarn
		if model.statusLevel >= slog.LevelError {
			color = model.theme.StatusError
		}
		return lipgloss.NewStyle().Foreground(color).Render(truncate(model.status, max(model.width, 20)))
	}

	help := "j/k: move  e: query  r: rename  x: delete  d: dashboard  Tab: logs  q: quit"
	if model.tab == TabLogs {
		help = "j/k: move  Enter: detail  /: filter  Tab: graph  q: quit"
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(help)
}

// renderCentered places content in a bordered pane of the given size.
func (model Model) renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Width(width).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// sparkline samples points into width columns of block runes, scaled
// to the payload's value bounds. Empty series render as a flat line.
func sparkline(points []acquire.Point, bounds acquire.Bounds, width int) string {
	if len(points) == 0 || width <= 0 {
		return strings.Repeat(string(sparkBlocks[0]), max(width, 0))
	}

	span := bounds.MaxValue - bounds.MinValue
	var runes []rune
	for column := range width {
		index := column * len(points) / width
		value := points[index].Value

		level := 0
		if span > 0 {
			level = int((value - bounds.MinValue) / span * float64(len(sparkBlocks)-1))
		}
		if level < 0 {
			level = 0
		}
		if level >= len(sparkBlocks) {
			level = len(sparkBlocks) - 1
		}
		runes = append(runes, sparkBlocks[level])
	}
	return string(runes)
}

// sortedFacets returns an entry's facet keys in stable sorted order
// so rows do not jump between frames.
func sortedFacets(entry *dataset.Entry) []string {
	keys := make([]string, 0, len(entry.Series))
	for key := range entry.Series {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// truncate cuts a string to at most width runes, appending an
// ellipsis when it was cut.
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
