// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigil-project/vigil/lib/acquire"
	"github.com/vigil-project/vigil/lib/dataset"
	"github.com/vigil-project/vigil/lib/query"
	"github.com/vigil-project/vigil/lib/session"
)

// Focus identifies which panel owns keyboard input and what the
// frame renders.
type Focus int

const (
	// FocusDefault is the resting state: list navigation on the
	// active tab.
	FocusDefault Focus = iota
	// FocusQueryInput captures text for a new query.
	FocusQueryInput
	// FocusRename captures an alias for the selected query.
	FocusRename
	// FocusDashboard shows every query's series at once.
	FocusDashboard
	// FocusSessionLoad is the unescapable startup prompt asking
	// whether to import the prior session.
	FocusSessionLoad
	// FocusSessionSave is the exit prompt asking whether to persist
	// the working set.
	FocusSessionSave
	// FocusLogList highlights the log list (logs tab resting state).
	FocusLogList
	// FocusLogDetail shows one log entry's lines.
	FocusLogDetail
	// FocusSearch captures a destructive log filter.
	FocusSearch
)

// InputMode gates keyboard routing: Normal keys command the UI,
// Input keys feed the focused text buffer.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeInput
)

// Tab selects the main content view.
type Tab int

const (
	TabGraph Tab = iota
	TabLogs
)

// Acquirer is the pipeline surface the model drives. Satisfied by
// *acquire.Pipeline; tests substitute a fake with hand-fed channels.
type Acquirer interface {
	Start(q query.Query)
	Stop(queryText string)
	StartLogs(q query.Query)
	StopLogs(queryText string)
	Payloads() <-chan acquire.Payload
	Logs() <-chan acquire.LogBatch
}

// payloadMsg delivers one acquisition payload through the message
// loop. The handler drains any further queued payloads before
// re-arming the listener, so a frame applies everything available at
// that instant in arrival order.
type payloadMsg struct {
	payload acquire.Payload
}

// logBatchMsg delivers one log batch; same drain discipline.
type logBatchMsg struct {
	batch acquire.LogBatch
}

// Model is the dashboard's single-threaded state machine. It owns
// the dataset store, facet colors, and log buffer exclusively; the
// pipeline communicates with it only through channels.
type Model struct {
	pipeline    Acquirer
	store       *dataset.Store
	facetColors *dataset.FacetColors
	logs        *dataset.LogBuffer
	theme       Theme
	keys        KeyMap

	focus     Focus
	inputMode InputMode
	tab       Tab
	loading   bool

	width  int
	height int
	ready  bool

	sessionPath   string
	sessionLoaded bool

	queryInput  textinput.Model
	renameInput textinput.Model
	searchInput textinput.Model
	promptInput textinput.Model

	logCursor       int
	detailTimestamp string
	detailCursor    int

	status      string
	statusLevel slog.Level

	saveErr error
}

// NewModel creates the dashboard model. When a prior session file
// exists at sessionPath, the model starts on the session-load prompt,
// which must be answered before anything else.
func NewModel(pipeline Acquirer, sessionPath string) Model {
	queryInput := textinput.New()
	queryInput.Placeholder = "FROM ... SELECT ... WHERE ... SINCE ... UNTIL ... LIMIT ... TIMESERIES"
	queryInput.CharLimit = 0

	renameInput := textinput.New()
	renameInput.Placeholder = "alias"

	searchInput := textinput.New()
	searchInput.Placeholder = "substring filter (destructive)"

	promptInput := textinput.New()
	promptInput.Placeholder = "y/n"
	promptInput.CharLimit = 3

	model := Model{
		pipeline:    pipeline,
		store:       dataset.NewStore(),
		facetColors: dataset.NewFacetColors(),
		logs:        dataset.NewLogBuffer(),
		theme:       DefaultTheme,
		keys:        DefaultKeyMap,
		tab:         TabLogs,
		focus:       FocusDefault,
		inputMode:   ModeNormal,
		sessionPath: sessionPath,
		queryInput:  queryInput,
		renameInput: renameInput,
		searchInput: searchInput,
		promptInput: promptInput,
	}

	if session.Detect(sessionPath) {
		model.focus = FocusSessionLoad
		model.inputMode = ModeInput
		model.promptInput.Focus()
	} else {
		model.sessionLoaded = true
	}

	return model
}

// SaveError returns the error from a failed exit-time session save,
// if any, so the caller can report it after the terminal is restored.
func (model Model) SaveError() error { return model.saveErr }

// Init implements tea.Model: start the background log stream and arm
// the payload and log listeners.
func (model Model) Init() tea.Cmd {
	model.pipeline.StartLogs(defaultLogQuery())
	return tea.Batch(
		listenForPayload(model.pipeline.Payloads()),
		listenForLogBatch(model.pipeline.Logs()),
	)
}

// defaultLogQuery feeds the logs tab: the most recent log messages,
// refreshed on the same cadence as graph queries.
func defaultLogQuery() query.Query {
	return query.Query{
		Source:     "Log",
		Projection: "message",
		Filter:     "message IS NOT NULL",
		Since:      "30 minutes ago",
		Until:      "now",
		Limit:      "100",
		Mode:       query.ModeTable,
	}
}

// listenForPayload blocks until the pipeline delivers a payload, then
// feeds it into the message loop.
func listenForPayload(channel <-chan acquire.Payload) tea.Cmd {
	return func() tea.Msg {
		payload, ok := <-channel
		if !ok {
			return nil
		}
		return payloadMsg{payload: payload}
	}
}

// listenForLogBatch mirrors listenForPayload for log batches.
func listenForLogBatch(channel <-chan acquire.LogBatch) tea.Cmd {
	return func() tea.Msg {
		batch, ok := <-channel
		if !ok {
			return nil
		}
		return logBatchMsg{batch: batch}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		inputWidth := max(message.Width-4, 20)
		model.queryInput.Width = inputWidth
		model.renameInput.Width = 40
		model.searchInput.Width = 40
		return model, nil

	case payloadMsg:
		model.applyPayload(message.payload)
		model.drainPayloads()
		return model, listenForPayload(model.pipeline.Payloads())

	case logBatchMsg:
		model.logs.Append(message.batch.Rows)
		model.drainLogBatches()
		model.clampLogCursor()
		return model, listenForLogBatch(model.pipeline.Logs())

	case statusMsg:
		model.status = message.Summary
		model.statusLevel = message.Level
		return model, tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
			return statusFadeMsg{}
		})

	case statusFadeMsg:
		model.status = ""
		return model, nil

	case tea.KeyMsg:
		if model.inputMode == ModeInput {
			return model.handleInputKeys(message)
		}
		return model.handleNormalKeys(message)
	}

	return model, nil
}

// applyPayload applies one payload to the store and registers colors
// for newly observed facet keys. Payloads for tombstoned (removed)
// queries are dropped by the store; no color is assigned for them.
func (model *Model) applyPayload(payload acquire.Payload) {
	if model.store.Upsert(payload) {
		model.facetColors.Assign(payload.Facets)
		model.loading = false
	}
}

// drainPayloads applies every payload already queued, preserving
// arrival order, without blocking.
func (model *Model) drainPayloads() {
	for {
		select {
		case payload := <-model.pipeline.Payloads():
			model.applyPayload(payload)
		default:
			return
		}
	}
}

// drainLogBatches mirrors drainPayloads for log batches.
func (model *Model) drainLogBatches() {
	for {
		select {
		case batch := <-model.pipeline.Logs():
			model.logs.Append(batch.Rows)
		default:
			return
		}
	}
}

// handleNormalKeys routes a normal-mode key press.
func (model Model) handleNormalKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		model.focus = FocusSessionSave
		model.inputMode = ModeInput
		model.promptInput.Reset()
		model.promptInput.Focus()

	case key.Matches(message, model.keys.AddQuery):
		model.focus = FocusQueryInput
		model.inputMode = ModeInput
		model.queryInput.Focus()

	case key.Matches(message, model.keys.Next):
		model.moveNext()

	case key.Matches(message, model.keys.Previous):
		model.movePrevious()

	case key.Matches(message, model.keys.Delete):
		model.deleteSelected()

	case key.Matches(message, model.keys.Rename):
		// Rename needs an entry and must not hijack an input panel.
		if model.focus != FocusQueryInput && !model.store.Empty() {
			if _, selected := model.store.SelectedKey(); !selected {
				model.store.Select(0)
			}
			model.focus = FocusRename
			model.inputMode = ModeInput
			model.renameInput.Focus()
		}

	case key.Matches(message, model.keys.Dashboard):
		if model.focus == FocusDashboard {
			model.focus = FocusDefault
		} else {
			model.focus = FocusDashboard
		}

	case key.Matches(message, model.keys.SwitchTab):
		if model.tab == TabGraph {
			model.tab = TabLogs
		} else {
			model.tab = TabGraph
		}
		model.focus = FocusDefault

	case key.Matches(message, model.keys.OpenDetail):
		if model.tab == TabLogs && model.focus != FocusLogDetail {
			if timestamp, ok := model.logs.At(model.logCursor); ok {
				model.focus = FocusLogDetail
				model.detailTimestamp = timestamp
				model.detailCursor = 0
			}
		}

	case key.Matches(message, model.keys.Correlate):
		if model.focus == FocusLogDetail {
			model.correlateSelectedLine()
		}

	case key.Matches(message, model.keys.Search):
		if model.tab == TabLogs && model.focus != FocusLogDetail {
			model.focus = FocusSearch
			model.inputMode = ModeInput
			model.searchInput.Focus()
		}

	case message.Type == tea.KeyEsc:
		if model.focus == FocusLogDetail || model.focus == FocusDashboard {
			model.focus = FocusDefault
		}
	}

	return model, nil
}

// moveNext advances whichever cursor the current tab and focus own.
// The query list wraps circularly; the log cursors clamp.
func (model *Model) moveNext() {
	switch {
	case model.focus == FocusLogDetail:
		if model.detailCursor < len(model.logs.Lines(model.detailTimestamp))-1 {
			model.detailCursor++
		}
	case model.tab == TabLogs:
		if model.logCursor < model.logs.Len()-1 {
			model.logCursor++
		}
	default:
		model.store.SelectNext()
	}
}

// movePrevious is the inverse of moveNext.
func (model *Model) movePrevious() {
	switch {
	case model.focus == FocusLogDetail:
		if model.detailCursor > 0 {
			model.detailCursor--
		}
	case model.tab == TabLogs:
		if model.logCursor > 0 {
			model.logCursor--
		}
	default:
		model.store.SelectPrevious()
	}
}

// deleteSelected removes the selected query and cancels its
// acquisition task. No-op with nothing selected or on the logs tab.
func (model *Model) deleteSelected() {
	if model.tab != TabGraph {
		return
	}
	index, selected := model.store.Selected()
	if !selected {
		return
	}
	if removed, ok := model.store.Remove(index); ok {
		model.pipeline.Stop(removed)
	}
}

// correlateSelectedLine synthesizes a query from the selected log
// line's last token and submits it, jumping to the graph tab to show
// the result.
func (model *Model) correlateSelectedLine() {
	lines := model.logs.Lines(model.detailTimestamp)
	if model.detailCursor < 0 || model.detailCursor >= len(lines) {
		return
	}
	token := correlationToken(lines[model.detailCursor])
	if token == "" {
		return
	}
	model.submitQuery(correlationQuery(token))
	model.tab = TabGraph
	model.focus = FocusDefault
}

// submitQuery registers a query with the store (clearing any
// tombstone from an earlier delete) and starts its refresh task. The
// entry itself appears when the first payload lands, or immediately
// if a rename aliases it first.
func (model *Model) submitQuery(q query.Query) {
	model.store.Track(q.Render())
	model.pipeline.Start(q)
	model.loading = true
}

// handleInputKeys routes an input-mode key press: enter commits the
// focused panel's effect, esc aborts (except the session-load prompt,
// which must be answered), and everything else edits the buffer.
func (model Model) handleInputKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		return model.commitInput()

	case tea.KeyEsc:
		if model.focus == FocusSessionLoad {
			return model, nil
		}
		model.resetInputs()
		model.focus = FocusDefault
		model.inputMode = ModeNormal
		return model, nil

	default:
		var cmd tea.Cmd
		switch model.focus {
		case FocusQueryInput:
			model.queryInput, cmd = model.queryInput.Update(message)
		case FocusRename:
			model.renameInput, cmd = model.renameInput.Update(message)
		case FocusSearch:
			model.searchInput, cmd = model.searchInput.Update(message)
		case FocusSessionLoad, FocusSessionSave:
			model.promptInput, cmd = model.promptInput.Update(message)
		}
		return model, cmd
	}
}

// commitInput applies the focused buffer's effect and returns to the
// resting state.
func (model Model) commitInput() (tea.Model, tea.Cmd) {
	switch model.focus {
	case FocusQueryInput:
		// A parse failure silently does not add the query; this is
		// the designed surfacing of ParseError.
		if q, err := query.Parse(strings.TrimSpace(model.queryInput.Value())); err == nil {
			model.submitQuery(q)
			model.tab = TabGraph
		}

	case FocusRename:
		if selectedKey, ok := model.store.SelectedKey(); ok {
			if alias := strings.TrimSpace(model.renameInput.Value()); alias != "" {
				model.store.Rename(selectedKey, alias)
			}
		}

	case FocusSearch:
		model.logs.AddFilter(model.searchInput.Value())
		model.clampLogCursor()

	case FocusSessionLoad:
		if answer := strings.TrimSpace(model.promptInput.Value()); answer == "y" || answer == "Y" {
			model.loadSession()
		}
		model.sessionLoaded = true

	case FocusSessionSave:
		if answer := strings.TrimSpace(model.promptInput.Value()); answer == "y" || answer == "Y" {
			if err := model.saveSession(); err != nil {
				model.saveErr = err
			}
		}
		return model, tea.Quit
	}

	model.resetInputs()
	model.focus = FocusDefault
	model.inputMode = ModeNormal
	return model, nil
}

// resetInputs clears and blurs every text buffer.
func (model *Model) resetInputs() {
	for _, input := range []*textinput.Model{
		&model.queryInput, &model.renameInput, &model.searchInput, &model.promptInput,
	} {
		input.Reset()
		input.Blur()
	}
}

// loadSession imports the prior session: each entry's query text is
// stripped of the result-binding annotation, re-parsed, started, and
// aliased. Entries that no longer parse are skipped — a degraded
// session loads partially rather than failing.
func (model *Model) loadSession() {
	queries, err := session.Load(model.sessionPath)
	if err != nil {
		model.status = "session load failed, starting empty"
		model.statusLevel = slog.LevelWarn
		return
	}

	for alias, text := range queries {
		q, err := query.Parse(query.StripBinding(text))
		if err != nil {
			continue
		}
		model.submitQuery(q)
		model.store.Rename(q.Render(), alias)
	}
}

// saveSession flushes the working set: alias→canonical text, falling
// back to the text itself for unaliased entries.
func (model *Model) saveSession() error {
	queries := make(map[string]string, model.store.Len())
	for _, queryText := range model.store.Keys() {
		entry, _ := model.store.Get(queryText)
		alias := entry.Alias
		if alias == "" {
			alias = queryText
		}
		queries[alias] = queryText
	}
	return session.Save(model.sessionPath, queries)
}

// clampLogCursor keeps the log cursor in range after the buffer
// shrinks (destructive filter) or grows.
func (model *Model) clampLogCursor() {
	if model.logCursor >= model.logs.Len() {
		model.logCursor = model.logs.Len() - 1
	}
	if model.logCursor < 0 {
		model.logCursor = 0
	}
	if model.focus == FocusLogDetail && model.logs.Lines(model.detailTimestamp) == nil {
		// The detail entry was filtered away.
		model.focus = FocusDefault
		model.detailTimestamp = ""
		model.detailCursor = 0
	}
}
