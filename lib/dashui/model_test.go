// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigil-project/vigil/lib/acquire"
	"github.com/vigil-project/vigil/lib/query"
	"github.com/vigil-project/vigil/lib/session"
	"github.com/vigil-project/vigil/lib/telemetry"
)

// fakePipeline records Start/Stop calls and exposes hand-fed
// channels.
type fakePipeline struct {
	payloads   chan acquire.Payload
	logBatches chan acquire.LogBatch
	started     []string
	stopped     []string
	logsStarted []string
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		payloads:   make(chan acquire.Payload, 16),
		logBatches: make(chan acquire.LogBatch, 16),
	}
}

func (pipeline *fakePipeline) Start(q query.Query)      { pipeline.started = append(pipeline.started, q.Render()) }
func (pipeline *fakePipeline) Stop(queryText string)    { pipeline.stopped = append(pipeline.stopped, queryText) }
func (pipeline *fakePipeline) StartLogs(q query.Query) {
	pipeline.logsStarted = append(pipeline.logsStarted, q.Render())
}
func (pipeline *fakePipeline) StopLogs(queryText string) {}

func (pipeline *fakePipeline) Payloads() <-chan acquire.Payload { return pipeline.payloads }
func (pipeline *fakePipeline) Logs() <-chan acquire.LogBatch    { return pipeline.logBatches }

// apply runs one message through Update.
func apply(t *testing.T, model Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := model.Update(message)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return next, cmd
}

// press sends a key to the model. Named keys: "enter", "esc", "tab";
// anything else is typed as runes.
func press(t *testing.T, model Model, keys ...string) Model {
	t.Helper()
	for _, pressed := range keys {
		var message tea.KeyMsg
		switch pressed {
		case "enter":
			message = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			message = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			message = tea.KeyMsg{Type: tea.KeyTab}
		default:
			message = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(pressed)}
		}
		model, _ = apply(t, model, message)
	}
	return model
}

func testModel(t *testing.T) (Model, *fakePipeline) {
	t.Helper()
	pipeline := newFakePipeline()
	model := NewModel(pipeline, filepath.Join(t.TempDir(), "session.yaml"))
	model, _ = apply(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	return model, pipeline
}

const validQuery = "FROM Transaction SELECT count(*) WHERE app='x' SINCE 10 minutes ago UNTIL now LIMIT 100 TIMESERIES"

func payloadFor(queryText string, facets ...string) acquire.Payload {
	payload := acquire.Payload{
		Query:  queryText,
		Series: make(map[string][]acquire.Point),
		Bounds: acquire.Bounds{MinTime: 1, MinValue: 1, MaxTime: 2, MaxValue: 2},
		Facets: facets,
	}
	for _, facet := range facets {
		payload.Series[facet] = []acquire.Point{{Time: 1, Value: 1}}
	}
	return payload
}

func TestInitialStateWithoutSession(t *testing.T) {
	model, _ := testModel(t)

	if model.focus != FocusDefault || model.inputMode != ModeNormal {
		t.Errorf("initial focus/mode = %v/%v, want Default/Normal", model.focus, model.inputMode)
	}
	if model.tab != TabLogs {
		t.Errorf("initial tab = %v, want TabLogs", model.tab)
	}
	if !model.sessionLoaded {
		t.Error("sessionLoaded false with no session file")
	}
}

func TestInitStartsLogStream(t *testing.T) {
	model, pipeline := testModel(t)

	if cmd := model.Init(); cmd == nil {
		t.Error("Init returned no listener command")
	}
	if len(pipeline.logsStarted) != 1 || !strings.Contains(pipeline.logsStarted[0], "FROM Log ") {
		t.Errorf("log stream started = %v", pipeline.logsStarted)
	}
}

func TestSubmitQueryStartsAcquisition(t *testing.T) {
	model, pipeline := testModel(t)

	model = press(t, model, "e")
	if model.focus != FocusQueryInput || model.inputMode != ModeInput {
		t.Fatalf("focus/mode after e = %v/%v", model.focus, model.inputMode)
	}

	model = press(t, model, validQuery, "enter")

	parsed, err := query.Parse(validQuery)
	if err != nil {
		t.Fatal(err)
	}
	if len(pipeline.started) != 1 || pipeline.started[0] != parsed.Render() {
		t.Errorf("pipeline started = %v, want the canonical text", pipeline.started)
	}
	if model.tab != TabGraph {
		t.Error("submitting a query did not switch to the graph tab")
	}
	if model.focus != FocusDefault || model.inputMode != ModeNormal {
		t.Errorf("focus/mode after submit = %v/%v", model.focus, model.inputMode)
	}
}

func TestMalformedQuerySilentlyNotAdded(t *testing.T) {
	model, pipeline := testModel(t)

	model = press(t, model, "e", "SELECT nope", "enter")

	if len(pipeline.started) != 0 {
		t.Errorf("pipeline started %v for a malformed query", pipeline.started)
	}
	if !model.store.Empty() {
		t.Error("store gained an entry from a malformed query")
	}
	if model.focus != FocusDefault {
		t.Errorf("focus = %v after failed submit, want Default", model.focus)
	}
}

func TestEscAbortsQueryInput(t *testing.T) {
	model, pipeline := testModel(t)

	model = press(t, model, "e", "FROM partial", "esc")

	if model.focus != FocusDefault || model.inputMode != ModeNormal {
		t.Errorf("focus/mode after esc = %v/%v", model.focus, model.inputMode)
	}
	if len(pipeline.started) != 0 {
		t.Error("aborted input still started a query")
	}
	// The buffer must not leak into the next input session.
	model = press(t, model, "e")
	if model.queryInput.Value() != "" {
		t.Errorf("query buffer = %q after abort, want empty", model.queryInput.Value())
	}
}

func TestPayloadDrainAppliesAllQueued(t *testing.T) {
	model, pipeline := testModel(t)

	// Two more payloads already queued behind the one delivered.
	pipeline.payloads <- payloadFor("q2", "a")
	pipeline.payloads <- payloadFor("q3", "b")

	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "us-east", "eu-west")})

	if model.store.Len() != 3 {
		t.Fatalf("store has %d entries after drain, want 3", model.store.Len())
	}
	if model.facetColors.Len() != 4 {
		t.Errorf("facet registry has %d keys, want 4", model.facetColors.Len())
	}
}

func TestPayloadForRemovedQueryDropped(t *testing.T) {
	model, pipeline := testModel(t)
	model.tab = TabGraph

	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "a")})
	model.store.Select(0)
	model = press(t, model, "x")

	if len(pipeline.stopped) != 1 || pipeline.stopped[0] != "q1" {
		t.Fatalf("pipeline stopped = %v, want [q1]", pipeline.stopped)
	}

	// The cancelled task had one call in flight; its late payload
	// must not resurrect the entry.
	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "a")})
	if !model.store.Empty() {
		t.Error("late payload resurrected a deleted query")
	}
}

func TestDeleteWithNothingSelectedIsNoop(t *testing.T) {
	model, pipeline := testModel(t)
	model.tab = TabGraph

	model = press(t, model, "x")
	if len(pipeline.stopped) != 0 {
		t.Errorf("delete on empty store stopped %v", pipeline.stopped)
	}
}

func TestRenameCreatesAliasAndSurvivesPayload(t *testing.T) {
	model, _ := testModel(t)
	model.tab = TabGraph

	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "a")})
	model = press(t, model, "j") // select the only entry
	model = press(t, model, "r", "checkout errors", "enter")

	entry, _ := model.store.Get("q1")
	if entry.Alias != "checkout errors" {
		t.Fatalf("alias = %q", entry.Alias)
	}

	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "a")})
	entry, _ = model.store.Get("q1")
	if entry.Alias != "checkout errors" {
		t.Error("payload refresh erased the alias")
	}
}

func TestRenameOnEmptyStoreIgnored(t *testing.T) {
	model, _ := testModel(t)

	model = press(t, model, "r")
	if model.inputMode != ModeNormal {
		t.Error("rename mode entered with no entries")
	}
}

func TestSessionLoadPromptMustBeAnswered(t *testing.T) {
	pipeline := newFakePipeline()
	path := filepath.Join(t.TempDir(), "session.yaml")

	parsed, err := query.Parse(validQuery)
	if err != nil {
		t.Fatal(err)
	}
	err = session.Save(path, map[string]string{
		"good":   parsed.Render(),
		"broken": "SELECT no longer parses",
	})
	if err != nil {
		t.Fatal(err)
	}

	model := NewModel(pipeline, path)
	model, _ = apply(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})

	if model.focus != FocusSessionLoad || model.inputMode != ModeInput {
		t.Fatalf("focus/mode = %v/%v, want SessionLoad/Input", model.focus, model.inputMode)
	}

	// Esc must not dismiss the prompt.
	model = press(t, model, "esc")
	if model.focus != FocusSessionLoad {
		t.Fatal("esc dismissed the session-load prompt")
	}

	model = press(t, model, "y", "enter")

	if !model.sessionLoaded {
		t.Error("sessionLoaded still false after answering")
	}
	// The parseable entry loads with its alias; the broken one is
	// silently skipped.
	entry, exists := model.store.Get(parsed.Render())
	if !exists || entry.Alias != "good" {
		t.Errorf("loaded entry = %+v, %v", entry, exists)
	}
	if entry != nil && entry.HasData {
		t.Error("placeholder from session load claims to have data")
	}
	if model.store.Len() != 1 {
		t.Errorf("store has %d entries, want 1 (broken entry skipped)", model.store.Len())
	}
	if len(pipeline.started) != 1 {
		t.Errorf("pipeline started %v, want one query", pipeline.started)
	}
}

func TestSessionDeclineSkipsLoad(t *testing.T) {
	pipeline := newFakePipeline()
	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := session.Save(path, map[string]string{"alias": "whatever"}); err != nil {
		t.Fatal(err)
	}

	model := NewModel(pipeline, path)
	model, _ = apply(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	model = press(t, model, "n", "enter")

	if !model.sessionLoaded {
		t.Error("declining did not resolve the session")
	}
	if !model.store.Empty() || len(pipeline.started) != 0 {
		t.Error("declining still imported queries")
	}
}

func TestQuitPromptSavesAndExits(t *testing.T) {
	model, _ := testModel(t)
	model.tab = TabGraph

	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "a")})
	model.store.Select(0)
	model = press(t, model, "r", "my alias", "enter")

	model = press(t, model, "q")
	if model.focus != FocusSessionSave || model.inputMode != ModeInput {
		t.Fatalf("focus/mode after q = %v/%v", model.focus, model.inputMode)
	}

	model = press(t, model, "y")
	model, cmd := apply(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("no command returned from save prompt")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Fatal("save prompt did not quit")
	}
	if model.SaveError() != nil {
		t.Fatalf("save failed: %v", model.SaveError())
	}

	saved, err := session.Load(model.sessionPath)
	if err != nil {
		t.Fatal(err)
	}
	if saved["my alias"] != "q1" {
		t.Errorf("saved session = %v", saved)
	}
}

func TestQuitDeclineExitsWithoutSaving(t *testing.T) {
	model, _ := testModel(t)

	model = press(t, model, "q", "n")
	model, cmd := apply(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("no command returned")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Fatal("declining save did not quit")
	}
	if session.Detect(model.sessionPath) {
		t.Error("session file written despite declining")
	}
}

func TestLogDetailAndCorrelation(t *testing.T) {
	model, pipeline := testModel(t)

	batch := acquire.LogBatch{Rows: []telemetry.LogRow{
		{Timestamp: "t1", Lines: []string{"request failed for order-4711."}},
	}}
	model, _ = apply(t, model, logBatchMsg{batch: batch})

	model = press(t, model, "enter")
	if model.focus != FocusLogDetail {
		t.Fatalf("focus = %v after enter, want LogDetail", model.focus)
	}

	model = press(t, model, "c")

	if len(pipeline.started) != 1 {
		t.Fatalf("correlation started %v queries, want 1", pipeline.started)
	}
	// Last token, trailing punctuation stripped.
	if !strings.Contains(pipeline.started[0], "order-4711") ||
		strings.Contains(pipeline.started[0], "order-4711.") {
		t.Errorf("correlation query = %q", pipeline.started[0])
	}
	if model.tab != TabGraph {
		t.Error("correlation did not jump to the graph tab")
	}
}

func TestSearchFilterIsDestructive(t *testing.T) {
	model, _ := testModel(t)

	batch := acquire.LogBatch{Rows: []telemetry.LogRow{
		{Timestamp: "t1", Lines: []string{"ERROR boom"}},
		{Timestamp: "t2", Lines: []string{"all fine"}},
	}}
	model, _ = apply(t, model, logBatchMsg{batch: batch})

	model = press(t, model, "/", "ERROR", "enter")

	if !slices.Equal(model.logs.Timestamps(), []string{"t1"}) {
		t.Errorf("log entries after filter = %v, want [t1]", model.logs.Timestamps())
	}
	if model.focus != FocusDefault || model.inputMode != ModeNormal {
		t.Errorf("focus/mode after filter = %v/%v", model.focus, model.inputMode)
	}
}

func TestTabSwitchLeavesDetail(t *testing.T) {
	model, _ := testModel(t)

	batch := acquire.LogBatch{Rows: []telemetry.LogRow{{Timestamp: "t1", Lines: []string{"line"}}}}
	model, _ = apply(t, model, logBatchMsg{batch: batch})
	model = press(t, model, "enter")

	model = press(t, model, "tab")
	if model.tab != TabGraph || model.focus != FocusDefault {
		t.Errorf("tab/focus after switch = %v/%v", model.tab, model.focus)
	}
}

func TestDashboardToggle(t *testing.T) {
	model, _ := testModel(t)
	model.tab = TabGraph

	model = press(t, model, "d")
	if model.focus != FocusDashboard {
		t.Fatalf("focus = %v after d, want Dashboard", model.focus)
	}
	model = press(t, model, "d")
	if model.focus != FocusDefault {
		t.Errorf("focus = %v after second d, want Default", model.focus)
	}
}

func TestViewRendersWithoutPanicking(t *testing.T) {
	model, _ := testModel(t)
	model.tab = TabGraph

	// Every major focus state must render.
	model, _ = apply(t, model, payloadMsg{payload: payloadFor("q1", "us-east")})
	model.store.Select(0)
	for _, focus := range []Focus{FocusDefault, FocusDashboard, FocusSessionLoad, FocusSessionSave, FocusRename} {
		model.focus = focus
		if view := model.View(); view == "" {
			t.Errorf("empty view for focus %v", focus)
		}
	}

	model.focus = FocusDefault
	model.tab = TabLogs
	if view := model.View(); view == "" {
		t.Error("empty view for logs tab")
	}
}
