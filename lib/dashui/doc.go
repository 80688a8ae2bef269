// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashui is the dashboard's UI state machine, built on
// bubbletea (Elm architecture). The [Model] owns every piece of
// mutable dashboard state — focus, input mode, active tab, the
// dataset store, facet colors, and the log buffer — and mutates it
// only inside Update, on the program goroutine.
//
// Data flow:
//
//	[telemetry backend]
//	        | (acquire.Pipeline, one goroutine per query)
//	   payload / log channels
//	        | (listen commands, drained per frame)
//	     [Model] <- keyboard events
//	        |
//	  [terminal output]
//
// Keyboard routing is two-level: InputMode decides whether a key
// commands the UI (Normal) or edits the focused text buffer (Input),
// and Focus decides which panel the command or buffer belongs to.
// The session-load prompt is the single exception to Esc-aborts: it
// must be answered before the dashboard becomes interactive.
package dashui
