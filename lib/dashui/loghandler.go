// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package dashui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// statusMsg delivers a slog record to the model for display in the
// status line. Writing to stderr would corrupt the alt-screen
// display, so background components log through this path instead.
type statusMsg struct {
	Summary string
	Level   slog.Level
}

// statusFadeMsg clears the status line after a delay, restoring the
// keyboard help text.
type statusFadeMsg struct{}

// statusFadeDelay is how long a log record stays visible.
const statusFadeDelay = 5 * time.Second

// StatusLogHandler is a slog.Handler that forwards records at or
// above its level into the bubbletea program as status-line messages.
// Create it before the program, then call SetProgram once the
// tea.Program exists; records arriving earlier are dropped.
type StatusLogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
}

// NewStatusLogHandler creates a handler delivering records at or
// above level.
func NewStatusLogHandler(level slog.Level) *StatusLogHandler {
	return &StatusLogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram attaches the bubbletea program. Safe from any goroutine;
// handlers derived via WithAttrs share the pointer, so one call
// covers them all.
func (handler *StatusLogHandler) SetProgram(program *tea.Program) {
	handler.program.Store(program)
}

// Enabled implements slog.Handler.
func (handler *StatusLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as a one-line summary and sends it to
// the program.
func (handler *StatusLogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}

	summary := record.Message
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
		return true
	})
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	program.Send(statusMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler; the derived handler shares the
// program pointer.
func (handler *StatusLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(handler.attrs)+len(attrs))
	combined = append(combined, handler.attrs...)
	combined = append(combined, attrs...)
	return &StatusLogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   combined,
	}
}

// WithGroup implements slog.Handler. Group nesting adds nothing on a
// one-line status display, so it is a no-op.
func (handler *StatusLogHandler) WithGroup(string) slog.Handler {
	return handler
}
