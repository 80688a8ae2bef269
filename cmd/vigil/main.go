// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// vigil is an interactive terminal dashboard for composing telemetry
// queries and watching their results refresh live. Queries are typed
// in a clause-ordered query language, graphed as per-facet sparklines,
// aliased for readability, and persisted across runs in a YAML session
// file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/vigil-project/vigil/lib/acquire"
	"github.com/vigil-project/vigil/lib/clock"
	"github.com/vigil-project/vigil/lib/dashui"
	"github.com/vigil-project/vigil/lib/telemetry"
	"github.com/vigil-project/vigil/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var sessionPath string
	var endpoint string
	var account string
	var apiKey string
	var logOutput string

	flagSet := pflag.NewFlagSet("vigil", pflag.ContinueOnError)
	flagSet.StringVar(&sessionPath, "session", defaultSessionPath(), "path to the YAML session file")
	flagSet.StringVar(&endpoint, "endpoint", "https://api.newrelic.com/graphql", "telemetry API endpoint")
	flagSet.StringVar(&account, "account", "", "telemetry account ID")
	flagSet.StringVar(&apiKey, "api-key", "", "telemetry API key (default: $VIGIL_API_KEY)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to the status line)")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing so it works regardless of
	// other flags.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("vigil")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	if apiKey == "" {
		apiKey = os.Getenv("VIGIL_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: pass --api-key or set VIGIL_API_KEY")
	}
	if account == "" {
		return fmt.Errorf("no account: pass --account")
	}

	// Background logging (refresh failures, session warnings) routes
	// through a handler that displays records in the status line
	// instead of writing to stderr, which would corrupt the alt-screen
	// display. An optional file handler captures everything for
	// post-mortem debugging.
	statusHandler := dashui.NewStatusLogHandler(slog.LevelWarn)
	var logger *slog.Logger
	if logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(logOutput)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", logOutput, err)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{statusHandler, fileHandler})
	} else {
		logger = slog.New(statusHandler)
	}

	client := telemetry.NewHTTPClient(endpoint, account, apiKey)
	pipeline := acquire.New(client, clock.Real(), logger)
	defer pipeline.Close()

	model := dashui.NewModel(pipeline, sessionPath)
	program := tea.NewProgram(model, tea.WithAltScreen())
	statusHandler.SetProgram(program)

	final, err := program.Run()
	if err != nil {
		return err
	}
	if finalModel, ok := final.(dashui.Model); ok {
		if saveErr := finalModel.SaveError(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: session not saved: %v\n", saveErr)
		}
	}
	return nil
}

// defaultSessionPath is ~/.config/vigil/session.yaml, falling back to
// a relative path when the home directory cannot be determined.
func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.yaml"
	}
	return filepath.Join(home, ".config", "vigil", "session.yaml")
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Vigil — interactive telemetry dashboard.

Type queries in strict clause order:

  FROM <source> SELECT <projection> WHERE <filter> [FACET <grouping>]
  SINCE <time> UNTIL <time> LIMIT <n> TIMESERIES|TABLE

Each query refreshes every five seconds and renders one sparkline per
facet. Keys: e add query, j/k move, r rename, x delete, d dashboard,
tab switch graph/logs, / filter logs, enter open log entry,
c correlate, q quit.

On startup, if a prior session file exists you are asked whether to
load it; on quit you are asked whether to save the current working
set. Sessions live at ~/.config/vigil/session.yaml by default.

Usage:
  vigil [flags]

Examples:
  # Run against an account, key from the environment
  VIGIL_API_KEY=... vigil --account 1234567

  # Keep a JSON debug log alongside the TUI
  vigil --account 1234567 --api-key ... --log-output /tmp/vigil.log

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

// openFileLogHandler creates a slog.JSONHandler writing to the given
// path. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler sends each record to multiple underlying handlers. A
// record is enabled if any sub-handler is enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
