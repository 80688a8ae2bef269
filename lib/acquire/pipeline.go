// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package acquire

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vigil-project/vigil/lib/clock"
	"github.com/vigil-project/vigil/lib/query"
	"github.com/vigil-project/vigil/lib/telemetry"
)

const (
	// cadenceSeconds is the refresh interval: a fetch fires when the
	// wall-clock second is a multiple of this.
	cadenceSeconds = 5

	// pollInterval is the sub-interval between gate checks. Short
	// enough that cancellation is observed promptly.
	pollInterval = 16 * time.Millisecond

	// channelCapacity buffers payloads between frames so a producer
	// never stalls on a busy UI.
	channelCapacity = 64
)

// Pipeline owns one refresh goroutine per active query plus the
// shared channels the UI drains. All methods are safe to call from
// the UI goroutine while refresh goroutines run.
type Pipeline struct {
	client telemetry.Client
	clock  clock.Clock
	logger *slog.Logger

	payloads   chan Payload
	logBatches chan LogBatch

	mu         sync.Mutex
	cancels    map[string]context.CancelFunc
	logCancels map[string]context.CancelFunc
}

// New creates a Pipeline. The clock is injected so tests can drive
// the cadence gate deterministically.
func New(client telemetry.Client, clk clock.Clock, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		client:     client,
		clock:      clk,
		logger:     logger,
		payloads:   make(chan Payload, channelCapacity),
		logBatches: make(chan LogBatch, channelCapacity),
		cancels:    make(map[string]context.CancelFunc),
		logCancels: make(map[string]context.CancelFunc),
	}
}

// Payloads is the shared delivery channel. Per-producer order is
// preserved; the UI drains it non-blockingly once per frame.
func (pipeline *Pipeline) Payloads() <-chan Payload {
	return pipeline.payloads
}

// Logs delivers batches from log-query refresh goroutines.
func (pipeline *Pipeline) Logs() <-chan LogBatch {
	return pipeline.logBatches
}

// Start spawns the refresh goroutine for q, keyed by its canonical
// text. Starting an already-running query is a no-op.
func (pipeline *Pipeline) Start(q query.Query) {
	queryText := q.Render()

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if _, running := pipeline.cancels[queryText]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	pipeline.cancels[queryText] = cancel
	go pipeline.refresh(ctx, queryText)
}

// Stop cancels the refresh goroutine for the given canonical query
// text. Cancellation is cooperative: a request already in flight may
// complete first, and its payload is then suppressed by the ctx check
// before send (and by the dataset store's tombstone if it races).
func (pipeline *Pipeline) Stop(queryText string) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if cancel, running := pipeline.cancels[queryText]; running {
		cancel()
		delete(pipeline.cancels, queryText)
	}
}

// StartLogs spawns a log refresh goroutine for q on the same cadence.
func (pipeline *Pipeline) StartLogs(q query.Query) {
	queryText := q.Render()

	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if _, running := pipeline.logCancels[queryText]; running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	pipeline.logCancels[queryText] = cancel
	go pipeline.refreshLogs(ctx, queryText)
}

// StopLogs cancels the log refresh goroutine for queryText.
func (pipeline *Pipeline) StopLogs(queryText string) {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	if cancel, running := pipeline.logCancels[queryText]; running {
		cancel()
		delete(pipeline.logCancels, queryText)
	}
}

// Close cancels every refresh goroutine. Called on program exit.
func (pipeline *Pipeline) Close() {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()
	for queryText, cancel := range pipeline.cancels {
		cancel()
		delete(pipeline.cancels, queryText)
	}
	for queryText, cancel := range pipeline.logCancels {
		cancel()
		delete(pipeline.logCancels, queryText)
	}
}

// refresh is the per-query task loop: poll the cadence gate, fetch on
// fire, reduce, deliver. A fetch error degrades to an empty row set.
func (pipeline *Pipeline) refresh(ctx context.Context, queryText string) {
	var lastFired int64 = -1

	for ctx.Err() == nil {
		now := pipeline.clock.Now()
		second := now.Unix()
		if now.Second()%cadenceSeconds == 0 && second != lastFired {
			lastFired = second

			rows, err := pipeline.client.Query(ctx, queryText)
			if err != nil {
				// Treated as an empty result: the dashboard shows
				// "no data yet" instead of surfacing the failure.
				pipeline.logger.Debug("telemetry fetch failed", "query", queryText, "error", err)
				rows = nil
			}

			select {
			case pipeline.payloads <- reduce(queryText, rows):
			case <-ctx.Done():
				return
			}
		}
		pipeline.clock.Sleep(pollInterval)
	}
}

// refreshLogs mirrors refresh for log queries.
func (pipeline *Pipeline) refreshLogs(ctx context.Context, queryText string) {
	var lastFired int64 = -1

	for ctx.Err() == nil {
		now := pipeline.clock.Now()
		second := now.Unix()
		if now.Second()%cadenceSeconds == 0 && second != lastFired {
			lastFired = second

			rows, err := pipeline.client.QueryLogs(ctx, queryText)
			if err != nil {
				pipeline.logger.Debug("log fetch failed", "query", queryText, "error", err)
				rows = nil
			}

			select {
			case pipeline.logBatches <- LogBatch{Query: queryText, Rows: rows}:
			case <-ctx.Done():
				return
			}
		}
		pipeline.clock.Sleep(pollInterval)
	}
}
