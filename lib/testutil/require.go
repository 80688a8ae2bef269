// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds small helpers shared by tests, mainly
// channel assertions with built-in timeouts so individual tests do
// not hand-roll select/time.After scaffolding.
package testutil

import (
	"fmt"
	"time"
)

// failer is the subset of *testing.T these helpers need.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from channel within timeout, or
// fails the test.
//
//	payload := testutil.RequireReceive(t, pipeline.Payloads(), 5*time.Second, "waiting for payload")
func RequireReceive[T any](t failer, channel <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	select {
	case value, ok := <-channel:
		if !ok {
			t.Fatalf("channel closed without a value: %s", formatMessage(msgAndArgs))
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, formatMessage(msgAndArgs))
	}
	panic("unreachable")
}

// RequireNoReceive asserts that channel stays silent for the full
// wait duration. Used to pin down "no payload after cancellation"
// guarantees.
func RequireNoReceive[T any](t failer, channel <-chan T, wait time.Duration, msgAndArgs ...any) {
	t.Helper()
	select {
	case value := <-channel:
		t.Fatalf("unexpected value %v: %s", value, formatMessage(msgAndArgs))
	case <-time.After(wait):
	}
}

func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if format, ok := msgAndArgs[0].(string); ok && len(msgAndArgs) > 1 {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
