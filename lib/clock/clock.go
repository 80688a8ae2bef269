// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock time so the acquisition
// pipeline's cadence gate can be tested deterministically. Production
// code injects [Real]; tests inject [Fake] and drive time forward
// with Advance.
package clock

import "time"

// Clock is the time surface the acquisition pipeline depends on.
// Anything that reads the current second or sleeps between polls goes
// through a Clock instead of the time package directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses the calling goroutine for at least d.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
