// Copyright 2026 The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock pinned at initial. Time stands still until
// Advance is called; goroutines blocked in Sleep wake when the clock
// passes their deadline.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	fake := &FakeClock{current: initial}
	fake.changed = sync.NewCond(&fake.mu)
	return fake
}

// FakeClock is a deterministic Clock for tests. Sleep blocks the
// caller until Advance moves the clock past the sleep deadline.
type FakeClock struct {
	mu      sync.Mutex
	changed *sync.Cond
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	wake     chan struct{}
}

// Now returns the fake current time.
func (fake *FakeClock) Now() time.Time {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.current
}

// Sleep blocks until the clock advances past d from the current fake
// time. A non-positive d returns immediately.
func (fake *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	fake.mu.Lock()
	waiter := &fakeWaiter{
		deadline: fake.current.Add(d),
		wake:     make(chan struct{}),
	}
	fake.waiters = append(fake.waiters, waiter)
	fake.changed.Broadcast()
	fake.mu.Unlock()

	<-waiter.wake
}

// Advance moves the clock forward by d and wakes every sleeper whose
// deadline has been reached.
func (fake *FakeClock) Advance(d time.Duration) {
	fake.mu.Lock()
	fake.current = fake.current.Add(d)

	remaining := fake.waiters[:0]
	var due []*fakeWaiter
	for _, waiter := range fake.waiters {
		if !waiter.deadline.After(fake.current) {
			due = append(due, waiter)
		} else {
			remaining = append(remaining, waiter)
		}
	}
	fake.waiters = remaining
	fake.mu.Unlock()

	for _, waiter := range due {
		close(waiter.wake)
	}
}

// BlockUntilSleepers waits until at least count goroutines are blocked
// in Sleep. Tests call this before Advance so a wake cannot race the
// sleeper's registration.
func (fake *FakeClock) BlockUntilSleepers(count int) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	for len(fake.waiters) < count {
		fake.changed.Wait()
	}
}
