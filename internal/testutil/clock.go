// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced time source. Its Now method fits any
// func() time.Time hook.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewFakeClock returns a clock at initial, or at 2020-01-01 UTC when
// initial is zero.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeClock{current: initial}
}

// Now returns the current time and then advances by the configured step.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Tick makes every Now call advance the clock by d afterwards.
func (c *FakeClock) Tick(d time.Duration) *FakeClock {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = d
	return c
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
