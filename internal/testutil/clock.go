// Package testutil provides shared test fixtures: a manually advanced
// clock and a temp-file backed store.
package testutil

import "time"

// Clock is a manually advanced clock for deterministic time-dependent
// tests. Pass Now to WithClock options.
type Clock struct {
	t time.Time
}

// NewClock returns a clock fixed at a stable reference instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.t }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.t = c.t.Add(d) }
