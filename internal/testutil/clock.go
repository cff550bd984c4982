// Package testutil provides shared test fixtures for the watchdesk engine.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is an engine.Clock that returns a preset instant.
//
// Rule boundaries (midnight, the end-of-day hours, the overdue threshold)
// are all functions of "now", so tests pin now to a known instant and
// advance it explicitly instead of sleeping.
//
// Thread-safety: all methods are safe for concurrent use.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock pinned to t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
