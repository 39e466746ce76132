package cadence

import "time"

// Clock supplies wall time to a Ticker.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// VirtualClock is a manually advanced Clock for tests and offline
// rendering. It is not safe for concurrent use.
type VirtualClock struct {
	now time.Time
}

// NewVirtualClock returns a clock stopped at the Unix epoch.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Unix(0, 0)}
}

// Now returns the clock's current time.
func (c *VirtualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set moves the clock to t.
func (c *VirtualClock) Set(t time.Time) { c.now = t }
