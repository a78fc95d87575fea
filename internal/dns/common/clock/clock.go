// Package clock abstracts time.Now so services can be tested against a
// fixed, advanceable clock.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// RealClock delegates to the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FakeClock is a manually advanced clock for tests.
type FakeClock struct {
	current time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{current: start}
}

func (c *FakeClock) Now() time.Time { return c.current }

func (c *FakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }
