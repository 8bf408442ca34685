package trace

import "sync/atomic"

// Sequencer hands out strictly increasing seq values.
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock. Every journal row is stamped with a
// strictly increasing seq from a Clock, never with wall time, so replaying
// the same rewrites yields the same journal.
//
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start. Used to continue numbering
// after the last row of an existing journal.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
