package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps journal entries.
//
// Every op gets a strictly increasing seq, so journal order never depends
// on wall time and a replay sees ops in the order they first ran.
//
// Clock is safe for concurrent use, though the engine only advances it
// from the goroutine calling Apply.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to continue numbering after the runs already in a store.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
