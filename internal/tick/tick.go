// Package tick provides a cheap periodic trigger for hot loops.
//
// The benchmark harness polls a Ticker from every consumer after each
// retrieval to decide when to sample queue occupancy. Tick must therefore
// cost a few nanoseconds and be safe to call from many goroutines.
package tick

import "time"

// Ticker signals when a time interval has elapsed.
//
// Implementations are safe for concurrent use from multiple goroutines;
// at most one concurrent caller observes each tick.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// This is a non-blocking check.
	Tick() bool

	// Reset resets the ticker to start a new interval from now.
	Reset()
}

// DefaultInterval is the occupancy sampling period used by the harness.
const DefaultInterval = time.Millisecond
