package tick

import (
	"time"
	_ "unsafe" // Required for go:linkname

	"code.hybscloud.com/atomix"
)

// nanotime returns the current monotonic time in nanoseconds.
// This is faster than time.Now() because it returns a single int64
// and avoids constructing a time.Time struct.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// AtomicTicker uses atomic operations and runtime.nanotime for fast tick checks.
//
// Typical performance: ~3-5ns per Tick() when the interval has not elapsed.
type AtomicTicker struct {
	interval int64         // nanoseconds
	lastTick atomix.Uint64 // nanotime of the last tick
}

// NewAtomicTicker creates an AtomicTicker with the specified interval.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{
		interval: int64(interval),
	}
	t.lastTick.StoreRelease(uint64(nanotime()))
	return t
}

// Tick returns true if the interval has elapsed since the last tick.
//
// A compare-and-swap makes sure only one of several concurrent callers
// observes a given tick.
func (a *AtomicTicker) Tick() bool {
	now := uint64(nanotime())
	last := a.lastTick.LoadAcquire()

	if int64(now-last) >= a.interval {
		return a.lastTick.CompareAndSwapAcqRel(last, now)
	}
	return false
}

// Reset resets the ticker to start a new interval from now.
func (a *AtomicTicker) Reset() {
	a.lastTick.StoreRelease(uint64(nanotime()))
}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.interval)
}
