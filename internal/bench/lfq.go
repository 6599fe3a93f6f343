package bench

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"

	"github.com/randomizedcoder/bounded-queue/internal/queue"
)

// lfqQueue adapts the lock-free lfq.MPMC ring to queue.Queue.
//
// lfq never blocks: a full Enqueue or empty Dequeue returns ErrWouldBlock,
// so Insert and Retrieve retry with an iox.Backoff until they succeed or
// the queue is shut down. Cap reports lfq's capacity, which is rounded up
// to a power of two (minimum 2). Len is an approximate counter.
//
// As with queue.Channel, an Insert racing Shutdown can strand a value.
// The harness only calls Shutdown after every producer has returned.
type lfqQueue struct {
	q      *lfq.MPMC[uint64]
	closed atomix.Bool
	n      atomix.Int64
}

func newLFQ(capacity int) (queue.Queue[uint64], error) {
	if capacity <= 0 {
		return nil, queue.ErrInvalidArgument
	}
	return &lfqQueue{q: lfq.NewMPMC[uint64](max(capacity, 2))}, nil
}

func (l *lfqQueue) Insert(v uint64) error {
	var backoff iox.Backoff
	for {
		if l.closed.Load() {
			return queue.ErrClosed
		}
		if err := l.q.Enqueue(&v); err == nil {
			l.n.Add(1)
			return nil
		}
		backoff.Wait()
	}
}

func (l *lfqQueue) Retrieve() (uint64, error) {
	var backoff iox.Backoff
	for {
		v, err := l.q.Dequeue()
		if err == nil {
			l.n.Add(-1)
			return v, nil
		}
		if l.closed.Load() {
			// Closed and empty after one more attempt in drain mode.
			if v, err := l.q.Dequeue(); err == nil {
				l.n.Add(-1)
				return v, nil
			}
			return 0, queue.ErrClosed
		}
		backoff.Wait()
	}
}

func (l *lfqQueue) TryInsert(v uint64) error {
	if l.closed.Load() {
		return queue.ErrClosed
	}
	if err := l.q.Enqueue(&v); err != nil {
		return queue.ErrWouldBlock
	}
	l.n.Add(1)
	return nil
}

func (l *lfqQueue) Shutdown() {
	l.q.Drain()
	l.closed.Store(true)
}

func (l *lfqQueue) Cap() int { return l.q.Cap() }

func (l *lfqQueue) Len() int { return int(l.n.Load()) }
