package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/randomizedcoder/bounded-queue/internal/queue"
)

// StreamResult is the outcome of Stream.
type StreamResult struct {
	N        int
	Capacity int

	// Seen counts values received in order before the first mismatch.
	Seen    int
	Elapsed time.Duration
	OK      bool

	// FirstMismatch describes the first out-of-order value, if any.
	FirstMismatch string
}

// OpsPerSec returns Seen per second of Elapsed.
func (s StreamResult) OpsPerSec() float64 {
	if secs := s.Elapsed.Seconds(); secs > 0 {
		return float64(s.Seen) / secs
	}
	return 0
}

// Stream pushes 0..n-1 from one producer through a Bounded queue of the
// given capacity and checks that the single consumer receives them in
// exactly that order.
//
// On the first out-of-order value the consumer shuts the queue down so the
// producer is released. Cancelling ctx also shuts the queue down, and
// Stream then returns ctx.Err().
func Stream(ctx context.Context, n, capacity int) (StreamResult, error) {
	res := StreamResult{N: n, Capacity: capacity}
	if n < 0 {
		return res, fmt.Errorf("%w: n must be >= 0, got %d", ErrInvalidTrial, n)
	}

	q, err := queue.New[uint64](capacity)
	if err != nil {
		return res, fmt.Errorf("bench: stream: %w", err)
	}
	stop := context.AfterFunc(ctx, q.Shutdown)
	defer stop()

	start := time.Now()

	done := make(chan error, 1)
	go func() {
		for i := range n {
			if err := q.Insert(uint64(i)); err != nil {
				if queue.IsClosed(err) {
					break
				}
				done <- err
				return
			}
		}
		q.Shutdown()
		done <- nil
	}()

	res.OK = true
	for {
		v, err := q.Retrieve()
		if err != nil {
			break
		}
		if v != uint64(res.Seen) {
			res.OK = false
			res.FirstMismatch = fmt.Sprintf("expected %d got %d", res.Seen, v)
			q.Shutdown()
			break
		}
		res.Seen++
	}
	prodErr := <-done

	res.Elapsed = time.Since(start)

	if prodErr != nil {
		res.OK = false
		return res, fmt.Errorf("bench: stream producer: %w", prodErr)
	}
	if res.OK && res.Seen != n {
		res.OK = false
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.FirstMismatch = fmt.Sprintf("seen %d but expected %d", res.Seen, n)
	}
	return res, nil
}
