// Package queue provides a blocking, capacity-bounded FIFO queue for
// connecting producer and consumer goroutines.
//
// This package offers two implementations of the Queue interface:
//   - Bounded: mutex + condition variables, the reference implementation
//   - Channel: buffered channel baseline, used for comparison benchmarks
//
// # Shutdown
//
// Shutdown is the only cancellation primitive. After Shutdown:
//   - every Insert fails with ErrClosed, even if space is available
//   - Retrieve keeps returning buffered values in FIFO order
//   - Retrieve fails with ErrClosed once the buffer is empty
//
// Every goroutine blocked in Insert or Retrieve is woken by Shutdown.
// A caller that wants a timed wait races the call against its own timer
// and calls Shutdown, e.g. with context.AfterFunc(ctx, q.Shutdown).
//
// Typical pipeline stage:
//
//	q, err := queue.New[Event](1024)
//	if err != nil {
//	    return err
//	}
//
//	go func() { // producer
//	    defer q.Shutdown()
//	    for ev := range input {
//	        if err := q.Insert(ev); err != nil {
//	            return
//	        }
//	    }
//	}()
//
//	for { // consumer
//	    ev, err := q.Retrieve()
//	    if queue.IsClosed(err) {
//	        break
//	    }
//	    process(ev)
//	}
package queue

// Producer is the inserting side of a queue.
type Producer[T any] interface {
	// Insert blocks while the queue is full and open.
	// Returns ErrClosed if the queue has been shut down.
	Insert(v T) error
}

// Consumer is the retrieving side of a queue.
type Consumer[T any] interface {
	// Retrieve blocks while the queue is empty and open.
	// Returns ErrClosed only when the queue is shut down and drained.
	Retrieve() (T, error)
}

// Queue is a blocking bounded FIFO queue with close-then-drain shutdown.
//
// Implementations must be safe for concurrent use by any number of
// producers and consumers.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]

	// Shutdown closes the queue. Safe to call multiple times and
	// concurrently with Insert and Retrieve.
	Shutdown()

	// Cap returns the capacity fixed at construction.
	Cap() int

	// Len returns the number of buffered items.
	// The value may be stale as soon as it is returned.
	Len() int
}
