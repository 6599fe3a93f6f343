package queue

import (
	"fmt"
	"sync"
)

// Bounded is a blocking FIFO queue holding at most Cap() items.
//
// All operations run under a single mutex. Producers wait on notFull,
// consumers wait on notEmpty; Shutdown broadcasts on both.
//
// Safe for any number of concurrent producers and consumers.
type Bounded[T any] struct {
	mu       sync.Mutex
	notFull  sync.Cond
	notEmpty sync.Cond

	buf    []T
	head   int // index of the oldest item
	count  int
	closed bool
}

// New creates a Bounded queue with the given capacity.
// Returns ErrInvalidArgument if capacity <= 0.
func New[T any](capacity int) (*Bounded[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArgument, capacity)
	}

	q := &Bounded[T]{
		buf: make([]T, capacity),
	}
	q.notFull.L = &q.mu
	q.notEmpty.L = &q.mu
	return q, nil
}

// Insert appends v, blocking while the queue is full.
//
// Returns ErrClosed if the queue is shut down before or while waiting.
// Closing takes precedence over free space.
func (q *Bounded[T]) Insert(v T) error {
	q.mu.Lock()
	for q.count == len(q.buf) && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.push(v)
	q.mu.Unlock()

	q.notEmpty.Signal()
	return nil
}

// Retrieve removes and returns the oldest item, blocking while the queue
// is empty.
//
// Buffered items stay retrievable after Shutdown. Returns ErrClosed only
// when the queue is both shut down and empty.
func (q *Bounded[T]) Retrieve() (T, error) {
	q.mu.Lock()
	for q.count == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.count == 0 {
		q.mu.Unlock()
		var zero T
		return zero, ErrClosed
	}
	v := q.pop()
	q.mu.Unlock()

	q.notFull.Signal()
	return v, nil
}

// TryInsert appends v without blocking.
// Returns ErrWouldBlock if the queue is full, ErrClosed if shut down.
func (q *Bounded[T]) TryInsert(v T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.count == len(q.buf) {
		q.mu.Unlock()
		return ErrWouldBlock
	}
	q.push(v)
	q.mu.Unlock()

	q.notEmpty.Signal()
	return nil
}

// TryRetrieve removes the oldest item without blocking.
// Returns ErrWouldBlock if the queue is empty and open, ErrClosed if
// empty and shut down.
func (q *Bounded[T]) TryRetrieve() (T, error) {
	q.mu.Lock()
	if q.count == 0 {
		closed := q.closed
		q.mu.Unlock()
		var zero T
		if closed {
			return zero, ErrClosed
		}
		return zero, ErrWouldBlock
	}
	v := q.pop()
	q.mu.Unlock()

	q.notFull.Signal()
	return v, nil
}

// Shutdown closes the queue and wakes every blocked Insert and Retrieve.
//
// Safe to call multiple times; subsequent calls are no-ops.
func (q *Bounded[T]) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Closed reports whether Shutdown has been called.
func (q *Bounded[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Cap returns the capacity of the queue.
func (q *Bounded[T]) Cap() int {
	return len(q.buf)
}

// Len returns the current number of items in the queue.
func (q *Bounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// IsEmpty reports whether the queue holds no items.
func (q *Bounded[T]) IsEmpty() bool {
	return q.Len() == 0
}

// push and pop require q.mu.

func (q *Bounded[T]) push(v T) {
	tail := q.head + q.count
	if tail >= len(q.buf) {
		tail -= len(q.buf)
	}
	q.buf[tail] = v
	q.count++
}

func (q *Bounded[T]) pop() T {
	v := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero // release references for GC
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.count--
	return v
}
