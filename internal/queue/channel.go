package queue

import (
	"fmt"
	"sync"
)

// Channel wraps a buffered channel as a Queue.
//
// This is the standard library baseline the benchmarks compare Bounded
// against. Insert is a channel send, Retrieve a receive, and Shutdown
// closes a separate done channel so a blocked send is never left racing a
// close of the data channel.
//
// Unlike Bounded, an Insert that is already blocked when Shutdown runs may
// still complete, and a value it stores after every consumer has observed
// ErrClosed stays in the buffer. Shutdown after all producers have
// returned (the usual pipeline pattern) loses nothing.
type Channel[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// NewChannel creates a Channel with the specified buffer size.
// Returns ErrInvalidArgument if capacity <= 0.
func NewChannel[T any](capacity int) (*Channel[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidArgument, capacity)
	}
	return &Channel[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}, nil
}

// Insert sends v, blocking while the buffer is full.
// Returns ErrClosed if Shutdown has been called.
func (q *Channel[T]) Insert(v T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- v:
		return nil
	case <-q.done:
		return ErrClosed
	}
}

// Retrieve receives the oldest item, blocking while the buffer is empty.
// Returns ErrClosed once Shutdown has been called and the buffer is empty.
func (q *Channel[T]) Retrieve() (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-q.done:
	}

	// Closed: drain what is left without blocking.
	select {
	case v := <-q.ch:
		return v, nil
	default:
		var zero T
		return zero, ErrClosed
	}
}

// TryInsert sends v without blocking.
// Returns ErrClosed after Shutdown and ErrWouldBlock while the buffer is full.
func (q *Channel[T]) TryInsert(v T) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- v:
		return nil
	default:
		return ErrWouldBlock
	}
}

// TryRetrieve receives the oldest item without blocking.
// Returns ErrWouldBlock while the buffer is empty and the queue open.
func (q *Channel[T]) TryRetrieve() (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	default:
	}

	var zero T
	select {
	case <-q.done:
		return zero, ErrClosed
	default:
		return zero, ErrWouldBlock
	}
}

// Shutdown closes the queue and wakes every blocked Insert and Retrieve.
//
// Safe to call multiple times; subsequent calls are no-ops.
func (q *Channel[T]) Shutdown() {
	q.once.Do(func() {
		close(q.done)
	})
}

// Len returns the current number of items in the queue.
func (q *Channel[T]) Len() int {
	return len(q.ch)
}

// Cap returns the capacity of the queue.
func (q *Channel[T]) Cap() int {
	return cap(q.ch)
}
