package queue_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/bounded-queue/internal/queue"
)

func newBounded[T any](t *testing.T, capacity int) *queue.Bounded[T] {
	t.Helper()
	q, err := queue.New[T](capacity)
	require.NoError(t, err)
	return q
}

// TestNew_RejectsNonPositiveCapacity verifies zero and negative capacities
// are rejected rather than clamped.
func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	for _, c := range []int{0, -1, -1024} {
		q, err := queue.New[int](c)
		require.ErrorIs(t, err, queue.ErrInvalidArgument, "capacity %d", c)
		require.Nil(t, q)
		require.False(t, queue.IsClosed(err))
	}
}

// TestNew_Capacity verifies a fresh queue reports its capacity and is empty.
func TestNew_Capacity(t *testing.T) {
	for _, c := range []int{1, 2, 3, 64, 1000} {
		q := newBounded[int](t, c)
		require.Equal(t, c, q.Cap())
		require.Equal(t, 0, q.Len())
		require.True(t, q.IsEmpty())
		require.False(t, q.Closed())
	}
}

// TestBounded_SingleGoroutineFIFO fills, drains, then closes the queue.
func TestBounded_SingleGoroutineFIFO(t *testing.T) {
	q := newBounded[int](t, 3)

	require.NoError(t, q.Insert(10))
	require.NoError(t, q.Insert(20))
	require.NoError(t, q.Insert(30))
	require.Equal(t, 3, q.Len())
	require.False(t, q.IsEmpty())

	for _, want := range []int{10, 20, 30} {
		got, err := q.Retrieve()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.True(t, q.IsEmpty())

	q.Shutdown()

	_, err := q.Retrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
	require.ErrorIs(t, q.Insert(42), queue.ErrClosed)
}

// TestBounded_WrapAround exercises the ring indices across several laps.
func TestBounded_WrapAround(t *testing.T) {
	q := newBounded[int](t, 3)

	next := 0
	want := 0
	for lap := 0; lap < 10; lap++ {
		for q.Len() < q.Cap() {
			require.NoError(t, q.Insert(next))
			next++
		}
		// Drain two, leaving one behind so head moves off zero.
		for i := 0; i < 2; i++ {
			got, err := q.Retrieve()
			require.NoError(t, err)
			require.Equal(t, want, got)
			want++
		}
	}
	for !q.IsEmpty() {
		got, err := q.Retrieve()
		require.NoError(t, err)
		require.Equal(t, want, got)
		want++
	}
	require.Equal(t, next, want)
}

// TestBounded_InsertAfterShutdownWithSpace verifies closing takes
// precedence over free capacity.
func TestBounded_InsertAfterShutdownWithSpace(t *testing.T) {
	q := newBounded[int](t, 4)
	require.NoError(t, q.Insert(1))

	q.Shutdown()

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, q.Insert(2), queue.ErrClosed)
	}
	require.Equal(t, 1, q.Len())
}

// TestBounded_DrainThenClose verifies buffered items survive Shutdown and
// come out in order before ErrClosed.
func TestBounded_DrainThenClose(t *testing.T) {
	q := newBounded[string](t, 4)
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, q.Insert(s))
	}

	q.Shutdown()
	require.True(t, q.Closed())

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Retrieve()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := q.Retrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
	_, err = q.Retrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
}

// TestBounded_SPSCDrainThenClose runs the producer and consumer on
// separate goroutines with a queue smaller than the stream.
func TestBounded_SPSCDrainThenClose(t *testing.T) {
	q := newBounded[int](t, 2)

	go func() {
		for i := 1; i <= 3; i++ {
			if err := q.Insert(i); err != nil {
				return
			}
		}
		q.Shutdown()
	}()

	var got []int
	for {
		v, err := q.Retrieve()
		if queue.IsClosed(err) {
			break
		}
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Equal(t, []int{1, 2, 3}, got)
	_, err := q.Retrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
	require.ErrorIs(t, q.Insert(7), queue.ErrClosed)
}

// TestBounded_BackpressureBlocks verifies Insert on a full queue stays
// blocked until a Retrieve frees a slot.
func TestBounded_BackpressureBlocks(t *testing.T) {
	q := newBounded[int](t, 1)
	require.NoError(t, q.Insert(111))

	var entered, finished atomic.Bool
	done := make(chan error, 1)
	go func() {
		entered.Store(true)
		done <- q.Insert(222)
		finished.Store(true)
	}()

	require.Eventually(t, entered.Load, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.False(t, finished.Load(), "Insert on a full queue returned early")
	require.Equal(t, 1, q.Len())

	got, err := q.Retrieve()
	require.NoError(t, err)
	require.Equal(t, 111, got)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Insert was not released by Retrieve")
	}

	got, err = q.Retrieve()
	require.NoError(t, err)
	require.Equal(t, 222, got)

	q.Shutdown()
	_, err = q.Retrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
}

// TestBounded_RetrieveWaitsForItem verifies Retrieve on an empty queue
// blocks until an Insert arrives.
func TestBounded_RetrieveWaitsForItem(t *testing.T) {
	q := newBounded[int](t, 2)

	type result struct {
		v   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := q.Retrieve()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		t.Fatalf("Retrieve on an empty queue returned early: %v, %v", r.v, r.err)
	case <-time.After(30 * time.Millisecond):
	}

	require.NoError(t, q.Insert(7))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.Equal(t, 7, r.v)
	case <-time.After(time.Second):
		t.Fatal("Retrieve was not released by Insert")
	}

	q.Shutdown()
}

// TestBounded_ShutdownWakesBothSides verifies Shutdown releases a consumer
// blocked on an empty queue and a producer blocked on a full one.
//
// Two queues are used so the blocked producer's pending item cannot be
// handed to the blocked consumer.
func TestBounded_ShutdownWakesBothSides(t *testing.T) {
	empty := newBounded[int](t, 1)
	full := newBounded[int](t, 1)
	require.NoError(t, full.Insert(1))

	consumerErr := make(chan error, 1)
	go func() {
		_, err := empty.Retrieve()
		consumerErr <- err
	}()

	producerErr := make(chan error, 1)
	go func() {
		producerErr <- full.Insert(2)
	}()

	time.Sleep(30 * time.Millisecond)
	empty.Shutdown()
	full.Shutdown()

	for name, ch := range map[string]chan error{"consumer": consumerErr, "producer": producerErr} {
		select {
		case err := <-ch:
			require.ErrorIs(t, err, queue.ErrClosed, name)
		case <-time.After(time.Second):
			t.Fatalf("%s still blocked after Shutdown", name)
		}
	}

	// The item buffered before Shutdown is still there.
	v, err := full.Retrieve()
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

// TestBounded_ShutdownWakesBothSidesSameQueue blocks a producer and a
// consumer on one capacity-1 queue.
//
// The consumer may legitimately take the buffered item first, which in
// turn lets the producer through; whatever happens, nothing may hang and
// every item must be accounted for.
func TestBounded_ShutdownWakesBothSidesSameQueue(t *testing.T) {
	q := newBounded[int](t, 1)

	var wg sync.WaitGroup
	var retrieved []int
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			v, err := q.Retrieve()
			if err != nil {
				assert.ErrorIs(t, err, queue.ErrClosed)
				return
			}
			mu.Lock()
			retrieved = append(retrieved, v)
			mu.Unlock()
		}
	}()

	require.NoError(t, q.Insert(1))
	inserted := 1

	producerErr := make(chan error, 1)
	go func() {
		producerErr <- q.Insert(2)
	}()

	time.Sleep(30 * time.Millisecond)
	q.Shutdown()

	select {
	case err := <-producerErr:
		if err == nil {
			inserted++
		} else {
			require.ErrorIs(t, err, queue.ErrClosed)
		}
	case <-time.After(time.Second):
		t.Fatal("producer still blocked after Shutdown")
	}

	waitTimeout(t, &wg, time.Second)
	require.Len(t, retrieved, inserted)
}

// TestBounded_ShutdownWakesAllWaiters parks many producers and many
// consumers and checks a single Shutdown releases every one of them.
func TestBounded_ShutdownWakesAllWaiters(t *testing.T) {
	empty := newBounded[int](t, 1)
	full := newBounded[int](t, 1)
	require.NoError(t, full.Insert(0))

	const waiters = 16
	var wg sync.WaitGroup
	var closed atomic.Int32
	for i := 0; i < waiters; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := empty.Retrieve(); queue.IsClosed(err) {
				closed.Add(1)
			}
		}()
		go func(v int) {
			defer wg.Done()
			if queue.IsClosed(full.Insert(v)) {
				closed.Add(1)
			}
		}(i + 1)
	}

	time.Sleep(30 * time.Millisecond)
	empty.Shutdown()
	full.Shutdown()

	waitTimeout(t, &wg, 2*time.Second)
	require.EqualValues(t, 2*waiters, closed.Load())
}

// TestBounded_ShutdownIdempotent verifies repeated and concurrent
// Shutdown calls behave like a single call.
func TestBounded_ShutdownIdempotent(t *testing.T) {
	q := newBounded[int](t, 2)
	require.NoError(t, q.Insert(5))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Shutdown()
		}()
	}
	wg.Wait()
	q.Shutdown()

	require.True(t, q.Closed())
	require.Equal(t, 1, q.Len())
	v, err := q.Retrieve()
	require.NoError(t, err)
	require.Equal(t, 5, v)
	_, err = q.Retrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
}

// TestBounded_TryOperations covers the non-blocking variants.
func TestBounded_TryOperations(t *testing.T) {
	q := newBounded[int](t, 2)

	_, err := q.TryRetrieve()
	require.ErrorIs(t, err, queue.ErrWouldBlock)
	require.True(t, queue.IsWouldBlock(err))

	require.NoError(t, q.TryInsert(1))
	require.NoError(t, q.TryInsert(2))
	err = q.TryInsert(3)
	require.True(t, queue.IsWouldBlock(err))
	require.Equal(t, 2, q.Len())

	v, err := q.TryRetrieve()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	q.Shutdown()
	require.ErrorIs(t, q.TryInsert(4), queue.ErrClosed)

	v, err = q.TryRetrieve()
	require.NoError(t, err)
	require.Equal(t, 2, v)

	_, err = q.TryRetrieve()
	require.ErrorIs(t, err, queue.ErrClosed)
	require.False(t, queue.IsWouldBlock(err))
}

// TestBounded_TryInsertWakesRetrieve verifies a non-blocking insert still
// signals a blocked consumer.
func TestBounded_TryInsertWakesRetrieve(t *testing.T) {
	q := newBounded[int](t, 1)

	done := make(chan int, 1)
	go func() {
		v, err := q.Retrieve()
		if err == nil {
			done <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, q.TryInsert(9))

	select {
	case v := <-done:
		require.Equal(t, 9, v)
	case <-time.After(time.Second):
		t.Fatal("Retrieve not woken by TryInsert")
	}
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("goroutines did not finish in time")
	}
}
