// Package combined provides interaction benchmarks that run several
// queue implementations under the same producer/consumer load.
//
// These benchmarks are more representative of real-world performance
// than isolated micro-benchmarks, as they capture wakeup costs,
// contention and the harness' own per-item overhead together.
//
// Implementations compared:
//   - queue.Bounded: mutex + two condition variables (blocking)
//   - queue.Channel: buffered channel baseline (blocking)
//   - lfq.MPMC: lock-free, non-blocking, retried with iox.Backoff
//   - go-lock-free-ring ShardedRing: lock-free MPSC, single consumer only
package combined
