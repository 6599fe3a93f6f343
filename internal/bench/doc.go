// Package bench drives producer/consumer trials against a queue backend
// and reports throughput and correctness.
//
// A trial starts P producers and C consumers on one fresh queue. Producer
// p inserts the values p*items .. p*items+items-1. Once every producer has
// returned the harness calls Shutdown, and consumers retrieve until they
// observe queue.ErrClosed. A trial is "ok" when the produced and consumed
// counts both equal P*items and the order-independent digests of the two
// value streams match.
//
// Sweep repeats Run over a producers × consumers × capacities grid, and
// Stream is the single-producer ordering check.
package bench
