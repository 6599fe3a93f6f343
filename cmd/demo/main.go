// Command demo runs a tiny two-goroutine pipeline over a bounded queue of
// capacity 2: the producer inserts 1..5 and shuts the queue down, the
// consumer prints each value and then "closed".
//
// Usage:
//
//	go run ./cmd/demo
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/randomizedcoder/bounded-queue/internal/queue"
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run(w io.Writer) error {
	q, err := queue.New[int](2)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer q.Shutdown()
		for i := 1; i <= 5; i++ {
			if err := q.Insert(i); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		v, err := q.Retrieve()
		if queue.IsClosed(err) {
			fmt.Fprintln(w, "closed")
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
	}
	return <-done
}
