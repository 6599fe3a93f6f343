// Command driver streams a sequence through one bounded queue with a
// single producer and a single consumer and checks it arrives in order.
//
// Usage:
//
//	go run ./cmd/driver -n 1000000 -capacity 1024
//	go run ./cmd/driver 1000000 1024
//
// Exit status is 2 if the order check fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/randomizedcoder/bounded-queue/internal/bench"
)

func main() {
	n := flag.Int("n", 1_000_000, "number of items to stream")
	capacity := flag.Int("capacity", 1024, "queue capacity")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Positional n and capacity, as in "driver 1000000 1024".
	for i, dst := range []*int{n, capacity} {
		if arg := flag.Arg(i); arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil {
				log.Error().Err(err).Str("arg", arg).Msg("invalid positional argument")
				os.Exit(1)
			}
			*dst = v
		}
	}

	fmt.Printf("Driver: streaming K=%d items with capacity=%d\n", *n, *capacity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := bench.Stream(ctx, *n, *capacity)
	if err != nil {
		log.Error().Err(err).Msg("stream failed")
		os.Exit(1)
	}

	if !res.OK {
		log.Warn().Str("detail", res.FirstMismatch).Msg("ordering mismatch")
	}

	status := "PASS"
	if !res.OK {
		status = "FAIL"
	}
	fmt.Printf("%s: seen=%d, time=%.6fs, ops/s=%.0f\n",
		status, res.Seen, res.Elapsed.Seconds(), res.OpsPerSec())

	if !res.OK {
		os.Exit(2)
	}
}
