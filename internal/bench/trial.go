package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/randomizedcoder/bounded-queue/internal/config"
)

// Trial statuses.
const (
	StatusOK       = "ok"
	StatusMismatch = "mismatch"
	StatusAborted  = "aborted"
)

// ErrInvalidTrial is returned by Run for a malformed Trial.
var ErrInvalidTrial = errors.New("bench: invalid trial")

// Trial is one point of the sweep.
type Trial struct {
	Producers        int
	Consumers        int
	Capacity         int
	ItemsPerProducer int

	// Rate paces each producer to this many inserts per second. 0 = unpaced.
	Rate int

	// Mode is config.ModeBlock or config.ModeSpin. Empty means block.
	Mode string

	// SpinLimit bounds TryInsert attempts per item in spin mode.
	SpinLimit int
}

// Total returns the number of items the trial inserts.
func (t Trial) Total() int {
	return t.Producers * t.ItemsPerProducer
}

// Validate checks the trial parameters.
func (t Trial) Validate() error {
	switch {
	case t.Producers < 1:
		return fmt.Errorf("%w: producers must be >= 1, got %d", ErrInvalidTrial, t.Producers)
	case t.Consumers < 1:
		return fmt.Errorf("%w: consumers must be >= 1, got %d", ErrInvalidTrial, t.Consumers)
	case t.Capacity < 1:
		return fmt.Errorf("%w: capacity must be >= 1, got %d", ErrInvalidTrial, t.Capacity)
	case t.ItemsPerProducer < 0:
		return fmt.Errorf("%w: items per producer must be >= 0, got %d", ErrInvalidTrial, t.ItemsPerProducer)
	case t.Rate < 0:
		return fmt.Errorf("%w: rate must be >= 0, got %d", ErrInvalidTrial, t.Rate)
	case t.Mode != "" && t.Mode != config.ModeBlock && t.Mode != config.ModeSpin:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidTrial, t.Mode)
	}
	return nil
}

// Result is the outcome of one trial.
type Result struct {
	Trial   Trial
	Backend string

	Total    int
	Produced int
	Consumed int
	Status   string

	Elapsed   time.Duration
	OpsPerSec float64

	// MaxDepth is the largest queue length observed by the occupancy sampler.
	MaxDepth int
}

// OK reports whether every item made it through exactly once.
func (r Result) OK() bool {
	return r.Status == StatusOK
}
