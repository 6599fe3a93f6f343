package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/spin"
	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"

	"github.com/randomizedcoder/bounded-queue/internal/config"
	"github.com/randomizedcoder/bounded-queue/internal/queue"
	"github.com/randomizedcoder/bounded-queue/internal/tick"
)

// Observer receives every finished trial, e.g. a metrics collector.
type Observer interface {
	Observe(Result)
}

// Runner runs trials against one backend.
type Runner struct {
	Backend  Backend
	Logger   zerolog.Logger
	Observer Observer

	// SampleInterval is how often consumers sample queue occupancy.
	// Zero uses tick.DefaultInterval.
	SampleInterval time.Duration
}

// NewRunner returns a Runner for backend that logs to logger.
func NewRunner(backend Backend, logger zerolog.Logger) *Runner {
	return &Runner{
		Backend:        backend,
		Logger:         logger,
		SampleInterval: tick.DefaultInterval,
	}
}

// tryInserter is implemented by backends with a non-blocking insert.
type tryInserter interface {
	TryInsert(uint64) error
}

// workerStats is owned by a single producer or consumer goroutine and only
// read after that goroutine has been joined.
type workerStats struct {
	n        int
	sum      digest
	maxDepth int
	err      error
}

// Run executes one trial.
//
// The returned error is non-nil when the trial is invalid, the backend
// could not build a queue, a worker saw an error other than
// queue.ErrClosed, or ctx was cancelled. In the last case the partial
// Result has StatusAborted.
func (r *Runner) Run(ctx context.Context, t Trial) (Result, error) {
	res := Result{Trial: t, Backend: r.Backend.Name, Total: t.Total()}
	if err := t.Validate(); err != nil {
		return res, err
	}

	q, err := r.Backend.New(t.Capacity)
	if err != nil {
		return res, fmt.Errorf("bench: new %s queue: %w", r.Backend.Name, err)
	}

	// Cancellation is delivered to blocked workers through Shutdown.
	stop := context.AfterFunc(ctx, q.Shutdown)
	defer stop()

	interval := r.SampleInterval
	if interval <= 0 {
		interval = tick.DefaultInterval
	}
	sampler := tick.NewAtomicTicker(interval)

	r.Logger.Debug().
		Str("backend", r.Backend.Name).
		Int("producers", t.Producers).
		Int("consumers", t.Consumers).
		Int("capacity", t.Capacity).
		Int("items_per_producer", t.ItemsPerProducer).
		Msg("trial start")

	prodStats := make([]workerStats, t.Producers)
	consStats := make([]workerStats, t.Consumers)

	start := time.Now()

	var consWg sync.WaitGroup
	for c := range t.Consumers {
		consWg.Add(1)
		go func(st *workerStats) {
			defer consWg.Done()
			consume(q, sampler, st)
		}(&consStats[c])
	}

	var prodWg sync.WaitGroup
	for p := range t.Producers {
		prodWg.Add(1)
		go func(p int, st *workerStats) {
			defer prodWg.Done()
			r.produce(q, t, p, st)
		}(p, &prodStats[p])
	}

	prodWg.Wait()
	q.Shutdown()
	consWg.Wait()

	res.Elapsed = time.Since(start)

	var produced, consumed digest
	var errs []error
	for i := range prodStats {
		res.Produced += prodStats[i].n
		produced.merge(prodStats[i].sum)
		if prodStats[i].err != nil {
			errs = append(errs, fmt.Errorf("producer %d: %w", i, prodStats[i].err))
		}
	}
	for i := range consStats {
		res.Consumed += consStats[i].n
		consumed.merge(consStats[i].sum)
		res.MaxDepth = max(res.MaxDepth, consStats[i].maxDepth)
		if consStats[i].err != nil {
			errs = append(errs, fmt.Errorf("consumer %d: %w", i, consStats[i].err))
		}
	}
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.OpsPerSec = float64(res.Consumed) / secs
	}

	switch {
	case ctx.Err() != nil:
		res.Status = StatusAborted
	case res.Produced == res.Total && res.Consumed == res.Total && produced == consumed:
		res.Status = StatusOK
	default:
		res.Status = StatusMismatch
	}

	r.logResult(res)
	if r.Observer != nil {
		r.Observer.Observe(res)
	}

	if len(errs) > 0 {
		return res, fmt.Errorf("bench: %s trial: %w", r.Backend.Name, errors.Join(errs...))
	}
	if res.Status == StatusAborted {
		return res, ctx.Err()
	}
	return res, nil
}

func consume(q queue.Queue[uint64], sampler tick.Ticker, st *workerStats) {
	for {
		if sampler.Tick() {
			st.maxDepth = max(st.maxDepth, q.Len())
		}
		v, err := q.Retrieve()
		if err != nil {
			if !queue.IsClosed(err) {
				st.err = err
			}
			return
		}
		st.n++
		st.sum.add(v)
	}
}

func (r *Runner) produce(q queue.Queue[uint64], t Trial, p int, st *workerStats) {
	limiter := ratelimit.NewUnlimited()
	if t.Rate > 0 {
		limiter = ratelimit.New(t.Rate)
	}

	insert := q.Insert
	if ti, ok := q.(tryInserter); ok && t.Mode == config.ModeSpin {
		insert = func(v uint64) error {
			return spinInsert(q, ti, v, t.SpinLimit)
		}
	}

	base := uint64(p) * uint64(t.ItemsPerProducer)
	for i := range t.ItemsPerProducer {
		limiter.Take()
		v := base + uint64(i)
		if err := insert(v); err != nil {
			if !queue.IsClosed(err) {
				st.err = err
			}
			return
		}
		st.n++
		st.sum.add(v)
	}
}

// spinInsert tries a non-blocking insert up to limit times before parking
// in the blocking Insert.
func spinInsert(q queue.Producer[uint64], ti tryInserter, v uint64, limit int) error {
	sw := spin.Wait{}
	for range limit {
		err := ti.TryInsert(v)
		if !queue.IsWouldBlock(err) {
			return err
		}
		sw.Once()
	}
	return q.Insert(v)
}

func (r *Runner) logResult(res Result) {
	ev := r.Logger.Info()
	if res.Status != StatusOK {
		ev = r.Logger.Warn()
	}
	ev.Str("backend", res.Backend).
		Int("producers", res.Trial.Producers).
		Int("consumers", res.Trial.Consumers).
		Int("capacity", res.Trial.Capacity).
		Int("total", res.Total).
		Int("produced", res.Produced).
		Int("consumed", res.Consumed).
		Int("max_depth", res.MaxDepth).
		Str("status", res.Status).
		Dur("elapsed", res.Elapsed).
		Float64("ops_per_sec", res.OpsPerSec).
		Msg("trial done")
}

// Sweep runs every producers × consumers × capacities combination of cfg in
// order and hands each result to rep.
//
// It stops at the first trial error (including cancellation) and returns the
// results gathered so far.
func (r *Runner) Sweep(ctx context.Context, cfg *config.Sweep, rep Reporter) ([]Result, error) {
	results := make([]Result, 0, len(cfg.Producers)*len(cfg.Consumers)*len(cfg.Capacities))
	for _, p := range cfg.Producers {
		for _, c := range cfg.Consumers {
			for _, capacity := range cfg.Capacities {
				t := Trial{
					Producers:        p,
					Consumers:        c,
					Capacity:         capacity,
					ItemsPerProducer: cfg.ItemsPerProducer,
					Rate:             cfg.Rate,
					Mode:             cfg.Mode,
					SpinLimit:        cfg.SpinLimit,
				}
				res, err := r.Run(ctx, t)
				if err != nil {
					return results, err
				}
				results = append(results, res)
				if rep != nil {
					if err := rep.Report(res); err != nil {
						return results, fmt.Errorf("bench: report: %w", err)
					}
				}
			}
		}
	}
	if rep != nil {
		if err := rep.Flush(); err != nil {
			return results, fmt.Errorf("bench: report: %w", err)
		}
	}
	return results, nil
}
