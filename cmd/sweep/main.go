// Command sweep runs the producers × consumers × capacities benchmark grid
// and writes one CSV row per trial to stdout.
//
// Usage:
//
//	go run ./cmd/sweep [--config sweep.yaml] [--backend bounded] [items_per_producer]
//
// Exit status is 1 on error and 3 if any trial lost or altered items.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"

	"github.com/randomizedcoder/bounded-queue/internal/bench"
	"github.com/randomizedcoder/bounded-queue/internal/config"
	"github.com/randomizedcoder/bounded-queue/internal/metrics"
)

var errMismatch = errors.New("one or more trials mismatched")

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "sweep:", err)
		if errors.Is(err, errMismatch) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "sweep"
	app.Usage = "benchmark the bounded queue over a producers × consumers × capacities grid"
	app.ArgsUsage = "[items_per_producer]"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Usage: "YAML sweep config file",
		},
		cli.IntFlag{
			Name:  "items,n",
			Usage: "items inserted by each producer per trial",
		},
		cli.IntSliceFlag{
			Name:  "producers",
			Usage: "producer counts (repeatable)",
			Value: &cli.IntSlice{},
		},
		cli.IntSliceFlag{
			Name:  "consumers",
			Usage: "consumer counts (repeatable)",
			Value: &cli.IntSlice{},
		},
		cli.IntSliceFlag{
			Name:  "capacities",
			Usage: "queue capacities (repeatable)",
			Value: &cli.IntSlice{},
		},
		cli.StringFlag{
			Name:  "backend,b",
			Usage: fmt.Sprintf("queue implementation %v", bench.Backends()),
		},
		cli.IntFlag{
			Name:  "rate",
			Usage: "per-producer inserts per second, 0 = unpaced",
		},
		cli.StringFlag{
			Name:  "mode",
			Usage: "producer insert mode: block or spin",
		},
		cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve Prometheus /metrics on this address, e.g. :9109",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "zerolog level: debug, info, warn, error",
		},
		cli.BoolFlag{
			Name:  "pretty",
			Usage: "human-readable console logs",
		},
	}
	app.Action = func(c *cli.Context) error {
		return run(c, stdout, stderr)
	}
	return app
}

func run(c *cli.Context, stdout, stderr io.Writer) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cfg.Log)
	if err != nil {
		return err
	}

	backend, err := bench.Lookup(cfg.Backend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := bench.NewRunner(backend, logger)
	runner.SampleInterval = cfg.SampleInterval

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		runner.Observer = metrics.New(reg)

		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info().
		Str("backend", cfg.Backend).
		Ints("producers", cfg.Producers).
		Ints("consumers", cfg.Consumers).
		Ints("capacities", cfg.Capacities).
		Int("items_per_producer", cfg.ItemsPerProducer).
		Str("mode", cfg.Mode).
		Msg("sweep start")

	start := time.Now()
	results, err := runner.Sweep(ctx, cfg, bench.NewCSVWriter(stdout))
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	mismatched := 0
	for _, res := range results {
		if !res.OK() {
			mismatched++
		}
	}

	logger.Info().
		Int("trials", len(results)).
		Int("mismatched", mismatched).
		Str("elapsed", time.Since(start).String()).
		Msg("sweep finished")

	if mismatched > 0 {
		return fmt.Errorf("%w: %d of %d", errMismatch, mismatched, len(results))
	}
	return nil
}

// buildConfig loads the config file, if any, and applies flag and
// positional overrides on top of it.
func buildConfig(c *cli.Context) (*config.Sweep, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("items") {
		cfg.ItemsPerProducer = c.Int("items")
	}
	// A leading numeric argument overrides items per producer.
	if arg := c.Args().First(); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("items_per_producer %q: %w", arg, err)
		}
		cfg.ItemsPerProducer = n
	}
	if v := c.IntSlice("producers"); len(v) > 0 {
		cfg.Producers = v
	}
	if v := c.IntSlice("consumers"); len(v) > 0 {
		cfg.Consumers = v
	}
	if v := c.IntSlice("capacities"); len(v) > 0 {
		cfg.Capacities = v
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("rate") {
		cfg.Rate = c.Int("rate")
	}
	if c.IsSet("mode") {
		cfg.Mode = c.String("mode")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.Bool("pretty") {
		cfg.Log.Pretty = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.LogCfg) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()
	return srv
}
