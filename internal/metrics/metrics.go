// Package metrics exports benchmark trial results as Prometheus metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/bounded-queue/internal/bench"
)

// Metrics implements bench.Observer.
type Metrics struct {
	TrialsTotal  *prometheus.CounterVec
	ItemsTotal   *prometheus.CounterVec
	TrialSeconds *prometheus.HistogramVec
	Throughput   *prometheus.GaugeVec
	MaxDepth     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TrialsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bq_trials_total",
			Help: "Benchmark trials run, by outcome",
		}, []string{"backend", "status"}),
		ItemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bq_items_total",
			Help: "Items moved through the queue",
		}, []string{"backend", "direction"}),
		TrialSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bq_trial_seconds",
			Help:    "Wall time of one trial",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"backend"}),
		Throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bq_throughput_ops",
			Help: "Items consumed per second in the last trial of a configuration",
		}, []string{"backend", "producers", "consumers", "capacity"}),
		MaxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bq_max_depth",
			Help: "Largest sampled queue length in the last trial of a configuration",
		}, []string{"backend", "capacity"}),
	}

	reg.MustRegister(
		m.TrialsTotal,
		m.ItemsTotal,
		m.TrialSeconds,
		m.Throughput,
		m.MaxDepth,
	)

	return m
}

// Observe records one trial result.
func (m *Metrics) Observe(res bench.Result) {
	capacity := strconv.Itoa(res.Trial.Capacity)

	m.TrialsTotal.WithLabelValues(res.Backend, res.Status).Inc()
	m.ItemsTotal.WithLabelValues(res.Backend, "produced").Add(float64(res.Produced))
	m.ItemsTotal.WithLabelValues(res.Backend, "consumed").Add(float64(res.Consumed))
	m.TrialSeconds.WithLabelValues(res.Backend).Observe(res.Elapsed.Seconds())
	m.Throughput.WithLabelValues(
		res.Backend,
		strconv.Itoa(res.Trial.Producers),
		strconv.Itoa(res.Trial.Consumers),
		capacity,
	).Set(res.OpsPerSec)
	m.MaxDepth.WithLabelValues(res.Backend, capacity).Set(float64(res.MaxDepth))
}
