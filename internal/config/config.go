// Package config loads the benchmark sweep configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Producer modes.
const (
	ModeBlock = "block" // Insert parks the producer while the queue is full
	ModeSpin  = "spin"  // TryInsert with a bounded spin before falling back to Insert
)

// Sweep describes a producers × consumers × capacities benchmark sweep.
type Sweep struct {
	// Producers, Consumers and Capacities span the trial grid.
	Producers  []int `yaml:"producers"`
	Consumers  []int `yaml:"consumers"`
	Capacities []int `yaml:"capacities"`

	// ItemsPerProducer is how many values every producer inserts per trial.
	ItemsPerProducer int `yaml:"items_per_producer"`

	// Backend selects the queue implementation: bounded, channel or lfq.
	Backend string `yaml:"backend"`

	// Rate paces each producer to this many inserts per second. 0 = unpaced.
	Rate int `yaml:"rate"`

	// Mode is the producer insert strategy, block or spin.
	Mode string `yaml:"mode"`

	// SpinLimit bounds TryInsert attempts per item in spin mode.
	SpinLimit int `yaml:"spin_limit"`

	// SampleInterval is how often consumers sample queue occupancy.
	SampleInterval time.Duration `yaml:"sample_interval"`

	// MetricsAddr, if set, exposes Prometheus metrics on this address.
	MetricsAddr string `yaml:"metrics_addr"`

	Log LogCfg `yaml:"log"`
}

type LogCfg struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the sweep grid used when no config file is given.
func Default() *Sweep {
	cfg := &Sweep{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field.
func (cfg *Sweep) ApplyDefaults() {
	if len(cfg.Producers) == 0 {
		cfg.Producers = []int{1, 2, 4, 8}
	}
	if len(cfg.Consumers) == 0 {
		cfg.Consumers = []int{1, 2, 4, 8}
	}
	if len(cfg.Capacities) == 0 {
		cfg.Capacities = []int{1, 2, 4, 16, 64}
	}
	if cfg.ItemsPerProducer == 0 {
		cfg.ItemsPerProducer = 100_000
	}
	if cfg.Backend == "" {
		cfg.Backend = "bounded"
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeBlock
	}
	if cfg.SpinLimit == 0 {
		cfg.SpinLimit = 64
	}
	if cfg.SampleInterval == 0 {
		cfg.SampleInterval = time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate reports the first invalid field.
func (cfg *Sweep) Validate() error {
	if err := positive("producers", cfg.Producers); err != nil {
		return err
	}
	if err := positive("consumers", cfg.Consumers); err != nil {
		return err
	}
	if err := positive("capacities", cfg.Capacities); err != nil {
		return err
	}
	if cfg.ItemsPerProducer < 0 {
		return errors.New("items_per_producer must be >= 0")
	}
	if cfg.Rate < 0 {
		return errors.New("rate must be >= 0")
	}
	if cfg.Mode != ModeBlock && cfg.Mode != ModeSpin {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeBlock, ModeSpin, cfg.Mode)
	}
	if cfg.SpinLimit < 0 {
		return errors.New("spin_limit must be >= 0")
	}
	if cfg.SampleInterval < 0 {
		return errors.New("sample_interval must be >= 0")
	}
	return nil
}

func positive(name string, vs []int) error {
	if len(vs) == 0 {
		return fmt.Errorf("%s must not be empty", name)
	}
	for _, v := range vs {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", name, v)
		}
	}
	return nil
}

// Load reads a YAML sweep config, applies defaults and validates it.
func Load(path string) (*Sweep, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	cfg := &Sweep{}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.ApplyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}
