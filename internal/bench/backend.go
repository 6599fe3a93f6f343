package bench

import (
	"fmt"
	"sort"

	"github.com/randomizedcoder/bounded-queue/internal/queue"
)

// Backend names.
const (
	BackendBounded = "bounded"
	BackendChannel = "channel"
	BackendLFQ     = "lfq"
)

// Backend builds a fresh queue for each trial.
type Backend struct {
	Name string
	New  func(capacity int) (queue.Queue[uint64], error)
}

var backends = map[string]Backend{
	BackendBounded: {
		Name: BackendBounded,
		New: func(c int) (queue.Queue[uint64], error) {
			return queue.New[uint64](c)
		},
	},
	BackendChannel: {
		Name: BackendChannel,
		New: func(c int) (queue.Queue[uint64], error) {
			return queue.NewChannel[uint64](c)
		},
	},
	BackendLFQ: {
		Name: BackendLFQ,
		New:  newLFQ,
	},
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	b, ok := backends[name]
	if !ok {
		return Backend{}, fmt.Errorf("bench: unknown backend %q (have %v)", name, Backends())
	}
	return b, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
