// Package registry holds the set of benchmarks a binary knows how to run.
// Registration order is preserved so listings and runs are deterministic.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"simplebench/internal/measure"
)

// Benchmark is one registered benchmark: a name, the group it belongs to,
// and the sampler that measures it.
type Benchmark struct {
	Name    string
	Group   string
	Sampler measure.Sampler
}

// Key is the store identity of a benchmark, "<group>_<name>".
func (b Benchmark) Key() string {
	return b.Group + "_" + b.Name
}

var (
	mu     sync.Mutex
	benchs []Benchmark
	byName map[string]int
)

// Register adds a benchmark to the global registry. Registering two
// benchmarks with the same name in the same group panics: duplicate keys
// would silently overwrite each other's baselines.
func Register(name, group string, sampler measure.Sampler) {
	if name == "" || group == "" {
		panic("registry: benchmark name and group must be non-empty")
	}
	mu.Lock()
	defer mu.Unlock()
	if byName == nil {
		byName = make(map[string]int)
	}
	b := Benchmark{Name: name, Group: group, Sampler: sampler}
	if _, exists := byName[b.Key()]; exists {
		panic(fmt.Sprintf("registry: duplicate benchmark %q in group %q", name, group))
	}
	byName[b.Key()] = len(benchs)
	benchs = append(benchs, b)
}

// List returns all registered benchmarks in registration order.
func List() []Benchmark {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Benchmark, len(benchs))
	copy(out, benchs)
	return out
}

// Filter returns the benchmarks whose name contains the given substring,
// in registration order. An empty filter matches everything.
func Filter(substr string) []Benchmark {
	if substr == "" {
		return List()
	}
	mu.Lock()
	defer mu.Unlock()
	var out []Benchmark
	for _, b := range benchs {
		if strings.Contains(b.Name, substr) {
			out = append(out, b)
		}
	}
	return out
}

// Lookup finds a benchmark by its exact name.
func Lookup(name string) (Benchmark, bool) {
	mu.Lock()
	defer mu.Unlock()
	for _, b := range benchs {
		if b.Name == name {
			return b, true
		}
	}
	return Benchmark{}, false
}
