package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/metrics"
	"github.com/san-kum/lifesim/internal/sim"
)

// Pattern lists live cells relative to the pattern's top-left corner.
type Pattern [][2]int

type Registry struct {
	metrics  map[string]func() sim.Metric
	patterns map[string]Pattern
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics:  make(map[string]func() sim.Metric),
		patterns: make(map[string]Pattern),
	}

	r.metrics["peak_population"] = func() sim.Metric { return metrics.NewPopulation() }
	r.metrics["churn"] = func() sim.Metric { return metrics.NewChurn() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability() }

	r.patterns["block"] = Pattern{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	r.patterns["blinker"] = Pattern{{0, 0}, {0, 1}, {0, 2}}
	r.patterns["glider"] = Pattern{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}}
	r.patterns["r-pentomino"] = Pattern{{0, 1}, {0, 2}, {1, 0}, {1, 1}, {2, 1}}
	r.patterns["lwss"] = Pattern{{0, 1}, {0, 4}, {1, 0}, {2, 0}, {2, 4}, {3, 0}, {3, 1}, {3, 2}, {3, 3}}
	r.patterns["beacon"] = Pattern{{0, 0}, {0, 1}, {1, 0}, {2, 3}, {3, 2}, {3, 3}}

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	names := r.ListMetrics()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}

func (r *Registry) ListMetrics() []string {
	return sortedKeys(r.metrics)
}

func (r *Registry) ListPatterns() []string {
	return sortedKeys(r.patterns)
}

// PlacePattern returns a height x width board with the named pattern
// centered on it.
func (r *Registry) PlacePattern(name string, height, width int) (life.Snapshot, error) {
	p, ok := r.patterns[name]
	if !ok {
		return life.Snapshot{}, fmt.Errorf("unknown pattern: %s", name)
	}
	snap, err := life.NewSnapshot(height, width)
	if err != nil {
		return life.Snapshot{}, err
	}

	ph, pw := 0, 0
	for _, rc := range p {
		ph, pw = max(ph, rc[0]+1), max(pw, rc[1]+1)
	}
	if ph > height || pw > width {
		return life.Snapshot{}, fmt.Errorf("pattern %s (%dx%d) does not fit a %dx%d board", name, ph, pw, height, width)
	}

	top, left := (height-ph)/2, (width-pw)/2
	for _, rc := range p {
		snap.Cells[top+rc[0]][left+rc[1]] = true
	}
	return snap, nil
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
