package sim

import (
	"context"
	"sync"

	"github.com/san-kum/lifesim/internal/life"
)

// Ensemble plays several independent random boards side by side, one
// controller per board.
type Ensemble struct {
	height, width int
	density       float64
	numRuns       int
	seedStart     int64
	metrics       func() []Metric
}

func NewEnsemble(height, width int, density float64, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{height: height, width: width, density: density, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a constructor for the metrics attached to each run. Each
// controller gets its own instances.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.metrics = fn
	return e
}

// Run steps every board for the given number of generations with no delay.
// Results are ordered by seed.
func (e *Ensemble) Run(ctx context.Context, generations int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			snap, err := life.RandomSnapshot(e.height, e.width, e.density, e.seedStart+int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			grid, err := life.FromSnapshot(snap)
			if err != nil {
				errs[idx] = err
				return
			}

			c := New(grid)
			c.SetInterval(0)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					c.AddMetric(m)
				}
			}
			results[idx], errs[idx] = c.Run(ctx, generations)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
