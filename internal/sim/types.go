package sim

import (
	"context"
	"time"

	"github.com/san-kum/lifesim/internal/life"
)

// Observer is notified after every committed generation. It runs while the
// controller holds its lock and must not call back into the controller.
type Observer interface {
	OnGeneration(gen int, g *life.Grid)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(gen int, g *life.Grid)

func (f ObserverFunc) OnGeneration(gen int, g *life.Grid) { f(gen, g) }

// Metric summarizes a run. Observe sees generation 0 when the run starts and
// every generation after it.
type Metric interface {
	Name() string
	Observe(gen int, g *life.Grid)
	Value() float64
	Reset()
}

// Sleeper suspends the playback loop between generations. It returns early
// with the context's error when ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Result struct {
	Generations int
	Initial     life.Snapshot
	Final       life.Snapshot
	Population  []int
	Metrics     map[string]float64
}
