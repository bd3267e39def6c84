package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
)

type Config struct {
	Board       life.Snapshot
	Generations int
	// Interval between generations. Zero runs as fast as possible.
	Interval time.Duration
}

// Experiment runs one board for a fixed number of generations without a UI.
type Experiment struct {
	cfg        Config
	controller *sim.Controller
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(metrics []sim.Metric, observers ...sim.Observer) error {
	g, err := life.FromSnapshot(e.cfg.Board)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	e.controller = sim.New(g)
	e.controller.SetInterval(e.cfg.Interval)
	for _, m := range metrics {
		e.controller.AddMetric(m)
	}
	for _, o := range observers {
		e.controller.AddObserver(o)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.controller == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.controller.Run(ctx, e.cfg.Generations)
}

// Controller returns the underlying controller for adding observers.
func (e *Experiment) Controller() *sim.Controller {
	return e.controller
}
