package metrics

import "github.com/san-kum/lifesim/internal/life"

// Population tracks the peak number of live cells over a run.
type Population struct {
	name string
	peak int
}

func NewPopulation() *Population {
	return &Population{name: "peak_population"}
}

func (p *Population) Name() string { return p.name }

func (p *Population) Observe(gen int, g *life.Grid) {
	p.peak = max(p.peak, g.Population())
}

func (p *Population) Value() float64 { return float64(p.peak) }

func (p *Population) Reset() { p.peak = 0 }
