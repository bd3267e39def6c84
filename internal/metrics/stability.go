package metrics

import "github.com/san-kum/lifesim/internal/life"

// Stability is the fraction of generations whose board is identical to the
// one before it. A run that settles into still lifes early approaches 1.
type Stability struct {
	name    string
	prev    []bool
	repeats int
	samples int
}

func NewStability() *Stability {
	return &Stability{name: "stability"}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(gen int, g *life.Grid) {
	cur := flatten(g)
	if s.prev != nil && len(s.prev) == len(cur) {
		if changed(s.prev, cur) == 0 {
			s.repeats++
		}
		s.samples++
	}
	s.prev = cur
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.repeats) / float64(s.samples)
}

func (s *Stability) Reset() {
	s.prev = nil
	s.repeats = 0
	s.samples = 0
}
