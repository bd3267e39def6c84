package analysis

import (
	"github.com/san-kum/lifesim/internal/life"
)

// Cycle describes where a board's history starts repeating.
type Cycle struct {
	// Start is the first generation that is part of the cycle.
	Start int
	// Period is 1 for still lifes (and the empty board), 2 for blinkers.
	Period int
}

// FindCycle steps a copy of s until some board recurs, for at most
// maxGenerations steps. ok is false when no repeat was seen in time.
func FindCycle(s life.Snapshot, maxGenerations int) (Cycle, bool, error) {
	g, err := life.FromSnapshot(s)
	if err != nil {
		return Cycle{}, false, err
	}

	seen := map[string]int{boardKey(g): 0}
	for gen := 1; gen <= maxGenerations; gen++ {
		life.Step(g)
		key := boardKey(g)
		if first, ok := seen[key]; ok {
			return Cycle{Start: first, Period: gen - first}, true, nil
		}
		seen[key] = gen
	}
	return Cycle{}, false, nil
}

func boardKey(g *life.Grid) string {
	h, w := g.Height(), g.Width()
	buf := make([]byte, (h*w+7)/8)
	for r := range h {
		for c := range w {
			if g.Alive(r, c) {
				i := r*w + c
				buf[i/8] |= 1 << (i % 8)
			}
		}
	}
	return string(buf)
}
