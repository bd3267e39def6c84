package metrics

import "github.com/san-kum/lifesim/internal/life"

// Churn is the mean number of births plus deaths per generation.
type Churn struct {
	name    string
	prev    []bool
	sum     int
	samples int
}

func NewChurn() *Churn {
	return &Churn{name: "churn"}
}

func (c *Churn) Name() string { return c.name }

func (c *Churn) Observe(gen int, g *life.Grid) {
	cur := flatten(g)
	if c.prev != nil && len(c.prev) == len(cur) {
		c.sum += changed(c.prev, cur)
		c.samples++
	}
	c.prev = cur
}

func (c *Churn) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Churn) Reset() {
	c.prev = nil
	c.sum = 0
	c.samples = 0
}

func flatten(g *life.Grid) []bool {
	cells := make([]bool, 0, g.Height()*g.Width())
	for r := range g.Height() {
		for col := range g.Width() {
			cells = append(cells, g.Alive(r, col))
		}
	}
	return cells
}

func changed(a, b []bool) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
