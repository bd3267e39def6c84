package life

import (
	"fmt"
	"math/rand/v2"
)

// RandomSnapshot fills a height x width snapshot where each cell is alive
// with probability density. The same seed always yields the same board.
func RandomSnapshot(height, width int, density float64, seed int64) (Snapshot, error) {
	if density < 0 || density > 1 {
		return Snapshot{}, fmt.Errorf("life: density must be in [0, 1], got %g", density)
	}
	s, err := NewSnapshot(height, width)
	if err != nil {
		return Snapshot{}, err
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	for r := range s.Cells {
		for c := range s.Cells[r] {
			s.Cells[r][c] = rng.Float64() < density
		}
	}
	return s, nil
}
