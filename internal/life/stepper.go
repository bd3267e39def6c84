package life

// NextState applies the B3/S23 rule: a live cell survives with 2 or 3 live
// neighbours, a dead cell is born with exactly 3.
func NextState(alive bool, neighbours int) bool {
	return (alive && neighbours == 2) || neighbours == 3
}

// Step advances g by one generation.
//
// The evaluation pass reads only alive states and records each cell's
// transition in its pending flags; the commit pass then applies them all.
// Every neighbour count therefore sees the same prior generation.
func Step(g *Grid) {
	for r := 0; r < g.height; r++ {
		for c := 0; c < g.width; c++ {
			evaluate(&g.cells[r][c], g.LiveNeighbours(r, c))
		}
	}
	g.Commit()
}

// StepN advances g by n generations.
func StepN(g *Grid, n int) {
	for i := 0; i < n; i++ {
		Step(g)
	}
}

func evaluate(cell *Cell, neighbours int) {
	switch {
	case neighbours < 2 || neighbours > 3:
		cell.clearPending()
		cell.MarkForDeath()
	case neighbours == 3 && !cell.alive:
		cell.clearPending()
		cell.MarkForBirth()
	default:
		cell.clearPending()
	}
}
