package life

import "fmt"

// Grid is a fixed-size rectangular board of cells in row-major order.
type Grid struct {
	height, width int
	cells         [][]Cell
}

// NewGrid allocates a grid of dead cells.
func NewGrid(height, width int) (*Grid, error) {
	if height < 1 || width < 1 {
		return nil, &ConfigurationError{Height: height, Width: width}
	}
	cells := make([][]Cell, height)
	for r := range cells {
		cells[r] = make([]Cell, width)
	}
	return &Grid{height: height, width: width, cells: cells}, nil
}

// FromSnapshot builds a new grid from s. The snapshot is validated before
// anything is allocated; on error no grid is returned.
func FromSnapshot(s Snapshot) (*Grid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cells := make([][]Cell, s.Height)
	for r := range cells {
		cells[r] = make([]Cell, s.Width)
		for c, alive := range s.Cells[r] {
			cells[r][c] = NewCell(alive)
		}
	}
	return &Grid{height: s.Height, width: s.Width, cells: cells}, nil
}

func (g *Grid) Height() int { return g.height }
func (g *Grid) Width() int  { return g.width }

// InBounds reports whether (row, col) addresses a cell of the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// Cell returns the cell at (row, col), or nil when out of bounds.
func (g *Grid) Cell(row, col int) *Cell {
	if !g.InBounds(row, col) {
		return nil
	}
	return &g.cells[row][col]
}

// Alive reports whether the cell at (row, col) is alive. Out-of-bounds
// positions are dead.
func (g *Grid) Alive(row, col int) bool {
	if !g.InBounds(row, col) {
		return false
	}
	return g.cells[row][col].alive
}

// Toggle flips the cell at (row, col).
func (g *Grid) Toggle(row, col int) error {
	if !g.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrOutOfBounds, row, col, g.height, g.width)
	}
	g.cells[row][col].Toggle()
	return nil
}

// LiveNeighbours counts alive cells in the Moore neighbourhood of (row, col).
// Positions past the edge are skipped, not wrapped.
func (g *Grid) LiveNeighbours(row, col int) int {
	top, bottom := max(row-1, 0), min(row+1, g.height-1)
	left, right := max(col-1, 0), min(col+1, g.width-1)

	count := 0
	for r := top; r <= bottom; r++ {
		for c := left; c <= right; c++ {
			if r == row && c == col {
				continue
			}
			if g.cells[r][c].alive {
				count++
			}
		}
	}
	return count
}

// HasLiveCells reports whether at least one cell is alive.
func (g *Grid) HasLiveCells() bool {
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c].alive {
				return true
			}
		}
	}
	return false
}

// Population returns the number of alive cells.
func (g *Grid) Population() int {
	n := 0
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c].alive {
				n++
			}
		}
	}
	return n
}

// Clear resets every cell to dead with no pending transition.
func (g *Grid) Clear() {
	for r := range g.cells {
		for c := range g.cells[r] {
			g.cells[r][c].Reset()
		}
	}
}

// Commit applies every cell's pending transition.
func (g *Grid) Commit() {
	for r := range g.cells {
		for c := range g.cells[r] {
			g.cells[r][c].Commit()
		}
	}
}

// Export returns a deep copy of the alive states. Pending flags are not part
// of a snapshot.
func (g *Grid) Export() Snapshot {
	cells := make([][]bool, g.height)
	for r := range g.cells {
		cells[r] = make([]bool, g.width)
		for c := range g.cells[r] {
			cells[r][c] = g.cells[r][c].alive
		}
	}
	return Snapshot{Height: g.height, Width: g.width, Cells: cells}
}
