package life

// Snapshot is an alive/dead-only copy of a grid at one point in time.
type Snapshot struct {
	Height int
	Width  int
	Cells  [][]bool
}

// NewSnapshot returns an all-dead snapshot of the given size.
func NewSnapshot(height, width int) (Snapshot, error) {
	if height < 1 || width < 1 {
		return Snapshot{}, &ConfigurationError{Height: height, Width: width}
	}
	cells := make([][]bool, height)
	for r := range cells {
		cells[r] = make([]bool, width)
	}
	return Snapshot{Height: height, Width: width, Cells: cells}, nil
}

// Validate checks the dimensions and that Cells is exactly Height rows of
// Width entries.
func (s Snapshot) Validate() error {
	if s.Height < 1 {
		return invalid("height", "must be at least 1, got %d", s.Height)
	}
	if s.Width < 1 {
		return invalid("width", "must be at least 1, got %d", s.Width)
	}
	if len(s.Cells) != s.Height {
		return invalid("board", "expected %d rows, got %d", s.Height, len(s.Cells))
	}
	for r, row := range s.Cells {
		if len(row) != s.Width {
			return invalid("board", "row %d: expected %d columns, got %d", r, s.Width, len(row))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	c := Snapshot{Height: s.Height, Width: s.Width}
	if s.Cells == nil {
		return c
	}
	c.Cells = make([][]bool, len(s.Cells))
	for r, row := range s.Cells {
		c.Cells[r] = append([]bool(nil), row...)
	}
	return c
}

// Equal reports whether both snapshots have the same dimensions and pattern.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Height != o.Height || s.Width != o.Width || len(s.Cells) != len(o.Cells) {
		return false
	}
	for r := range s.Cells {
		if len(s.Cells[r]) != len(o.Cells[r]) {
			return false
		}
		for c := range s.Cells[r] {
			if s.Cells[r][c] != o.Cells[r][c] {
				return false
			}
		}
	}
	return true
}

// Population returns the number of alive cells.
func (s Snapshot) Population() int {
	n := 0
	for _, row := range s.Cells {
		for _, alive := range row {
			if alive {
				n++
			}
		}
	}
	return n
}

// Alive reports whether (row, col) is alive; out-of-range positions are dead.
func (s Snapshot) Alive(row, col int) bool {
	if row < 0 || row >= len(s.Cells) || col < 0 || col >= len(s.Cells[row]) {
		return false
	}
	return s.Cells[row][col]
}
