package life

import (
	"strings"
	"testing"
)

// gridOf builds a grid from rows where '#' is alive and anything else dead.
func gridOf(t *testing.T, rows ...string) *Grid {
	t.Helper()
	g, err := FromSnapshot(snapshotOf(t, rows...))
	if err != nil {
		t.Fatalf("build grid: %v", err)
	}
	return g
}

func snapshotOf(t *testing.T, rows ...string) Snapshot {
	t.Helper()
	s, err := NewSnapshot(len(rows), len(rows[0]))
	if err != nil {
		t.Fatalf("new snapshot: %v", err)
	}
	for r, row := range rows {
		if len(row) != s.Width {
			t.Fatalf("ragged test pattern at row %d", r)
		}
		for c, ch := range row {
			s.Cells[r][c] = ch == '#'
		}
	}
	return s
}

func render(s Snapshot) string {
	var b strings.Builder
	for _, row := range s.Cells {
		for _, alive := range row {
			if alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
