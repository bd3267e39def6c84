package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/lifesim/internal/life"
)

func TestFFTImpulse(t *testing.T) {
	out := FFT([]float64{1, 0, 0, 0})
	for i, v := range out {
		if math.Abs(real(v)-1) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
			t.Errorf("bin %d: expected 1, got %v", i, v)
		}
	}
}

func TestFFTPanicsOnOddLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for length 3")
		}
	}()
	FFT([]float64{1, 2, 3})
}

func TestDominantPeriod(t *testing.T) {
	alternating := make([]float64, 64)
	for i := range alternating {
		alternating[i] = float64(3 + 2*(i%2))
	}
	if p := DominantPeriod(alternating); p != 2 {
		t.Errorf("expected period 2, got %f", p)
	}

	wave := make([]float64, 64)
	for i := range wave {
		wave[i] = math.Sin(2 * math.Pi * float64(i) / 8)
	}
	if p := DominantPeriod(wave); p != 8 {
		t.Errorf("expected period 8, got %f", p)
	}

	if p := DominantPeriod([]float64{4, 4, 4, 4}); p != 0 {
		t.Errorf("expected 0 for constant series, got %f", p)
	}
	if p := DominantPeriod(nil); p != 0 {
		t.Errorf("expected 0 for empty series, got %f", p)
	}
}

func snapshot(t *testing.T, h, w int, alive ...[2]int) life.Snapshot {
	t.Helper()
	s, err := life.NewSnapshot(h, w)
	if err != nil {
		t.Fatal(err)
	}
	for _, rc := range alive {
		s.Cells[rc[0]][rc[1]] = true
	}
	return s
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name  string
		board life.Snapshot
		want  Cycle
	}{
		{"empty", snapshot(t, 3, 3), Cycle{Start: 0, Period: 1}},
		{"block", snapshot(t, 4, 4, [2]int{1, 1}, [2]int{1, 2}, [2]int{2, 1}, [2]int{2, 2}), Cycle{Start: 0, Period: 1}},
		{"blinker", snapshot(t, 5, 5, [2]int{2, 1}, [2]int{2, 2}, [2]int{2, 3}), Cycle{Start: 0, Period: 2}},
		{"lone cell", snapshot(t, 3, 3, [2]int{1, 1}), Cycle{Start: 1, Period: 1}},
	}

	for _, tt := range tests {
		got, ok, err := FindCycle(tt.board, 10)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !ok {
			t.Errorf("%s: no cycle found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestFindCycleGliderSettles(t *testing.T) {
	glider := snapshot(t, 5, 5, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0}, [2]int{2, 1}, [2]int{2, 2})

	if _, ok, _ := FindCycle(glider, 3); ok {
		t.Error("glider should not repeat within 3 generations")
	}
	c, ok, err := FindCycle(glider, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || c.Period != 1 {
		t.Errorf("expected glider to settle into a still life, got %+v ok=%v", c, ok)
	}
}

func TestFindCycleRejectsMalformed(t *testing.T) {
	if _, _, err := FindCycle(life.Snapshot{Height: 2, Width: 2}, 5); err == nil {
		t.Error("expected error for malformed snapshot")
	}
}
