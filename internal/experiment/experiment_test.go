package experiment

import (
	"testing"

	"github.com/san-kum/lifesim/internal/life"
)

func TestRegistryMetrics(t *testing.T) {
	r := NewRegistry()

	names := r.ListMetrics()
	want := []string{"churn", "peak_population", "stability"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("metric %d: expected %s, got %s", i, want[i], names[i])
		}
		m, err := r.GetMetric(names[i])
		if err != nil {
			t.Fatal(err)
		}
		if m.Name() != names[i] {
			t.Errorf("metric registered as %s reports name %s", names[i], m.Name())
		}
	}

	if _, err := r.GetMetric("entropy"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if got := len(r.DefaultMetrics()); got != len(want) {
		t.Errorf("expected %d default metrics, got %d", len(want), got)
	}
}

func TestPlacePattern(t *testing.T) {
	r := NewRegistry()

	snap, err := r.PlacePattern("blinker", 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	for col := 1; col <= 3; col++ {
		if !snap.Alive(2, col) {
			t.Errorf("expected (2,%d) alive", col)
		}
	}
	if snap.Population() != 3 {
		t.Errorf("expected 3 live cells, got %d", snap.Population())
	}

	if _, err := r.PlacePattern("lwss", 3, 3); err == nil {
		t.Error("expected error when pattern does not fit")
	}
	if _, err := r.PlacePattern("nope", 5, 5); err == nil {
		t.Error("expected error for unknown pattern")
	}
	if _, err := r.PlacePattern("block", 0, 5); err == nil {
		t.Error("expected error for bad dimensions")
	}
}

func TestExperimentRun(t *testing.T) {
	r := NewRegistry()
	board, err := r.PlacePattern("blinker", 5, 5)
	if err != nil {
		t.Fatal(err)
	}

	var last int
	exp := New(Config{Board: board, Generations: 4})
	if err := exp.Setup(r.DefaultMetrics(), observerFunc(func(gen int) { last = gen })); err != nil {
		t.Fatal(err)
	}

	res, err := exp.Run(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if res.Generations != 4 || last != 4 {
		t.Errorf("expected 4 generations, got %d (observer saw %d)", res.Generations, last)
	}
	if !res.Final.Equal(board) {
		t.Error("blinker should return to its start after an even number of steps")
	}
	if res.Metrics["churn"] != 4 {
		t.Errorf("expected churn 4, got %f", res.Metrics["churn"])
	}
	if res.Metrics["peak_population"] != 3 {
		t.Errorf("expected peak 3, got %f", res.Metrics["peak_population"])
	}
}

func TestExperimentNotSetup(t *testing.T) {
	if _, err := New(Config{Generations: 1}).Run(t.Context()); err == nil {
		t.Error("expected error before Setup")
	}
}

func TestExperimentBadBoard(t *testing.T) {
	exp := New(Config{Board: life.Snapshot{Height: 2, Width: 2}, Generations: 1})
	if err := exp.Setup(nil); err == nil {
		t.Error("expected error for malformed board")
	}
}

type observerFunc func(gen int)

func (f observerFunc) OnGeneration(gen int, _ *life.Grid) { f(gen) }
