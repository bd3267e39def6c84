package sim

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lifesim/internal/life"
)

// gate is a Sleeper the test releases one cycle at a time.
type gate struct {
	entered chan time.Duration
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan time.Duration, 16), release: make(chan struct{})}
}

func (g *gate) sleep(ctx context.Context, d time.Duration) error {
	g.entered <- d
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.release:
		return nil
	}
}

func instant(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func board(rows ...string) life.Snapshot {
	s, err := life.NewSnapshot(len(rows), len(rows[0]))
	Expect(err).NotTo(HaveOccurred())
	for r, row := range rows {
		for c, ch := range row {
			s.Cells[r][c] = ch == '#'
		}
	}
	return s
}

func controllerFor(s life.Snapshot) *Controller {
	g, err := life.FromSnapshot(s)
	Expect(err).NotTo(HaveOccurred())
	return New(g)
}

var (
	vertical   = []string{".#.", ".#.", ".#."}
	horizontal = []string{"...", "###", "..."}
)

var _ = Describe("Controller", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(func() { cancel() })
	})

	Describe("Start", func() {
		It("is a no-op on a grid with no live cells", func() {
			empty, _ := life.NewSnapshot(4, 4)
			c := controllerFor(empty)

			Expect(c.Start(ctx)).To(BeFalse())
			Expect(c.Running()).To(BeFalse())
			Expect(c.HasInitialSnapshot()).To(BeFalse())
		})

		It("leaves an existing run start alone when the grid is empty", func() {
			c := controllerFor(board(vertical...))
			c.SetSleeper(instant)
			_, err := c.Run(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			c.ClearAll()
			Expect(c.Start(ctx)).To(BeFalse())

			initial, ok := c.InitialSnapshot()
			Expect(ok).To(BeTrue())
			Expect(initial.Equal(board(vertical...))).To(BeTrue())
		})

		It("captures the run start as a copy, not an alias", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)

			Expect(c.Start(ctx)).To(BeTrue())
			Eventually(g.entered).Should(Receive())
			c.Stop()
			g.release <- struct{}{}
			c.Wait()

			initial, ok := c.InitialSnapshot()
			Expect(ok).To(BeTrue())
			Expect(initial.Equal(board(vertical...))).To(BeTrue())
			Expect(c.Export().Equal(board(horizontal...))).To(BeTrue())
		})

		It("is a no-op while already running", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)

			Expect(c.Start(ctx)).To(BeTrue())
			Expect(c.Start(ctx)).To(BeFalse())
			Eventually(g.entered).Should(Receive())
			Consistently(g.entered, 50*time.Millisecond).ShouldNot(Receive())
		})

		It("suspends for the configured interval", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)
			c.SetSpeed(50)

			Expect(c.Start(ctx)).To(BeTrue())
			Eventually(g.entered).Should(Receive(Equal(2500 * time.Millisecond)))
		})

		It("keeps stepping until stopped", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)

			Expect(c.Start(ctx)).To(BeTrue())
			for i := 0; i < 3; i++ {
				Eventually(g.entered).Should(Receive())
				g.release <- struct{}{}
			}
			Eventually(g.entered).Should(Receive())
			Expect(c.Generation()).To(Equal(3))
			Expect(c.Export().Equal(board(horizontal...))).To(BeTrue())
			Expect(c.Running()).To(BeTrue())
		})
	})

	Describe("Stop", func() {
		It("lets the in-flight step finish without another cycle", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)

			Expect(c.Start(ctx)).To(BeTrue())
			Eventually(g.entered).Should(Receive())

			c.Stop()
			Expect(c.Running()).To(BeFalse())
			Expect(c.Generation()).To(Equal(0))

			g.release <- struct{}{}
			c.Wait()

			Expect(c.Generation()).To(Equal(1))
			Expect(g.entered).NotTo(Receive())
		})

		It("is idempotent when idle", func() {
			c := controllerFor(board(vertical...))
			c.Stop()
			c.Stop()
			Expect(c.Running()).To(BeFalse())
			Expect(c.Export().Equal(board(vertical...))).To(BeTrue())
		})

		It("ends the loop when the context is cancelled", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)

			Expect(c.Start(ctx)).To(BeTrue())
			Eventually(g.entered).Should(Receive())
			cancel()
			c.Wait()

			Expect(c.Running()).To(BeFalse())
			Expect(c.Generation()).To(Equal(0))
		})
	})

	Describe("ResetToRunStart", func() {
		It("leaves the board as it is before any run", func() {
			c := controllerFor(board(vertical...))
			Expect(c.ResetToRunStart()).To(BeFalse())
			Expect(c.Export().Equal(board(vertical...))).To(BeTrue())
		})

		It("restores the pattern captured at start", func() {
			glider := board(
				".#....",
				"..#...",
				"###...",
				"......",
				"......",
			)
			c := controllerFor(glider)
			c.SetSleeper(instant)

			res, err := c.Run(ctx, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Generations).To(Equal(4))
			Expect(c.Export().Equal(glider)).To(BeFalse())

			Expect(c.ResetToRunStart()).To(BeTrue())
			Expect(c.Export().Equal(glider)).To(BeTrue())
			Expect(c.Running()).To(BeFalse())
			Expect(c.Generation()).To(Equal(0))
		})

		It("forces idle and drops the in-flight step", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)

			Expect(c.Start(ctx)).To(BeTrue())
			Eventually(g.entered).Should(Receive())
			Expect(c.ResetToRunStart()).To(BeTrue())
			g.release <- struct{}{}
			c.Wait()

			Expect(c.Running()).To(BeFalse())
			Expect(c.Export().Equal(board(vertical...))).To(BeTrue())
			Expect(c.Generation()).To(Equal(0))
		})

		It("keeps the run start across repeated resets", func() {
			c := controllerFor(board(vertical...))
			c.SetSleeper(instant)
			_, err := c.Run(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.ResetToRunStart()).To(BeTrue())
			Expect(c.ResetToRunStart()).To(BeTrue())
			Expect(c.Export().Equal(board(vertical...))).To(BeTrue())
		})
	})

	Describe("ClearAll", func() {
		It("kills every cell and keeps the run start", func() {
			c := controllerFor(board(vertical...))
			c.SetSleeper(instant)
			_, err := c.Run(ctx, 3)
			Expect(err).NotTo(HaveOccurred())

			c.ClearAll()
			Expect(c.HasLiveCells()).To(BeFalse())
			Expect(c.Export().Population()).To(Equal(0))
			Expect(c.HasInitialSnapshot()).To(BeTrue())

			Expect(c.ResetToRunStart()).To(BeTrue())
			Expect(c.Export().Equal(board(vertical...))).To(BeTrue())
		})

		It("empties a board that never ran", func() {
			c := controllerFor(board("##", "##"))
			c.ClearAll()
			Expect(c.HasLiveCells()).To(BeFalse())
		})
	})

	Describe("Import", func() {
		It("replaces the board, stops playback and discards the run start", func() {
			c := controllerFor(board(vertical...))
			g := newGate()
			c.SetSleeper(g.sleep)
			Expect(c.Start(ctx)).To(BeTrue())
			Eventually(g.entered).Should(Receive())

			block := board("....", ".##.", ".##.", "....")
			Expect(c.Import(block)).To(Succeed())
			g.release <- struct{}{}
			c.Wait()

			Expect(c.Running()).To(BeFalse())
			Expect(c.HasInitialSnapshot()).To(BeFalse())
			Expect(c.Export().Equal(block)).To(BeTrue())
			Expect(c.ResetToRunStart()).To(BeFalse())
			Expect(c.Export().Equal(block)).To(BeTrue())
		})

		It("rejects a malformed snapshot without touching the board", func() {
			c := controllerFor(board(vertical...))
			bad := life.Snapshot{Height: 2, Width: 3, Cells: [][]bool{{true, false, true}, {true}}}

			err := c.Import(bad)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, life.ErrMalformedSnapshot)).To(BeTrue())
			Expect(c.Export().Equal(board(vertical...))).To(BeTrue())
		})
	})

	Describe("Run", func() {
		It("oscillates a blinker", func() {
			c := controllerFor(board(vertical...))
			c.SetSleeper(instant)

			res, err := c.Run(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final.Equal(board(horizontal...))).To(BeTrue())

			res, err = c.Run(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Final.Equal(board(vertical...))).To(BeTrue())
			Expect(res.Population).To(Equal([]int{3, 3}))
		})

		It("reports metrics and notifies observers", func() {
			c := controllerFor(board(vertical...))
			c.SetSleeper(instant)
			m := &countMetric{}
			c.AddMetric(m)
			var seen []int
			c.AddObserver(ObserverFunc(func(gen int, _ *life.Grid) { seen = append(seen, gen) }))

			res, err := c.Run(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveKeyWithValue("count", 4.0))
			Expect(m.gens).To(Equal([]int{0, 1, 2, 3}))
			Expect(seen).To(Equal([]int{1, 2, 3}))
		})

		It("reports zero generations on an empty grid", func() {
			empty, _ := life.NewSnapshot(2, 2)
			c := controllerFor(empty)
			res, err := c.Run(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Generations).To(Equal(0))
			Expect(c.HasInitialSnapshot()).To(BeFalse())
		})

		It("rejects a non-positive generation count", func() {
			c := controllerFor(board(vertical...))
			_, err := c.Run(ctx, 0)
			Expect(err).To(MatchError(ErrBadGenerations))
		})
	})

	Describe("StepOnce", func() {
		It("steps while idle and refuses while running", func() {
			c := controllerFor(board(vertical...))
			Expect(c.StepOnce(ctx)).To(BeTrue())
			Expect(c.Export().Equal(board(horizontal...))).To(BeTrue())

			g := newGate()
			c.SetSleeper(g.sleep)
			Expect(c.Start(ctx)).To(BeTrue())
			Expect(c.StepOnce(ctx)).To(BeFalse())
		})
	})

	Describe("Toggle", func() {
		It("edits the board and reports out-of-range cells", func() {
			empty, _ := life.NewSnapshot(2, 2)
			c := controllerFor(empty)
			Expect(c.Toggle(0, 1)).To(Succeed())
			Expect(c.HasLiveCells()).To(BeTrue())
			Expect(c.Toggle(2, 0)).To(MatchError(life.ErrOutOfBounds))
		})
	})
})

type countMetric struct{ gens []int }

func (m *countMetric) Name() string                  { return "count" }
func (m *countMetric) Observe(gen int, _ *life.Grid) { m.gens = append(m.gens, gen) }
func (m *countMetric) Value() float64                { return float64(len(m.gens)) }
func (m *countMetric) Reset()                        { m.gens = nil }
