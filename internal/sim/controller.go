package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/san-kum/lifesim/internal/life"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/san-kum/lifesim/internal/sim"

var (
	ErrRunning        = errors.New("sim: playback already running")
	ErrBadGenerations = errors.New("sim: generations must be positive")
)

// Controller owns a grid and plays it back one generation per interval.
// All methods are safe for concurrent use; they are serialized on one lock,
// so no two of them ever touch the grid at once.
type Controller struct {
	mu sync.Mutex

	grid       *life.Grid
	initial    *life.Snapshot
	running    bool
	interval   time.Duration
	generation int

	// epoch changes whenever a new run starts or the grid is replaced. A loop
	// from an older epoch exits without stepping.
	epoch uint64
	done  chan struct{}

	sleep     Sleeper
	observers []Observer
	metrics   []Metric
	history   []int
}

func New(grid *life.Grid) *Controller {
	return &Controller{
		grid:     grid,
		interval: IntervalForSpeed(DefaultSpeed),
		sleep:    sleepContext,
		metrics:  make([]Metric, 0),
	}
}

func (c *Controller) AddMetric(m Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = append(c.metrics, m)
}

func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// SetSleeper replaces the suspension used between generations.
func (c *Controller) SetSleeper(s Sleeper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil {
		s = sleepContext
	}
	c.sleep = s
}

// SetSpeed maps speed to the interval used from the next cycle on.
func (c *Controller) SetSpeed(speed int) {
	c.SetInterval(IntervalForSpeed(speed))
}

func (c *Controller) SetInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = max(d, 0)
}

func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Generation returns the number of generations stepped since the current
// board was loaded, imported or reset.
func (c *Controller) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Controller) HasLiveCells() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.HasLiveCells()
}

// HasInitialSnapshot reports whether a run's initial state is retained for
// ResetToRunStart.
func (c *Controller) HasInitialSnapshot() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initial != nil
}

// Export returns a copy of the current board.
func (c *Controller) Export() life.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Export()
}

// InitialSnapshot returns a copy of the retained run start, if any.
func (c *Controller) InitialSnapshot() (life.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initial == nil {
		return life.Snapshot{}, false
	}
	return c.initial.Clone(), true
}

// Population returns the population recorded for each generation of the
// latest run, starting with the run's initial board.
func (c *Controller) Population() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.history...)
}

func (c *Controller) Toggle(row, col int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grid.Toggle(row, col)
}

// Start begins playback. It is a no-op returning false when playback is
// already running or the grid has no live cells; in that case the retained
// run start is left untouched.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked(ctx, 0)
}

// Stop ends playback at the next check point. A step whose suspension is
// already under way still runs; no further cycle follows it.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Wait blocks until the latest playback loop has exited.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Run plays back generations steps and blocks until they are done, the
// context ends, or Stop is called. Like Start, it is a no-op on a grid with no
// live cells and then reports zero generations.
func (c *Controller) Run(ctx context.Context, generations int) (*Result, error) {
	if generations <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrBadGenerations, generations)
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrRunning
	}
	if !c.startLocked(ctx, generations) {
		snap := c.grid.Export()
		c.mu.Unlock()
		return &Result{
			Initial:    snap,
			Final:      snap.Clone(),
			Population: []int{0},
			Metrics:    map[string]float64{},
		}, nil
	}
	done := c.done
	c.mu.Unlock()

	<-done

	c.mu.Lock()
	defer c.mu.Unlock()
	result := &Result{
		Generations: max(len(c.history)-1, 0),
		Final:       c.grid.Export(),
		Population:  append([]int(nil), c.history...),
		Metrics:     make(map[string]float64, len(c.metrics)),
	}
	if c.initial != nil {
		result.Initial = c.initial.Clone()
	}
	for _, m := range c.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, ctx.Err()
}

// StepOnce advances one generation by hand. It does nothing while playback
// is running.
func (c *Controller) StepOnce(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.stepLocked(ctx)
	return true
}

// ResetToRunStart restores the board captured when the latest run started
// and stops playback. Without a retained run start it changes nothing; use
// ClearAll to empty the board.
func (c *Controller) ResetToRunStart() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initial == nil {
		return false
	}
	g, err := life.FromSnapshot(*c.initial)
	if err != nil {
		return false
	}
	c.replaceLocked(g)
	return true
}

// ClearAll kills every cell. The retained run start and the playback state
// are left as they are.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grid.Clear()
}

// Import replaces the board with s. The snapshot is validated first; on error
// nothing changes. A successful import stops playback and discards the
// retained run start.
func (c *Controller) Import(s life.Snapshot) error {
	g, err := life.FromSnapshot(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(g)
	c.initial = nil
	c.history = nil
	return nil
}

func (c *Controller) startLocked(ctx context.Context, limit int) bool {
	if c.running || !c.grid.HasLiveCells() {
		return false
	}
	snap := c.grid.Export()
	c.initial = &snap
	c.running = true
	c.epoch++
	c.history = []int{snap.Population()}
	for _, m := range c.metrics {
		m.Reset()
		m.Observe(0, c.grid)
	}

	done := make(chan struct{})
	c.done = done
	go c.loop(ctx, c.epoch, limit, done)
	return true
}

func (c *Controller) replaceLocked(g *life.Grid) {
	c.grid = g
	c.running = false
	c.epoch++
	c.generation = 0
}

func (c *Controller) loop(ctx context.Context, epoch uint64, limit int, done chan struct{}) {
	defer close(done)

	steps := 0
	for {
		c.mu.Lock()
		sleep, interval := c.sleep, c.interval
		c.mu.Unlock()

		if err := sleep(ctx, interval); err != nil {
			c.mu.Lock()
			if c.epoch == epoch {
				c.running = false
			}
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		if c.epoch != epoch {
			c.mu.Unlock()
			return
		}
		c.stepLocked(ctx)
		steps++
		if limit > 0 && steps >= limit {
			c.running = false
		}
		running := c.running
		c.mu.Unlock()

		if !running {
			return
		}
	}
}

func (c *Controller) stepLocked(ctx context.Context) {
	_, span := otel.Tracer(tracerName).Start(ctx, "life.generation",
		trace.WithAttributes(attribute.Int("generation", c.generation+1)))
	defer span.End()

	life.Step(c.grid)
	c.generation++
	pop := c.grid.Population()
	c.history = append(c.history, pop)
	span.SetAttributes(attribute.Int("population", pop))

	for _, m := range c.metrics {
		m.Observe(c.generation, c.grid)
	}
	for _, o := range c.observers {
		o.OnGeneration(c.generation, c.grid)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
