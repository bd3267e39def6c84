package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/lifesim/internal/experiment"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
	"github.com/san-kum/lifesim/internal/storage"
	"github.com/san-kum/lifesim/internal/store"
	"gopkg.in/yaml.v3"
)

var ErrNoBoard = errors.New("automation: step needs one of pattern, board or density")

// Scenario is a scripted sequence of headless runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Exactly one board source is used: a named
// pattern, a board file, or a random soup at Density.
type ScenarioStep struct {
	Name        string   `yaml:"name"`
	Pattern     string   `yaml:"pattern"`
	Board       string   `yaml:"board"`
	Density     *float64 `yaml:"density"`
	Seed        int64    `yaml:"seed"`
	Height      int      `yaml:"height"`
	Width       int      `yaml:"width"`
	Generations int      `yaml:"generations"`
	Metrics     []string `yaml:"metrics"`
	Save        bool     `yaml:"save"`
}

// StepResult pairs a finished step with the id it was saved under, if any.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Runner executes scenarios. Lib may be nil, in which case save is ignored.
type Runner struct {
	Registry *experiment.Registry
	Lib      storage.Library
	Out      io.Writer
	Height   int
	Width    int
}

// Run executes every step in order and stops at the first failure, returning
// the results gathered so far.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", scenario.Name, i+1)
		}
		r.printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		board, err := r.board(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		metrics, err := r.metrics(step.Metrics)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(experiment.Config{Board: board, Generations: step.Generations})
		if err := exp.Setup(metrics); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: result}
		if step.Save && r.Lib != nil {
			id, err := r.Lib.Save(storage.RunRecord{Name: name, Result: result})
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

func (r *Runner) board(step ScenarioStep) (life.Snapshot, error) {
	h, w := step.Height, step.Width
	if h == 0 {
		h = r.Height
	}
	if w == 0 {
		w = r.Width
	}

	switch {
	case step.Pattern != "":
		return r.Registry.PlacePattern(step.Pattern, h, w)
	case step.Board != "":
		return store.ImportFile(step.Board)
	case step.Density != nil:
		return life.RandomSnapshot(h, w, *step.Density, step.Seed)
	}
	return life.Snapshot{}, ErrNoBoard
}

func (r *Runner) metrics(names []string) ([]sim.Metric, error) {
	if len(names) == 0 {
		return r.Registry.DefaultMetrics(), nil
	}
	out := make([]sim.Metric, 0, len(names))
	for _, n := range names {
		m, err := r.Registry.GetMetric(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out != nil {
		fmt.Fprintf(r.Out, format, args...)
	}
}
