package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/lifesim/internal/analysis"
	"github.com/san-kum/lifesim/internal/automation"
	"github.com/san-kum/lifesim/internal/experiment"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/optim"
	"github.com/san-kum/lifesim/internal/sim"
	"github.com/spf13/cobra"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	lib, err := libraryFor(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	runID := args[0]
	population, err := lib.LoadPopulation(runID)
	if err != nil {
		return err
	}
	_, finalBoard, err := lib.LoadBoards(runID)
	if err != nil {
		return err
	}

	series := make([]float64, len(population))
	for i, p := range population {
		series[i] = float64(p)
	}

	fmt.Printf("run %s: %d generations\n", runID, max(len(population)-1, 0))

	if ps := analysis.PowerSpectrum(series); len(ps) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("population power spectrum"),
		))
	}
	if p := analysis.DominantPeriod(series); p > 0 {
		fmt.Printf("\ndominant population period: %.1f generations\n", p)
	} else {
		fmt.Println("\npopulation is constant")
	}

	c, ok, err := analysis.FindCycle(finalBoard, cycleLimit)
	if err != nil {
		return err
	}
	switch {
	case !ok:
		fmt.Printf("final board does not repeat within %d generations\n", cycleLimit)
	case c.Period == 1:
		fmt.Printf("final board settles after %d generations\n", c.Start)
	default:
		fmt.Printf("final board enters a period-%d cycle after %d generations\n", c.Period, c.Start)
	}
	return nil
}

func sweepDensity(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if sweepSeeds < 1 {
		return fmt.Errorf("--seeds must be positive, got %d", sweepSeeds)
	}

	registry := experiment.NewRegistry()
	if _, err := registry.GetMetric(sweepMetric); err != nil {
		return fmt.Errorf("%w (available: %v)", err, registry.ListMetrics())
	}

	seeds := optim.Linspace(float64(cfg.Seed), float64(cfg.Seed)+float64(sweepSeeds-1), sweepSeeds)
	gs := optim.NewGridSearch([]string{"density", "seed"}, [][]float64{densities, seeds})
	if !minimize {
		gs.Maximize()
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		snap, err := life.RandomSnapshot(cfg.Height, cfg.Width, params["density"], int64(params["seed"]))
		if err != nil {
			return nil, err
		}
		m, err := registry.GetMetric(sweepMetric)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Board: snap, Generations: cfg.Generations})
		if err := exp.Setup([]sim.Metric{m}); err != nil {
			return nil, err
		}
		return exp, nil
	}

	fmt.Printf("sweeping %d densities x %d seeds on %dx%d...\n", len(densities), sweepSeeds, cfg.Height, cfg.Width)
	best, trials, err := gs.Search(cmd.Context(), build, sweepMetric)
	if err != nil {
		return err
	}

	sums := map[float64]float64{}
	counts := map[float64]int{}
	for _, t := range trials {
		sums[t.Params["density"]] += t.Value
		counts[t.Params["density"]]++
	}
	keys := make([]float64, 0, len(sums))
	for d := range sums {
		keys = append(keys, d)
	}
	sort.Float64s(keys)

	w := newTabWriter()
	fmt.Fprintf(w, "DENSITY\tMEAN %s\tRUNS\n", sweepMetric)
	for _, d := range keys {
		fmt.Fprintf(w, "%.3f\t%.4f\t%d\n", d, sums[d]/float64(counts[d]), counts[d])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: density %.3f seed %d -> %s %.4f\n",
		best.Params["density"], int64(best.Params["seed"]), sweepMetric, best.Value)
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	r := &automation.Runner{
		Registry: experiment.NewRegistry(),
		Lib:      lib,
		Out:      os.Stdout,
		Height:   cfg.Height,
		Width:    cfg.Width,
	}
	results, err := r.Run(cmd.Context(), scenario)

	w := newTabWriter()
	fmt.Fprintln(w, "\nSTEP\tGENS\tSTART\tEND\tRUN ID")
	for _, res := range results {
		id := res.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", res.Name, res.Result.Generations,
			res.Result.Initial.Population(), res.Result.Final.Population(), id)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
