package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/lifesim/internal/config"
	"github.com/san-kum/lifesim/internal/experiment"
	"github.com/san-kum/lifesim/internal/export"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
	"github.com/san-kum/lifesim/internal/storage"
	"github.com/san-kum/lifesim/internal/store"
	"github.com/san-kum/lifesim/internal/telemetry"
	"github.com/san-kum/lifesim/internal/tui"
	"github.com/san-kum/lifesim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	preset      string
	dataDir     string
	storeKind   string
	height      int
	width       int
	speed       int
	generations int
	density     float64
	seed        int64
	theme       string
	// new
	random      bool
	patternName string
	// run
	live    bool
	plot    bool
	save    bool
	runName string
	metrics []string
	// step, svg, restore
	outFile string
	steps   int
	scale   float64
	final   bool
	braille bool
	// survey
	numRuns int
	// plot
	svgFile string
	// analyze, sweep
	cycleLimit  int
	densities   []float64
	sweepMetric string
	sweepSeeds  int
	minimize    bool
)

// main is the entry point for the lifesim CLI; with no subcommand it opens
// the interactive board editor.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "lifesim")
	if err != nil {
		log.Printf("telemetry disabled: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	rootCmd := &cobra.Command{
		Use:   "lifesim",
		Short: "finite-grid game of life lab",
		RunE:  runEditor,
	}
	rootCmd.SetContext(ctx)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "board-size preset")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run library directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", config.StoreFile, "run library backend (file|sqlite)")
	rootCmd.PersistentFlags().IntVar(&height, "height", config.DefaultHeight, "board height")
	rootCmd.PersistentFlags().IntVar(&width, "width", config.DefaultWidth, "board width")
	rootCmd.PersistentFlags().IntVar(&speed, "speed", sim.DefaultSpeed, "playback speed 0-100")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed")
	rootCmd.PersistentFlags().Float64Var(&density, "density", config.DefaultDensity, "live cell density for random boards")

	newCmd := &cobra.Command{
		Use:   "new [file]",
		Short: "write a new board file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  newBoard,
	}
	newCmd.Flags().BoolVar(&random, "random", false, "fill with a random soup")
	newCmd.Flags().StringVar(&patternName, "pattern", "", "place a prefab pattern")

	runCmd := &cobra.Command{
		Use:   "run [board]",
		Short: "play a board headless",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBoard,
	}
	runCmd.Flags().IntVarP(&generations, "generations", "g", config.DefaultGenerations, "generations to play")
	runCmd.Flags().BoolVar(&live, "live", false, "draw every generation")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot population when done")
	runCmd.Flags().BoolVar(&save, "save", false, "save the run to the library")
	runCmd.Flags().StringVar(&runName, "name", "", "name for the saved run")
	runCmd.Flags().StringSliceVar(&metrics, "metrics", nil, "metrics to report (default all)")

	stepCmd := &cobra.Command{
		Use:   "step [board]",
		Short: "advance a board and write the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  stepBoard,
	}
	stepCmd.Flags().IntVarP(&steps, "n", "n", 1, "generations to advance")
	stepCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: overwrite input)")

	showCmd := &cobra.Command{
		Use:   "show [board]",
		Short: "print a board",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showBoard,
	}
	showCmd.Flags().BoolVar(&braille, "braille", false, "compact braille rendering")

	svgCmd := &cobra.Command{
		Use:   "svg [board]",
		Short: "render a board as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  svgBoard,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "board.svg", "output file")
	svgCmd.Flags().Float64Var(&scale, "scale", 10, "pixels per cell")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot population of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "also write the chart as SVG")

	restoreCmd := &cobra.Command{
		Use:   "restore [run_id]",
		Short: "write a saved run's board to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  restoreRun,
	}
	restoreCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: configured board file)")
	restoreCmd.Flags().BoolVar(&final, "final", false, "write the final board instead of the initial one")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export population per generation to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	surveyCmd := &cobra.Command{
		Use:   "survey",
		Short: "play many random soups concurrently",
		RunE:  survey,
	}
	surveyCmd.Flags().IntVar(&numRuns, "runs", 8, "number of soups")
	surveyCmd.Flags().IntVarP(&generations, "generations", "g", config.DefaultGenerations, "generations to play")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "find oscillation and settling of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&cycleLimit, "max-generations", 1000, "generations to search for a repeating board")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search soup density against a metric",
		RunE:  sweepDensity,
	}
	sweepCmd.Flags().Float64SliceVar(&densities, "densities", []float64{0.1, 0.2, 0.3, 0.4, 0.5}, "densities to try")
	sweepCmd.Flags().IntVar(&sweepSeeds, "seeds", 3, "seeds per density")
	sweepCmd.Flags().IntVarP(&generations, "generations", "g", config.DefaultGenerations, "generations to play")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "churn", "metric to optimize")
	sweepCmd.Flags().BoolVar(&minimize, "minimize", false, "prefer the lowest metric value")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "run a scripted sequence of boards",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list board-size presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("  %-8s %dx%d  speed %d\n", name, p.Height, p.Width, p.Speed)
			}
		},
	}

	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "list prefab patterns",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListPatterns() {
				fmt.Printf("  %s\n", name)
			}
		},
	}

	rootCmd.AddCommand(newCmd, runCmd, stepCmd, showCmd, svgCmd, listCmd, plotCmd, restoreCmd,
		exportCmd, exportCSVCmd, surveyCmd, analyzeCmd, sweepCmd, scriptCmd, presetsCmd, patternsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers defaults, preset, config file, LIFESIM_* variables and
// finally any flag set on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("height") {
		cfg.Height = height
	}
	if changed("width") {
		cfg.Width = width
	}
	if changed("speed") {
		cfg.Speed = speed
	}
	if changed("generations") {
		cfg.Generations = generations
	}
	if changed("density") {
		cfg.Density = density
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("theme") {
		cfg.Theme = theme
	}
	if changed("data") {
		cfg.DataDir = dataDir
	}
	if changed("store") {
		cfg.Store = storeKind
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func boardPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.BoardFile
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	snap, err := store.ImportFile(cfg.BoardFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		snap, err = life.NewSnapshot(cfg.Height, cfg.Width)
		if err != nil {
			return err
		}
	case err != nil:
		log.Printf("ignoring board file %s: %v", cfg.BoardFile, err)
		snap, err = life.NewSnapshot(cfg.Height, cfg.Width)
		if err != nil {
			return err
		}
	}

	grid, err := life.FromSnapshot(snap)
	if err != nil {
		return err
	}
	return viz.Run(cmd.Context(), sim.New(grid), viz.AppConfig{
		BoardFile: cfg.BoardFile,
		Theme:     cfg.Theme,
		Speed:     cfg.Speed,
		Seed:      cfg.Seed,
	})
}

func newBoard(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := boardPath(cfg, args)

	var snap life.Snapshot
	switch {
	case random && patternName != "":
		return fmt.Errorf("--random and --pattern are mutually exclusive")
	case random:
		snap, err = life.RandomSnapshot(cfg.Height, cfg.Width, cfg.Density, cfg.Seed)
	case patternName != "":
		snap, err = experiment.NewRegistry().PlacePattern(patternName, cfg.Height, cfg.Width)
	default:
		snap, err = life.NewSnapshot(cfg.Height, cfg.Width)
	}
	if err != nil {
		return err
	}

	if err := store.ExportFile(path, snap); err != nil {
		return err
	}
	fmt.Printf("wrote %dx%d board (%d live) to %s\n", snap.Height, snap.Width, snap.Population(), path)
	return nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := boardPath(cfg, args)
	snap, err := store.ImportFile(path)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	var ms []sim.Metric
	if len(metrics) == 0 {
		ms = registry.DefaultMetrics()
	} else {
		for _, name := range metrics {
			m, err := registry.GetMetric(strings.TrimSpace(name))
			if err != nil {
				return fmt.Errorf("%w (available: %v)", err, registry.ListMetrics())
			}
			ms = append(ms, m)
		}
	}

	// headless runs go flat out unless a pace was asked for
	var interval time.Duration
	if live || cmd.Flags().Changed("speed") {
		interval = sim.IntervalForSpeed(cfg.Speed)
	}

	var observers []sim.Observer
	var renderer *tui.LiveRenderer
	if live {
		renderer = tui.NewLiveRenderer(os.Stdout, path, 30)
		observers = append(observers, renderer)
		renderer.Start()
		defer renderer.Stop()
	}

	exp := experiment.New(experiment.Config{Board: snap, Generations: cfg.Generations, Interval: interval})
	if err := exp.Setup(ms, observers...); err != nil {
		return err
	}

	if !live {
		fmt.Printf("running %s for %d generations...\n", path, cfg.Generations)
	}
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	elapsed := time.Since(start)

	if result.Generations == 0 {
		fmt.Println("board has no live cells; nothing to run")
		return nil
	}

	fmt.Printf("completed %d generations in %v\n", result.Generations, elapsed)
	fmt.Printf("population: %d -> %d\n", result.Initial.Population(), result.Final.Population())
	fmt.Println("\nmetrics:")
	for _, m := range ms {
		fmt.Printf("  %s: %.4f\n", m.Name(), result.Metrics[m.Name()])
	}

	if plot {
		fmt.Println()
		fmt.Println(populationChart(result.Population))
	}

	if save {
		lib, err := openLibrary(cfg)
		if err != nil {
			return err
		}
		defer lib.Close()

		name := runName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		runID, err := lib.Save(storage.RunRecord{Name: name, Speed: cfg.Speed, Result: result})
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func stepBoard(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if steps < 0 {
		return fmt.Errorf("-n must not be negative, got %d", steps)
	}
	path := boardPath(cfg, args)
	snap, err := store.ImportFile(path)
	if err != nil {
		return err
	}
	grid, err := life.FromSnapshot(snap)
	if err != nil {
		return err
	}
	life.StepN(grid, steps)

	out := outFile
	if out == "" {
		out = path
	}
	if err := store.ExportFile(out, grid.Export()); err != nil {
		return err
	}
	fmt.Printf("advanced %d generations, %d live, wrote %s\n", steps, grid.Population(), out)
	return nil
}

func showBoard(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	snap, err := store.ImportFile(boardPath(cfg, args))
	if err != nil {
		return err
	}

	if braille {
		fmt.Print(viz.BoardCanvas(snap).String())
	} else {
		var b strings.Builder
		for _, row := range snap.Cells {
			for _, alive := range row {
				if alive {
					b.WriteByte('#')
				} else {
					b.WriteByte('.')
				}
			}
			b.WriteByte('\n')
		}
		fmt.Print(b.String())
	}
	fmt.Printf("%dx%d, %d live\n", snap.Height, snap.Width, snap.Population())
	return nil
}

func svgBoard(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	snap, err := store.ImportFile(boardPath(cfg, args))
	if err != nil {
		return err
	}
	svg := export.BoardToSVG(snap, scale)
	if svg == "" {
		return fmt.Errorf("scale must be positive, got %g", scale)
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func survey(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("--runs must be positive, got %d", numRuns)
	}

	registry := experiment.NewRegistry()
	ens := sim.NewEnsemble(cfg.Height, cfg.Width, cfg.Density, numRuns, cfg.Seed).
		WithMetrics(registry.DefaultMetrics)

	fmt.Printf("surveying %d soups of %dx%d at density %.2f...\n", numRuns, cfg.Height, cfg.Width, cfg.Density)
	results, err := ens.Run(cmd.Context(), cfg.Generations)
	if err != nil {
		return err
	}

	names := registry.ListMetrics()
	header := "SEED\tGENS\tSTART\tEND"
	for _, n := range names {
		header += "\t" + strings.ToUpper(n)
	}
	w := newTabWriter()
	fmt.Fprintln(w, header)
	for i, res := range results {
		line := fmt.Sprintf("%d\t%d\t%d\t%d", cfg.Seed+int64(i), res.Generations, res.Initial.Population(), res.Final.Population())
		for _, n := range names {
			line += fmt.Sprintf("\t%.3f", res.Metrics[n])
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func populationChart(population []int) string {
	data := make([]float64, len(population))
	for i, p := range population {
		data[i] = float64(p)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("population per generation"),
	)
}
