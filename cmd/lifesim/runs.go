package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/san-kum/lifesim/internal/config"
	"github.com/san-kum/lifesim/internal/export"
	"github.com/san-kum/lifesim/internal/storage"
	"github.com/san-kum/lifesim/internal/storage/sqlite"
	"github.com/san-kum/lifesim/internal/store"
	"github.com/spf13/cobra"
)

const sqliteFile = "runs.db"

func openLibrary(cfg *config.Config) (storage.Library, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, err
		}
		return sqlite.Open(filepath.Join(cfg.DataDir, sqliteFile))
	default:
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		return st, nil
	}
}

func libraryFor(cmd *cobra.Command) (storage.Library, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openLibrary(cfg)
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func listRuns(cmd *cobra.Command, args []string) error {
	lib, err := libraryFor(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	runs, err := lib.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := newTabWriter()
	fmt.Fprintln(w, "ID\tNAME\tTIME\tBOARD\tGENS\tSPEED\tFINAL POP")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Height,
			run.Width,
			run.Generations,
			run.Speed,
			run.Population,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	lib, err := libraryFor(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	meta, err := lib.Load(runID)
	if err != nil {
		return err
	}
	population, err := lib.LoadPopulation(runID)
	if err != nil {
		return err
	}
	if len(population) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("board: %dx%d\n", meta.Height, meta.Width)
	fmt.Printf("generations: %d\n\n", meta.Generations)
	fmt.Println(populationChart(population))

	if svgFile != "" {
		svg := export.PopulationToSVG(population, 800, 300, "#00ff88")
		if svg == "" {
			return fmt.Errorf("need at least two generations for an SVG chart")
		}
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgFile)
	}
	return nil
}

func restoreRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	initial, last, err := lib.LoadBoards(runID)
	if err != nil {
		return err
	}
	snap, which := initial, "initial"
	if final {
		snap, which = last, "final"
	}

	out := outFile
	if out == "" {
		out = cfg.BoardFile
	}
	if err := store.ExportFile(out, snap); err != nil {
		return err
	}
	fmt.Printf("wrote %s board of %s to %s\n", which, runID, out)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	lib, err := libraryFor(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	meta, err := lib.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	lib, err := libraryFor(cmd)
	if err != nil {
		return err
	}
	defer lib.Close()

	population, err := lib.LoadPopulation(args[0])
	if err != nil {
		return err
	}
	if len(population) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"generation", "population"}); err != nil {
		return err
	}
	for gen, pop := range population {
		if err := w.Write([]string{strconv.Itoa(gen), strconv.Itoa(pop)}); err != nil {
			return err
		}
	}
	return nil
}
