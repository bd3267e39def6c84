package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/lifesim/internal/config"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
	"github.com/san-kum/lifesim/internal/storage"
	"github.com/spf13/cobra"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "")
	cmd.Flags().IntVar(&speed, "speed", sim.DefaultSpeed, "")
	cmd.Flags().StringVar(&storeKind, "store", config.StoreFile, "")
	cmd.Flags().StringVar(&dataDir, "data", config.DefaultDataDir, "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		configFile, preset = "", ""
	})
	return cmd
}

func TestResolveConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifesim.yaml")
	if err := os.WriteFile(path, []byte("height: 12\nwidth: 20\nspeed: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LIFESIM_WIDTH", "40")
	t.Setenv("LIFESIM_SPEED", "60")

	cmd := testCommand(t, "--speed", "75")
	configFile = path

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != 12 {
		t.Errorf("height from file: got %d", cfg.Height)
	}
	if cfg.Width != 40 {
		t.Errorf("width from env: got %d", cfg.Width)
	}
	if cfg.Speed != 75 {
		t.Errorf("speed from flag: got %d", cfg.Speed)
	}
}

func TestResolveConfigPreset(t *testing.T) {
	cmd := testCommand(t)
	preset = "small"

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Height != config.Presets["small"].Height {
		t.Errorf("expected preset height, got %d", cfg.Height)
	}

	preset = "galactic"
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestResolveConfigRejectsBadBoard(t *testing.T) {
	cmd := testCommand(t, "--height", "0")
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestOpenLibraryBackends(t *testing.T) {
	for _, kind := range []string{config.StoreFile, config.StoreSQLite} {
		cfg := config.DefaultConfig()
		cfg.Store = kind
		cfg.DataDir = filepath.Join(t.TempDir(), "runs")

		lib, err := openLibrary(cfg)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}

		snap, err := life.NewSnapshot(3, 3)
		if err != nil {
			t.Fatal(err)
		}
		snap.Cells[1][0], snap.Cells[1][1], snap.Cells[1][2] = true, true, true
		id, err := lib.Save(storage.RunRecord{
			Name:   "blinker",
			Result: &sim.Result{Generations: 1, Initial: snap, Final: snap, Population: []int{3, 3}},
		})
		if err != nil {
			t.Fatalf("%s save: %v", kind, err)
		}
		runs, err := lib.List()
		if err != nil || len(runs) != 1 || runs[0].ID != id {
			t.Errorf("%s list = %v, %v", kind, runs, err)
		}
		if err := lib.Close(); err != nil {
			t.Errorf("%s close: %v", kind, err)
		}
	}
}

func TestAnalyzeRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	cmd := testCommand(t, "--data", dir)
	cycleLimit = 10

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := life.NewSnapshot(5, 5)
	if err != nil {
		t.Fatal(err)
	}
	snap.Cells[2][1], snap.Cells[2][2], snap.Cells[2][3] = true, true, true
	id, err := lib.Save(storage.RunRecord{
		Name:   "blinker",
		Result: &sim.Result{Generations: 3, Initial: snap, Final: snap, Population: []int{3, 3, 3, 3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	lib.Close()

	if err := analyzeRun(cmd, []string{id}); err != nil {
		t.Errorf("analyze %s: %v", id, err)
	}
	if err := analyzeRun(cmd, []string{"missing"}); err == nil {
		t.Error("expected error for missing run")
	}
}
