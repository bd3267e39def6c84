package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHeight      = 30
	DefaultWidth       = 76
	DefaultGenerations = 100
	DefaultDensity     = 0.25
	DefaultTheme       = "classic"
	DefaultDataDir     = "runs"
	DefaultBoardFile   = "board.json"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	Height      int     `yaml:"height" env:"LIFESIM_HEIGHT"`
	Width       int     `yaml:"width" env:"LIFESIM_WIDTH"`
	Speed       int     `yaml:"speed" env:"LIFESIM_SPEED"`
	Generations int     `yaml:"generations" env:"LIFESIM_GENERATIONS"`
	Density     float64 `yaml:"density" env:"LIFESIM_DENSITY"`
	Seed        int64   `yaml:"seed" env:"LIFESIM_SEED"`
	Theme       string  `yaml:"theme" env:"LIFESIM_THEME"`
	DataDir     string  `yaml:"data_dir" env:"LIFESIM_DATA_DIR"`
	Store       string  `yaml:"store" env:"LIFESIM_STORE"`
	BoardFile   string  `yaml:"board_file" env:"LIFESIM_BOARD_FILE"`
}

func DefaultConfig() *Config {
	return &Config{
		Height:      DefaultHeight,
		Width:       DefaultWidth,
		Speed:       sim.DefaultSpeed,
		Generations: DefaultGenerations,
		Density:     DefaultDensity,
		Theme:       DefaultTheme,
		DataDir:     DefaultDataDir,
		Store:       StoreFile,
		BoardFile:   DefaultBoardFile,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from LIFESIM_* variables. Unset variables leave
// the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the values a board or a run is built from.
func (c *Config) Validate() error {
	if c.Height < 1 || c.Width < 1 {
		return &life.ConfigurationError{Height: c.Height, Width: c.Width}
	}
	if c.Generations < 1 {
		return fmt.Errorf("config: generations must be positive, got %d", c.Generations)
	}
	if c.Density < 0 || c.Density > 1 {
		return fmt.Errorf("config: density must be in [0, 1], got %g", c.Density)
	}
	switch c.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown store %q (want %s or %s)", c.Store, StoreFile, StoreSQLite)
	}
	return nil
}
