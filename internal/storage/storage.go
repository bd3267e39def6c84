package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/sim"
)

var (
	ErrNotFound = errors.New("storage: run not found")
	ErrNoResult = errors.New("storage: run has no result")
	ErrBadName  = errors.New("storage: invalid run name")
)

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Height      int                `json:"height"`
	Width       int                `json:"width"`
	Speed       int                `json:"speed"`
	Generations int                `json:"generations"`
	Population  int                `json:"population"`
	Metrics     map[string]float64 `json:"metrics"`
}

// RunRecord is everything saved for one playback run.
type RunRecord struct {
	Name   string
	Speed  int
	Result *sim.Result
}

// Library persists finished runs. Both the directory store and the SQLite
// store implement it.
type Library interface {
	Save(rec RunRecord) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadBoards(runID string) (initial, final life.Snapshot, err error)
	LoadPopulation(runID string) ([]int, error)
	Close() error
}

// ValidateRecord checks rec before anything is written: the name must be
// usable as a single path element and both boards must be well formed.
func ValidateRecord(rec RunRecord) error {
	if rec.Result == nil {
		return ErrNoResult
	}
	if rec.Name == "." || rec.Name == ".." || strings.ContainsAny(rec.Name, `/\`) {
		return fmt.Errorf("%w: %q", ErrBadName, rec.Name)
	}
	if err := rec.Result.Initial.Validate(); err != nil {
		return fmt.Errorf("initial board: %w", err)
	}
	if err := rec.Result.Final.Validate(); err != nil {
		return fmt.Errorf("final board: %w", err)
	}
	return nil
}

// NewMetadata fills the metadata for rec under the given id.
func NewMetadata(id string, rec RunRecord, now time.Time) RunMetadata {
	meta := RunMetadata{
		ID:        id,
		Name:      rec.Name,
		Timestamp: now,
		Speed:     rec.Speed,
		Metrics:   map[string]float64{},
	}
	if rec.Result == nil {
		return meta
	}
	meta.Height = rec.Result.Initial.Height
	meta.Width = rec.Result.Initial.Width
	meta.Generations = rec.Result.Generations
	meta.Population = rec.Result.Final.Population()
	for k, v := range rec.Result.Metrics {
		meta.Metrics[k] = v
	}
	return meta
}
