package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/lifesim/internal/life"
	"github.com/san-kum/lifesim/internal/storage"
	"github.com/san-kum/lifesim/internal/storage/sqlite/migrations"
	boardfile "github.com/san-kum/lifesim/internal/store"
	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store provides SQLite-backed persistence for saved runs.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Library = (*Store)(nil)

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func encodeBoard(snap life.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := boardfile.Encode(&buf, snap, boardfile.JSON); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeBoard(value string) (life.Snapshot, error) {
	return boardfile.Decode(strings.NewReader(value), boardfile.JSON)
}

// Save persists a finished run.
func (s *Store) Save(rec storage.RunRecord) (string, error) {
	if err := storage.ValidateRecord(rec); err != nil {
		return "", err
	}
	now := s.now()
	name := rec.Name
	if name == "" {
		name = "run"
	}

	id, err := s.newID(name, now)
	if err != nil {
		return "", err
	}
	meta := storage.NewMetadata(id, rec, now)

	initial, err := encodeBoard(rec.Result.Initial)
	if err != nil {
		return "", fmt.Errorf("encode initial board: %w", err)
	}
	final, err := encodeBoard(rec.Result.Final)
	if err != nil {
		return "", fmt.Errorf("encode final board: %w", err)
	}
	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", fmt.Errorf("marshal metrics: %w", err)
	}
	population, err := json.Marshal(rec.Result.Population)
	if err != nil {
		return "", fmt.Errorf("marshal population: %w", err)
	}

	_, err = s.sqlDB.Exec(`
INSERT INTO runs (
    id, name, created_at, height, width, speed, generations, population,
    metrics_json, initial_board, final_board, population_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, toMillis(meta.Timestamp), meta.Height, meta.Width, meta.Speed,
		meta.Generations, meta.Population, string(metrics), initial, final, string(population),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (s *Store) newID(name string, now time.Time) (string, error) {
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	id := base
	for i := 1; ; i++ {
		var count int
		if err := s.sqlDB.QueryRow(`SELECT COUNT(1) FROM runs WHERE id = ?`, id).Scan(&count); err != nil {
			return "", fmt.Errorf("check run id: %w", err)
		}
		if count == 0 {
			return id, nil
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

const metadataColumns = `id, name, created_at, height, width, speed, generations, population, metrics_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetadata(row rowScanner) (storage.RunMetadata, error) {
	var (
		meta       storage.RunMetadata
		createdAt  int64
		metricsRaw string
	)
	if err := row.Scan(
		&meta.ID, &meta.Name, &createdAt, &meta.Height, &meta.Width,
		&meta.Speed, &meta.Generations, &meta.Population, &metricsRaw,
	); err != nil {
		return storage.RunMetadata{}, err
	}
	meta.Timestamp = fromMillis(createdAt)
	meta.Metrics = map[string]float64{}
	if err := json.Unmarshal([]byte(metricsRaw), &meta.Metrics); err != nil {
		return storage.RunMetadata{}, fmt.Errorf("unmarshal metrics: %w", err)
	}
	return meta, nil
}

// List returns every saved run, oldest first.
func (s *Store) List() ([]storage.RunMetadata, error) {
	rows, err := s.sqlDB.Query(`SELECT ` + metadataColumns + ` FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]storage.RunMetadata, 0)
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Load returns the metadata of one run.
func (s *Store) Load(runID string) (*storage.RunMetadata, error) {
	meta, err := scanMetadata(s.sqlDB.QueryRow(`SELECT `+metadataColumns+` FROM runs WHERE id = ?`, runID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, runID)
		}
		return nil, err
	}
	return &meta, nil
}

// LoadBoards returns the initial and final boards of a run.
func (s *Store) LoadBoards(runID string) (life.Snapshot, life.Snapshot, error) {
	var initialRaw, finalRaw string
	err := s.sqlDB.QueryRow(`SELECT initial_board, final_board FROM runs WHERE id = ?`, runID).Scan(&initialRaw, &finalRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return life.Snapshot{}, life.Snapshot{}, fmt.Errorf("%w: %s", storage.ErrNotFound, runID)
		}
		return life.Snapshot{}, life.Snapshot{}, err
	}
	initial, err := decodeBoard(initialRaw)
	if err != nil {
		return life.Snapshot{}, life.Snapshot{}, fmt.Errorf("decode initial board: %w", err)
	}
	final, err := decodeBoard(finalRaw)
	if err != nil {
		return life.Snapshot{}, life.Snapshot{}, fmt.Errorf("decode final board: %w", err)
	}
	return initial, final, nil
}

// LoadPopulation returns the population per generation of a run.
func (s *Store) LoadPopulation(runID string) ([]int, error) {
	var raw string
	err := s.sqlDB.QueryRow(`SELECT population_json FROM runs WHERE id = ?`, runID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, runID)
		}
		return nil, err
	}
	var population []int
	if err := json.Unmarshal([]byte(raw), &population); err != nil {
		return nil, fmt.Errorf("unmarshal population: %w", err)
	}
	return population, nil
}
