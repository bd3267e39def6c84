package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/lifesim/internal/life"
	"gopkg.in/yaml.v3"
)

// BoardFile is the on-disk board format. Only the fields below are read;
// anything else in the document is ignored.
type BoardFile struct {
	Height *int          `json:"height" yaml:"height"`
	Width  *int          `json:"width" yaml:"width"`
	Board  [][]CellEntry `json:"board" yaml:"board"`
}

type CellEntry struct {
	Active *bool `json:"active" yaml:"active"`
}

// Format selects the board encoding.
type Format int

const (
	JSON Format = iota
	YAML
)

// FormatForPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

func fromSnapshot(s life.Snapshot) BoardFile {
	h, w := s.Height, s.Width
	f := BoardFile{Height: &h, Width: &w, Board: make([][]CellEntry, len(s.Cells))}
	for r, row := range s.Cells {
		f.Board[r] = make([]CellEntry, len(row))
		for c, alive := range row {
			active := alive
			f.Board[r][c] = CellEntry{Active: &active}
		}
	}
	return f
}

// Snapshot converts a decoded file to a validated snapshot.
func (f BoardFile) Snapshot() (life.Snapshot, error) {
	if f.Height == nil {
		return life.Snapshot{}, &life.ValidationError{Field: "height", Reason: "missing"}
	}
	if f.Width == nil {
		return life.Snapshot{}, &life.ValidationError{Field: "width", Reason: "missing"}
	}
	if f.Board == nil {
		return life.Snapshot{}, &life.ValidationError{Field: "board", Reason: "missing"}
	}

	s := life.Snapshot{Height: *f.Height, Width: *f.Width, Cells: make([][]bool, len(f.Board))}
	for r, row := range f.Board {
		s.Cells[r] = make([]bool, len(row))
		for c, entry := range row {
			if entry.Active == nil {
				return life.Snapshot{}, &life.ValidationError{
					Field:  "board",
					Reason: fmt.Sprintf("row %d column %d: missing active flag", r, c),
				}
			}
			s.Cells[r][c] = *entry.Active
		}
	}
	if err := s.Validate(); err != nil {
		return life.Snapshot{}, err
	}
	return s, nil
}

// Encode writes s to w in the given format.
func Encode(w io.Writer, s life.Snapshot, format Format) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f := fromSnapshot(s)
	if format == YAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	}
	return json.NewEncoder(w).Encode(f)
}

// Decode reads a board from r. Shape problems and non-boolean cells come
// back as *life.ValidationError.
func Decode(r io.Reader, format Format) (life.Snapshot, error) {
	var f BoardFile
	var err error
	if format == YAML {
		err = yaml.NewDecoder(r).Decode(&f)
	} else {
		err = json.NewDecoder(r).Decode(&f)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return life.Snapshot{}, &life.ValidationError{Reason: "empty document", Cause: err}
		}
		return life.Snapshot{}, &life.ValidationError{Reason: "decode board", Cause: err}
	}
	return f.Snapshot()
}

// ExportFile writes s to path, choosing the format from the extension. The
// board is encoded in full before anything touches disk, and the file is
// replaced by rename, so a failed export leaves an existing file intact.
func ExportFile(path string, s life.Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s, FormatForPath(path)); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ImportFile reads a board from path.
func ImportFile(path string) (life.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return life.Snapshot{}, err
	}
	defer file.Close()

	s, err := Decode(file, FormatForPath(path))
	if err != nil {
		return life.Snapshot{}, fmt.Errorf("import %s: %w", path, err)
	}
	return s, nil
}
