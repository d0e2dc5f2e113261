package match

import (
	"fmt"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

// WriteCSV writes the match table to path. The file is written under a
// temporary name and renamed into place, so a failed write leaves no table.
func WriteCSV(fs afero.Fs, path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if rows == nil {
		rows = []Row{}
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		_ = f.Close()
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to write match table: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("failed to move match table into place: %w", err)
	}
	return nil
}

// ReadCSV loads a match table written by WriteCSV.
func ReadCSV(fs afero.Fs, path string) ([]Row, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open match table: %w", err)
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse match table %s: %w", path, err)
	}
	return rows, nil
}
