package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CSVStore keeps each table as <dir>/<name>.csv with a header row.
type CSVStore struct {
	Dir string
}

// NewCSVStore returns a store rooted at dir. The directory is created on
// first write.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Dir: dir}
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name)+".csv")
}

// ReadTable parses the table's CSV file, header first.
func (s *CSVStore) ReadTable(name string) (Table, error) {
	file, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return Table{}, fmt.Errorf("failed to open table %s: %w", name, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err == io.EOF {
		return Table{Name: name}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	t := Table{Name: name}
	for _, h := range header {
		t.Columns = append(t.Columns, strings.TrimSpace(strings.ReplaceAll(h, `"`, "")))
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return Table{}, fmt.Errorf("CSV read error in %s: %w", name, err)
		}
		t.Rows = append(t.Rows, record)
	}
}

// ReplaceTable writes the new content to a temp file and renames it into
// place, so a failed write never leaves a half-written table behind.
func (s *CSVStore) ReplaceTable(t Table) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, t.Name+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", t.Name, err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(t.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header of %s: %w", t.Name, err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row of %s: %w", t.Name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", t.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path(t.Name))
}
