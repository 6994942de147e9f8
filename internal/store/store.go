package store

import (
	"errors"
	"fmt"
)

// ErrTableNotFound is returned when a named table does not exist in the
// backing store.
var ErrTableNotFound = errors.New("table not found")

// Table is an ordered tabular snapshot: a header plus rows of string cells.
// Cell typing happens later, at the normalizer boundary.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Tabular is the external collaborator the pipeline reads sources from and
// writes the report to. ReplaceTable must be all-or-nothing: after a failed
// write the previous content is still intact.
type Tabular interface {
	ReadTable(name string) (Table, error)
	ReplaceTable(t Table) error
	Close() error
}

// Open builds a Tabular for the configured backend.
func Open(backend, path string) (Tabular, error) {
	switch backend {
	case "sqlite", "":
		return OpenSQLite(path)
	case "csv":
		return NewCSVStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
