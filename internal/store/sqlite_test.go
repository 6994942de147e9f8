package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_ReadMissingTable(t *testing.T) {
	s := openTestSQLite(t)

	_, err := s.ReadTable("gsc_data_daily")
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := openTestSQLite(t)

	want := Table{
		Name:    "analysis_raw",
		Columns: []string{"Periodo Analizado", "URL", "Impresiones Variacion (%)"},
		Rows: [][]string{
			{"2025-11-01 a 2025-11-07 (vs 2025-10-25 a 2025-10-31)", "https://site.test/a", "50"},
			{"2025-11-01 a 2025-11-07 (vs 2025-10-25 a 2025-10-31)", "https://site.test/b", ""},
		},
	}
	if err := s.ReplaceTable(want); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}

	got, err := s.ReadTable(want.Name)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSQLiteStore_ReplaceDropsOldContent(t *testing.T) {
	s := openTestSQLite(t)

	old := Table{
		Name:    "analysis_raw",
		Columns: []string{"URL", "old_column"},
		Rows:    [][]string{{"https://stale.test/x", "1"}, {"https://stale.test/y", "2"}},
	}
	if err := s.ReplaceTable(old); err != nil {
		t.Fatalf("seed ReplaceTable: %v", err)
	}

	fresh := Table{
		Name:    "analysis_raw",
		Columns: []string{"URL"},
		Rows:    [][]string{{"https://site.test/a"}},
	}
	if err := s.ReplaceTable(fresh); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}

	got, err := s.ReadTable("analysis_raw")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if !reflect.DeepEqual(got, fresh) {
		t.Errorf("old content survived the replace: %+v", got)
	}
}

func TestSQLiteStore_ReplaceIsAtomic(t *testing.T) {
	s := openTestSQLite(t)

	old := Table{
		Name:    "analysis_raw",
		Columns: []string{"URL"},
		Rows:    [][]string{{"https://site.test/keep"}},
	}
	if err := s.ReplaceTable(old); err != nil {
		t.Fatalf("seed ReplaceTable: %v", err)
	}

	bad := Table{
		Name:    "analysis_raw",
		Columns: []string{"URL", "value"},
		Rows:    [][]string{{"https://site.test/a", "1"}, {"only-one-cell"}},
	}
	if err := s.ReplaceTable(bad); err == nil {
		t.Fatal("expected an error for the short row")
	}

	got, err := s.ReadTable("analysis_raw")
	if err != nil {
		t.Fatalf("ReadTable after failed replace: %v", err)
	}
	if !reflect.DeepEqual(got, old) {
		t.Errorf("failed replace must leave old content intact, got %+v", got)
	}
}

func TestSQLiteStore_ReplaceEmptyTable(t *testing.T) {
	s := openTestSQLite(t)

	empty := Table{Name: "analysis_raw", Columns: []string{"URL", "Resumen_IA"}}
	if err := s.ReplaceTable(empty); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}

	got, err := s.ReadTable("analysis_raw")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(got.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(got.Rows))
	}
	if !reflect.DeepEqual(got.Columns, empty.Columns) {
		t.Errorf("columns = %v, want %v", got.Columns, empty.Columns)
	}

	if err := s.ReplaceTable(Table{Name: "broken"}); err == nil {
		t.Error("expected an error for a table without columns")
	}
}
