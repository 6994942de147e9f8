package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps every table as a sqlite table of TEXT columns, one
// database file per spreadsheet.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle so the run-history ledger can share the
// same database file.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReadTable loads the full content of a table in stored order.
func (s *SQLiteStore) ReadTable(name string) (Table, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&exists)
	if err != nil {
		return Table{}, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	if exists == 0 {
		return Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	rows, err := s.db.Query(`SELECT * FROM ` + quoteIdent(name))
	if err != nil {
		return Table{}, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}

	t := Table{Name: name, Columns: cols}
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]interface{}, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return Table{}, fmt.Errorf("failed to scan row from %s: %w", name, err)
		}
		row := make([]string, len(cols))
		for i, c := range cells {
			row[i] = c.String
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

// ReplaceTable swaps the table content in one transaction: either the new
// rows land completely or the old content stays untouched.
func (s *SQLiteStore) ReplaceTable(t Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("cannot replace table %s without columns", t.Name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin replace of %s: %w", t.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + quoteIdent(t.Name)); err != nil {
		return fmt.Errorf("failed to drop %s: %w", t.Name, err)
	}

	colDefs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colDefs[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(t.Name), strings.Join(colDefs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(t.Name), placeholders)
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", t.Name, err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row width %d does not match %d columns of %s", len(row), len(t.Columns), t.Name)
		}
		args := make([]interface{}, len(row))
		for i, cell := range row {
			args[i] = cell
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
	}

	return tx.Commit()
}

// quoteIdent quotes an identifier so headers with spaces, parens or unit
// annotations are valid column names.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
