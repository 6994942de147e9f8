package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
	_ "github.com/mattn/go-sqlite3"
)

var runsDB *sql.DB

// InitRunLedger opens the run-history database and creates its tables.
// The ledger records run status and summaries for the API; it never holds
// analytical data.
func InitRunLedger(dbPath string) error {
	var err error
	runsDB, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		summary TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`

	if _, err := runsDB.Exec(runTable); err != nil {
		return err
	}
	if _, err := runsDB.Exec(errorTable); err != nil {
		return err
	}

	return nil
}

// SaveRun stores a new pipeline run in pending state.
func SaveRun(runID string, spec model.RunSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = runsDB.Exec(`INSERT INTO runs (id, spec, status, summary, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, specJSON, "pending", "", now, now)
	return err
}

// SaveRunError records an error for a run.
func SaveRunError(runID string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := runsDB.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), now)
	return e
}

// UpdateRunStatus updates the run status.
func UpdateRunStatus(runID string, status string) error {
	now := time.Now().UTC()
	_, err := runsDB.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunSummary attaches the final accounting to a run.
func SaveRunSummary(runID string, summary model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = runsDB.Exec(`UPDATE runs SET summary = ?, updated_at = ? WHERE id = ?`, summaryJSON, now, runID)
	return err
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := runsDB.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches the full spec, status, summary and recorded errors of a run.
func GetRun(runID string) (map[string]interface{}, error) {
	var specJSON, summaryJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := runsDB.QueryRow(`SELECT spec, status, summary, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &summaryJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}

	if summaryJSON != "" {
		var summary model.RunSummary
		if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
			return nil, fmt.Errorf("corrupt summary for run %s: %w", runID, err)
		}
		result["summary"] = summary
	}

	errs, err := runErrors(runID)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		result["errors"] = errs
	}

	return result, nil
}

func runErrors(runID string) ([]string, error) {
	rows, err := runsDB.Query(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
