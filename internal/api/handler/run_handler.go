package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/config"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/pipeline"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
	"github.com/google/uuid"
)

// Handler serves the runs API. runMu serializes pipeline executions: the
// destination table has exactly one writer per run, so concurrent POSTs
// queue up instead of interleaving writes.
type Handler struct {
	Cfg   config.Config
	runMu sync.Mutex
}

// New returns a Handler bound to the given configuration.
func New(cfg config.Config) *Handler {
	return &Handler{Cfg: cfg}
}

// CreateRun starts a new variation pipeline run
// @Summary Create a new run
// @Description Create and start a new variation pipeline run; runs are executed one at a time
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec true "Run options"
// @Success 200 {object} map[string]interface{} "Run created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
			return
		}
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	go h.execute(runID, spec)

	resp := map[string]interface{}{
		"message":   "Run created successfully!",
		"runID":     runID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// execute performs one run under the writer lock and records its outcome in
// the run ledger.
func (h *Handler) execute(runID string, spec model.RunSpec) {
	h.runMu.Lock()
	defer h.runMu.Unlock()

	store.UpdateRunStatus(runID, "running")

	st, err := store.Open(h.Cfg.Store.Backend, h.Cfg.Store.Path)
	if err != nil {
		store.UpdateRunStatus(runID, "failed")
		store.SaveRunError(runID, err)
		return
	}
	defer st.Close()

	summary, err := pipeline.Run(h.Cfg, st, pipeline.Options{
		RunID:  runID,
		DryRun: spec.DryRun,
		Out:    io.Discard,
	})
	if err != nil {
		store.UpdateRunStatus(runID, "failed")
		store.SaveRunError(runID, err)
		return
	}

	store.SaveRunSummary(runID, summary)
	store.UpdateRunStatus(runID, "completed")
}

// ListRuns retrieves all runs
// @Summary List all runs
// @Description Get all pipeline runs with their current status, newest first
// @Tags runs
// @Accept json
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Description Retrieve status, summary and errors of a specific run
// @Tags runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/runs/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	runID := r.URL.Path[len(prefix):]
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetReport returns the current destination table
// @Summary Get the latest report
// @Description Return the current content of the destination table
// @Tags report
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Report columns and rows"
// @Failure 404 {object} map[string]interface{} "No report has been written yet"
// @Router /report [get]
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	st, err := store.Open(h.Cfg.Store.Backend, h.Cfg.Store.Path)
	if err != nil {
		http.Error(w, "Failed to open store", http.StatusInternalServerError)
		return
	}
	defer st.Close()

	table, err := st.ReadTable(h.Cfg.Tables.Output)
	if err != nil {
		http.Error(w, "No report has been written yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"table":   table.Name,
		"columns": table.Columns,
		"rows":    table.Rows,
	})
}

// Health reports service liveness
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string "Service is up"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
