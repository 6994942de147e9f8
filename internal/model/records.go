package model

import "time"

// NormalizedRecord is one source row after the normalizer boundary: canonical
// column names, a parsed calendar date and numeric cells. A metric missing
// from the map was blank or non-numeric in the source.
type NormalizedRecord struct {
	Date    time.Time
	URL     string
	Metrics map[string]float64 // canonical column → value
}

// Window is one side of the comparison, a contiguous range of civil dates
// (inclusive on both ends, midnight UTC).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Periods holds the two adjacent comparison windows.
type Periods struct {
	Recent Window
	Prior  Window
}

// WindowAggregate holds per-URL aggregates for one window. A metric key
// absent from Values means the URL had no usable rows for it in the window
// (null, distinct from zero).
type WindowAggregate struct {
	URL    string
	Values map[string]float64 // metric key → aggregated value
}

// VariationRow is the computed change per metric for one URL. A nil entry is
// a suppressed or incomputable variation and renders as a blank cell.
type VariationRow struct {
	URL    string
	Deltas map[string]*float64 // metric key → variation
}

// Placeholder columns appended by the report assembler for the downstream
// AI recommendation step.
const (
	ColPeriod         = "Periodo Analizado"
	ColURL            = "URL"
	ColSummary        = "Resumen_IA"
	ColRecommendation = "Recomendacion"
	ColAction         = "Accion"
)

// RunSummary is the per-run accounting surfaced at the end of a run: row
// counts, skip counts and blank-cell counts per output column.
type RunSummary struct {
	RunID         string         `json:"run_id,omitempty"`
	ReferenceDate time.Time      `json:"reference_date"`
	Periods       Periods        `json:"-"`
	PeriodLabel   string         `json:"period_label"`
	SourceRows    map[string]int `json:"source_rows"`   // source → rows read
	SkippedRows   map[string]int `json:"skipped_rows"`  // source → rows dropped by the normalizer
	URLCount      int            `json:"url_count"`     // URLs in the output table
	BlankCounts   map[string]int `json:"blank_counts"`  // output column → blank cells
	DryRun        bool           `json:"dry_run"`
	Wrote         bool           `json:"wrote"`
	Duration      time.Duration  `json:"duration_ns"`
}

// RunSpec is the payload accepted by POST /api/v1/runs.
type RunSpec struct {
	DryRun bool `json:"dryRun"`
}
