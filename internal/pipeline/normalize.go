package pipeline

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
	"github.com/dileroc6/analisis-variaciones-felinos/pkg/utils"
)

// Column name candidates accepted for the canonical date and URL columns,
// matched case-insensitively.
var (
	dateColumnCandidates = []string{"date", "fecha"}
	urlColumnCandidates  = []string{"page", "url"}
)

// Date layouts accepted by the normalizer, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// NormalizeResult is the output of normalizing one source table.
type NormalizeResult struct {
	Records []model.NormalizedRecord
	Skipped int // rows dropped for an unparseable date or empty URL
}

// NormalizeTable maps a raw source table onto the canonical schema: parsed
// dates, a non-empty URL and numeric metric cells. Individual malformed rows
// are dropped and counted; a missing date/URL column or an entirely empty
// table is a hard stop.
func NormalizeTable(t store.Table, metricCols []string) (NormalizeResult, error) {
	if len(t.Columns) == 0 || len(t.Rows) == 0 {
		return NormalizeResult{}, fmt.Errorf("source table %s is empty", t.Name)
	}

	dateIdx, ok := locateColumn(t.Columns, dateColumnCandidates)
	if !ok {
		return NormalizeResult{}, fmt.Errorf("source table %s has no date column (looked for %v)", t.Name, dateColumnCandidates)
	}
	urlIdx, ok := locateColumn(t.Columns, urlColumnCandidates)
	if !ok {
		return NormalizeResult{}, fmt.Errorf("source table %s has no URL column (looked for %v)", t.Name, urlColumnCandidates)
	}

	metricIdx := make(map[string]int, len(metricCols))
	for _, col := range metricCols {
		idx, ok := locateColumn(t.Columns, []string{col})
		if !ok {
			log.Printf("⚠️ Table %s has no %q column; its metrics will stay blank", t.Name, col)
			continue
		}
		metricIdx[col] = idx
	}

	var res NormalizeResult
	for _, row := range t.Rows {
		if dateIdx >= len(row) || urlIdx >= len(row) {
			res.Skipped++
			continue
		}

		date, ok := parseDate(row[dateIdx])
		if !ok {
			res.Skipped++
			continue
		}
		url := strings.TrimSpace(row[urlIdx])
		if url == "" {
			res.Skipped++
			continue
		}

		rec := model.NormalizedRecord{
			Date:    date,
			URL:     url,
			Metrics: make(map[string]float64, len(metricIdx)),
		}
		for col, idx := range metricIdx {
			if idx >= len(row) {
				continue
			}
			// Non-numeric text stays out of the map: a null cell,
			// not a failed row.
			if v, ok := utils.ParseNumeric(row[idx]); ok {
				rec.Metrics[col] = v
			}
		}
		res.Records = append(res.Records, rec)
	}

	return res, nil
}

// locateColumn returns the index of the first column matching any candidate,
// case-insensitively.
func locateColumn(columns []string, candidates []string) (int, bool) {
	for _, cand := range candidates {
		for i, col := range columns {
			if strings.EqualFold(strings.TrimSpace(col), cand) {
				return i, true
			}
		}
	}
	return 0, false
}

// parseDate parses a cell into a civil date, truncating any time component.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
