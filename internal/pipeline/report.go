package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
)

const dateLayout = "2006-01-02"

// PeriodLabel renders the comparison label attached to every output row,
// e.g. "2025-11-01 a 2025-11-14 (vs 2025-10-18 a 2025-10-31)".
func PeriodLabel(p model.Periods) string {
	return fmt.Sprintf("%s a %s (vs %s a %s)",
		p.Recent.Start.Format(dateLayout), p.Recent.End.Format(dateLayout),
		p.Prior.Start.Format(dateLayout), p.Prior.End.Format(dateLayout))
}

// AssembleReport joins the variation rows into the final output table:
// period label, URL, one delta column per metric and the three placeholder
// columns for the downstream recommendation step. Rows are ordered by URL
// ascending so identical runs produce byte-identical tables. Nil deltas
// materialize as empty cells here and nowhere earlier.
//
// The returned map counts blank cells per metric column for the run summary.
func AssembleReport(rows []model.VariationRow, metrics []model.MetricSpec, label string) (store.Table, map[string]int) {
	columns := []string{model.ColPeriod, model.ColURL}
	for _, spec := range metrics {
		columns = append(columns, spec.Label)
	}
	columns = append(columns, model.ColSummary, model.ColRecommendation, model.ColAction)

	sorted := make([]model.VariationRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].URL < sorted[j].URL })

	blanks := make(map[string]int, len(metrics))
	table := store.Table{Columns: columns}
	for _, row := range sorted {
		cells := make([]string, 0, len(columns))
		cells = append(cells, label, row.URL)
		for _, spec := range metrics {
			v := row.Deltas[spec.Key]
			if v == nil {
				blanks[spec.Label]++
				cells = append(cells, "")
				continue
			}
			cells = append(cells, formatDelta(*v))
		}
		cells = append(cells, "", "", "")
		table.Rows = append(table.Rows, cells)
	}
	return table, blanks
}

// formatDelta renders a variation with a stable short representation, so
// reruns over identical input diff clean.
func formatDelta(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
