package pipeline

import (
	"testing"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
)

func TestPeriodLabel(t *testing.T) {
	p := ComputePeriods(day(2025, 11, 14), 14)
	want := "2025-11-01 a 2025-11-14 (vs 2025-10-18 a 2025-10-31)"
	if got := PeriodLabel(p); got != want {
		t.Errorf("PeriodLabel = %q, want %q", got, want)
	}
}

func TestAssembleReport_ColumnsAndOrdering(t *testing.T) {
	metrics := model.Catalog()
	rows := []model.VariationRow{
		{URL: "https://example.com/z", Deltas: map[string]*float64{"impressions": f(50)}},
		{URL: "https://example.com/a", Deltas: map[string]*float64{"impressions": nil}},
	}

	table, blanks := AssembleReport(rows, metrics, "label")

	wantCols := 2 + len(metrics) + 3
	if len(table.Columns) != wantCols {
		t.Fatalf("expected %d columns, got %d", wantCols, len(table.Columns))
	}
	if table.Columns[0] != model.ColPeriod || table.Columns[1] != model.ColURL {
		t.Errorf("first columns wrong: %v", table.Columns[:2])
	}
	last := table.Columns[len(table.Columns)-3:]
	if last[0] != model.ColSummary || last[1] != model.ColRecommendation || last[2] != model.ColAction {
		t.Errorf("placeholder columns wrong: %v", last)
	}

	// Rows sorted by URL ascending.
	if table.Rows[0][1] != "https://example.com/a" || table.Rows[1][1] != "https://example.com/z" {
		t.Errorf("rows not ordered by URL: %q then %q", table.Rows[0][1], table.Rows[1][1])
	}

	// Every row carries the period label and empty placeholders.
	for _, row := range table.Rows {
		if row[0] != "label" {
			t.Errorf("expected period label in every row, got %q", row[0])
		}
		tail := row[len(row)-3:]
		if tail[0] != "" || tail[1] != "" || tail[2] != "" {
			t.Errorf("placeholders must be empty, got %v", tail)
		}
	}

	// Blank accounting: URL /a has every metric blank, /z all but one.
	wantBlanks := 2*len(metrics) - 1
	total := 0
	for _, n := range blanks {
		total += n
	}
	if total != wantBlanks {
		t.Errorf("expected %d blank cells, got %d", wantBlanks, total)
	}
}

func TestFormatDelta_StableShortForm(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{50, "50"},
		{-3, "-3"},
		{2.5, "2.5"},
		{-0.25, "-0.25"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.in); got != tt.want {
			t.Errorf("formatDelta(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
