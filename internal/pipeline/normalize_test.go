package pipeline

import (
	"testing"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
)

func TestNormalizeTable_CanonicalColumns(t *testing.T) {
	table := store.Table{
		Name:    "gsc_data_daily",
		Columns: []string{"Fecha", "Page", "impressions", "clicks"},
		Rows: [][]string{
			{"2025-11-03", "https://example.com/a", "1200", "30"},
			{"2025-11-04", "https://example.com/a", "900", "12.5"},
		},
	}

	res, err := NormalizeTable(table, []string{"impressions", "clicks"})
	if err != nil {
		t.Fatalf("NormalizeTable error: %v", err)
	}
	if res.Skipped != 0 {
		t.Fatalf("expected 0 skipped rows, got %d", res.Skipped)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}

	first := res.Records[0]
	wantDate := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(wantDate) {
		t.Errorf("expected date %v, got %v", wantDate, first.Date)
	}
	if first.URL != "https://example.com/a" {
		t.Errorf("unexpected URL: %q", first.URL)
	}
	if v, ok := first.Metrics["impressions"]; !ok || v != 1200 {
		t.Errorf("expected impressions 1200, got %v (present %v)", v, ok)
	}
}

func TestNormalizeTable_MalformedRowsAreSkippedNotFatal(t *testing.T) {
	table := store.Table{
		Name:    "gsc_data_daily",
		Columns: []string{"date", "url", "clicks"},
		Rows: [][]string{
			{"not-a-date", "https://example.com/a", "10"},
			{"2025-11-03", "", "10"},
			{"2025-11-03", "https://example.com/b", "7"},
		},
	}

	res, err := NormalizeTable(table, []string{"clicks"})
	if err != nil {
		t.Fatalf("NormalizeTable error: %v", err)
	}
	if res.Skipped != 2 {
		t.Errorf("expected 2 skipped rows, got %d", res.Skipped)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 surviving record, got %d", len(res.Records))
	}
}

func TestNormalizeTable_NonNumericCellIsNullNotError(t *testing.T) {
	table := store.Table{
		Name:    "ga4_data_daily",
		Columns: []string{"date", "url", "sessions", "bounce_rate"},
		Rows: [][]string{
			{"2025-11-03", "https://example.com/a", "n/a", "42,5"},
		},
	}

	res, err := NormalizeTable(table, []string{"sessions", "bounce_rate"})
	if err != nil {
		t.Fatalf("NormalizeTable error: %v", err)
	}
	rec := res.Records[0]
	if _, ok := rec.Metrics["sessions"]; ok {
		t.Errorf("expected sessions to be null for non-numeric cell")
	}
	if v, ok := rec.Metrics["bounce_rate"]; !ok || v != 42.5 {
		t.Errorf("expected decimal-comma bounce_rate 42.5, got %v (present %v)", v, ok)
	}
}

func TestNormalizeTable_HardStops(t *testing.T) {
	tests := []struct {
		name  string
		table store.Table
	}{
		{
			name:  "empty table",
			table: store.Table{Name: "gsc_data_daily", Columns: []string{"date", "url"}},
		},
		{
			name: "missing date column",
			table: store.Table{
				Name:    "gsc_data_daily",
				Columns: []string{"when", "url"},
				Rows:    [][]string{{"2025-11-03", "https://example.com/a"}},
			},
		},
		{
			name: "missing url column",
			table: store.Table{
				Name:    "gsc_data_daily",
				Columns: []string{"date", "address"},
				Rows:    [][]string{{"2025-11-03", "https://example.com/a"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NormalizeTable(tt.table, nil); err == nil {
				t.Fatal("expected a hard-stop error, got nil")
			}
		})
	}
}
