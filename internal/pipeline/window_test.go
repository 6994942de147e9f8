package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputePeriods_AdjacentDisjointWindows(t *testing.T) {
	p := ComputePeriods(day(2025, 11, 14), 7)

	if !p.Recent.Start.Equal(day(2025, 11, 8)) || !p.Recent.End.Equal(day(2025, 11, 14)) {
		t.Errorf("unexpected recent window: %v..%v", p.Recent.Start, p.Recent.End)
	}
	if !p.Prior.Start.Equal(day(2025, 11, 1)) || !p.Prior.End.Equal(day(2025, 11, 7)) {
		t.Errorf("unexpected prior window: %v..%v", p.Prior.Start, p.Prior.End)
	}
	if !p.Prior.End.AddDate(0, 0, 1).Equal(p.Recent.Start) {
		t.Error("windows must be contiguous with no gap and no overlap")
	}
}

func TestComputePeriods_FourteenDays(t *testing.T) {
	p := ComputePeriods(day(2025, 11, 14), 14)

	if !p.Recent.Start.Equal(day(2025, 11, 1)) {
		t.Errorf("unexpected recent start: %v", p.Recent.Start)
	}
	if !p.Prior.Start.Equal(day(2025, 10, 18)) || !p.Prior.End.Equal(day(2025, 10, 31)) {
		t.Errorf("unexpected prior window: %v..%v", p.Prior.Start, p.Prior.End)
	}
}

func TestReferenceDate_PicksLatestAcrossSources(t *testing.T) {
	gsc := []model.NormalizedRecord{{Date: day(2025, 11, 10), URL: "a"}}
	ga4 := []model.NormalizedRecord{{Date: day(2025, 11, 12), URL: "a"}}

	got, err := ReferenceDate(gsc, ga4)
	if err != nil {
		t.Fatalf("ReferenceDate error: %v", err)
	}
	if !got.Equal(day(2025, 11, 12)) {
		t.Errorf("expected 2025-11-12, got %v", got)
	}
}

func TestReferenceDate_NoDatesIsFatal(t *testing.T) {
	if _, err := ReferenceDate(nil, nil); err == nil {
		t.Fatal("expected an error when no source has dates")
	}
}

func rec(d time.Time, url string, metrics map[string]float64) model.NormalizedRecord {
	return model.NormalizedRecord{Date: d, URL: url, Metrics: metrics}
}

func TestAggregateWindow_SumAndMean(t *testing.T) {
	metrics := model.Catalog()
	w := model.Window{Start: day(2025, 11, 8), End: day(2025, 11, 14)}

	recs := []model.NormalizedRecord{
		rec(day(2025, 11, 8), "a", map[string]float64{"impressions": 100, "clicks": 10, "position": 4}),
		rec(day(2025, 11, 9), "a", map[string]float64{"impressions": 300, "clicks": 20, "position": 6}),
		// Outside the window, must not contribute.
		rec(day(2025, 11, 7), "a", map[string]float64{"impressions": 999, "clicks": 99, "position": 1}),
		rec(day(2025, 11, 9), "b", map[string]float64{"impressions": 50}),
	}

	got := AggregateWindow(recs, metrics, model.SourceGSC, w)

	a := got["a"]
	if !almostEqual(a.Values["impressions"], 400) {
		t.Errorf("expected impressions sum 400, got %v", a.Values["impressions"])
	}
	if !almostEqual(a.Values["clicks"], 30) {
		t.Errorf("expected clicks sum 30, got %v", a.Values["clicks"])
	}
	if !almostEqual(a.Values["position"], 5) {
		t.Errorf("expected position mean 5, got %v", a.Values["position"])
	}
	if _, ok := got["c"]; ok {
		t.Error("URL with no rows must have no aggregate at all")
	}
}

func TestAggregateWindow_RatioRecomputedFromTotals(t *testing.T) {
	metrics := model.Catalog()
	w := model.Window{Start: day(2025, 11, 8), End: day(2025, 11, 14)}

	// Uneven volume: the daily-mean CTR would be (0.5+0.01)/2 ≈ 0.255,
	// the ratio of totals is 20/1010 ≈ 0.0198.
	recs := []model.NormalizedRecord{
		rec(day(2025, 11, 8), "a", map[string]float64{"impressions": 10, "clicks": 5, "ctr": 0.5}),
		rec(day(2025, 11, 9), "a", map[string]float64{"impressions": 1000, "clicks": 15, "ctr": 0.01}),
	}

	got := AggregateWindow(recs, metrics, model.SourceGSC, w)
	ctr, ok := got["a"].Values["ctr"]
	if !ok {
		t.Fatal("expected a CTR aggregate")
	}
	if !almostEqual(ctr, 20.0/1010.0) {
		t.Errorf("expected CTR from totals %.6f, got %.6f", 20.0/1010.0, ctr)
	}
}

func TestAggregateWindow_NullDistinctions(t *testing.T) {
	metrics := model.Catalog()
	w := model.Window{Start: day(2025, 11, 8), End: day(2025, 11, 14)}

	recs := []model.NormalizedRecord{
		// Row in window but every metric cell blank: sums become 0,
		// means stay null.
		rec(day(2025, 11, 8), "a", map[string]float64{}),
	}

	got := AggregateWindow(recs, metrics, model.SourceGSC, w)
	a, ok := got["a"]
	if !ok {
		t.Fatal("URL with in-window rows must have an aggregate")
	}
	if v, ok := a.Values["impressions"]; !ok || v != 0 {
		t.Errorf("sum metric over blank cells should be 0, got %v (present %v)", v, ok)
	}
	if _, ok := a.Values["position"]; ok {
		t.Error("mean metric with no present cells must stay null")
	}
	if _, ok := a.Values["ctr"]; ok {
		t.Error("ratio metric with zero denominator must stay null")
	}
}

func TestMergeAggregates_CombinesSources(t *testing.T) {
	gsc := map[string]model.WindowAggregate{
		"a": {URL: "a", Values: map[string]float64{"impressions": 100}},
	}
	ga4 := map[string]model.WindowAggregate{
		"a": {URL: "a", Values: map[string]float64{"sessions": 40}},
		"b": {URL: "b", Values: map[string]float64{"sessions": 7}},
	}

	merged := MergeAggregates(gsc, ga4)
	if len(merged) != 2 {
		t.Fatalf("expected 2 URLs, got %d", len(merged))
	}
	a := merged["a"]
	if a.Values["impressions"] != 100 || a.Values["sessions"] != 40 {
		t.Errorf("merged values wrong: %+v", a.Values)
	}
}
