package pipeline

import (
	"fmt"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
)

// ComputePeriods derives the two adjacent windows ending at end:
// recent = [end-n+1, end], prior = [end-2n+1, end-n].
func ComputePeriods(end time.Time, n int) model.Periods {
	recentStart := end.AddDate(0, 0, -(n - 1))
	priorEnd := recentStart.AddDate(0, 0, -1)
	priorStart := priorEnd.AddDate(0, 0, -(n - 1))
	return model.Periods{
		Recent: model.Window{Start: recentStart, End: end},
		Prior:  model.Window{Start: priorStart, End: priorEnd},
	}
}

// ReferenceDate picks the most recent date present across the normalized
// sources. No dates at all is a hard stop.
func ReferenceDate(sources ...[]model.NormalizedRecord) (time.Time, error) {
	var latest time.Time
	for _, recs := range sources {
		for _, rec := range recs {
			if rec.Date.After(latest) {
				latest = rec.Date
			}
		}
	}
	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("no dates found in the source tables")
	}
	return latest, nil
}

// metricAccum accumulates one metric for one URL over a window.
type metricAccum struct {
	sum      float64
	count    int // rows where the cell was present
	rowCount int // rows for the URL in the window, present cell or not
	num      float64
	den      float64
}

// AggregateWindow collapses the records falling inside w into one
// WindowAggregate per URL, for the metrics of the given source.
//
// Sum metrics count every in-window row of the URL, so a URL with rows but
// all-blank cells aggregates to 0; a URL with no rows in the window gets no
// entry at all (null, "no traffic" rather than "zero change"). Mean metrics
// are simple per-day means over the present cells. Ratio metrics are
// recomputed from the summed numerator and denominator.
func AggregateWindow(recs []model.NormalizedRecord, metrics []model.MetricSpec, source string, w model.Window) map[string]model.WindowAggregate {
	accums := make(map[string]map[string]*metricAccum) // url → metric key → accum

	for _, rec := range recs {
		if !w.Contains(rec.Date) {
			continue
		}
		byMetric, ok := accums[rec.URL]
		if !ok {
			byMetric = make(map[string]*metricAccum)
			accums[rec.URL] = byMetric
		}
		for _, spec := range metrics {
			if spec.Source != source {
				continue
			}
			acc, ok := byMetric[spec.Key]
			if !ok {
				acc = &metricAccum{}
				byMetric[spec.Key] = acc
			}
			acc.rowCount++

			switch spec.Agg {
			case model.AggRatio:
				if v, ok := rec.Metrics[spec.RatioNum]; ok {
					acc.num += v
				}
				if v, ok := rec.Metrics[spec.RatioDen]; ok {
					acc.den += v
				}
			default:
				if v, ok := rec.Metrics[spec.Column]; ok {
					acc.sum += v
					acc.count++
				}
			}
		}
	}

	out := make(map[string]model.WindowAggregate, len(accums))
	for url, byMetric := range accums {
		agg := model.WindowAggregate{URL: url, Values: make(map[string]float64)}
		for _, spec := range metrics {
			if spec.Source != source {
				continue
			}
			acc, ok := byMetric[spec.Key]
			if !ok || acc.rowCount == 0 {
				continue
			}
			switch spec.Agg {
			case model.AggSum:
				agg.Values[spec.Key] = acc.sum
			case model.AggMean:
				if acc.count > 0 {
					agg.Values[spec.Key] = acc.sum / float64(acc.count)
				}
			case model.AggRatio:
				if acc.den > 0 {
					agg.Values[spec.Key] = acc.num / acc.den
				}
			}
		}
		out[url] = agg
	}
	return out
}

// MergeAggregates folds src into dst, combining per-URL values from the two
// sources into a single aggregate per URL.
func MergeAggregates(dst, src map[string]model.WindowAggregate) map[string]model.WindowAggregate {
	if dst == nil {
		dst = make(map[string]model.WindowAggregate)
	}
	for url, agg := range src {
		existing, ok := dst[url]
		if !ok {
			dst[url] = agg
			continue
		}
		for key, v := range agg.Values {
			existing.Values[key] = v
		}
	}
	return dst
}
