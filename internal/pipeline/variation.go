package pipeline

import (
	"math"
	"sort"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
)

// ComputeVariations builds one VariationRow per URL present in either
// window. The union construction guarantees the invariant that no output
// row has both windows null; per-metric suppression is handled by
// variationFor.
func ComputeVariations(metrics []model.MetricSpec, recent, prior map[string]model.WindowAggregate) []model.VariationRow {
	urls := make(map[string]bool, len(recent)+len(prior))
	for url := range recent {
		urls[url] = true
	}
	for url := range prior {
		urls[url] = true
	}

	ordered := make([]string, 0, len(urls))
	for url := range urls {
		ordered = append(ordered, url)
	}
	sort.Strings(ordered)

	rows := make([]model.VariationRow, 0, len(ordered))
	for _, url := range ordered {
		row := model.VariationRow{URL: url, Deltas: make(map[string]*float64, len(metrics))}
		for _, spec := range metrics {
			row.Deltas[spec.Key] = variationFor(spec, lookup(recent, url, spec.Key), lookup(prior, url, spec.Key))
		}
		rows = append(rows, row)
	}
	return rows
}

func lookup(aggs map[string]model.WindowAggregate, url, key string) *float64 {
	agg, ok := aggs[url]
	if !ok {
		return nil
	}
	v, ok := agg.Values[key]
	if !ok {
		return nil
	}
	return &v
}

// variationFor applies the metric's change rule and sanitization policy.
// A nil result is a blank cell: no data, an unreliable baseline, or a jump
// large enough to be a data artifact rather than a real signal.
func variationFor(spec model.MetricSpec, recent, prior *float64) *float64 {
	if recent == nil || prior == nil {
		return nil
	}

	switch spec.Change {
	case model.ChangePercentage:
		return percentageChange(spec, *recent, *prior)
	case model.ChangeDifference:
		return differenceChange(spec, *recent, *prior)
	default:
		return nil
	}
}

// percentageChange computes (recent-prior)/prior*100, refusing divisors
// below the metric's minimum baseline and discarding runaway results.
func percentageChange(spec model.MetricSpec, recent, prior float64) *float64 {
	if math.Abs(prior) < spec.MinBaseline || prior == 0 {
		return nil
	}
	v := (recent - prior) / prior * 100
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	if spec.MaxAbsVariation > 0 && math.Abs(v) > spec.MaxAbsVariation {
		return nil
	}
	return &v
}

// differenceChange computes the direct delta, scaled into output units.
// The activity baseline max(|recent|, |prior|) must reach the metric's
// minimum, and a scaled delta strictly beyond the clamp is blanked; a delta
// exactly at the clamp is kept.
//
// For position the sign is counter-intuitive on purpose: a negative delta
// means a better (lower) average rank.
func differenceChange(spec model.MetricSpec, recent, prior float64) *float64 {
	baseline := math.Max(math.Abs(recent), math.Abs(prior))
	if baseline < spec.MinBaseline {
		return nil
	}

	mult := spec.Multiplier
	if mult == 0 {
		mult = 1
	}
	d := (recent - prior) * mult
	if spec.Clamp > 0 && math.Abs(d) > spec.Clamp {
		return nil
	}
	return &d
}
