package model

// Source names for the two daily metric tables.
const (
	SourceGSC = "gsc" // search-console style: impressions, clicks, ctr, position
	SourceGA4 = "ga4" // analytics style: sessions, avg_session_duration, bounce_rate
)

// AggKind selects how a metric is collapsed over a window.
type AggKind string

const (
	AggSum   AggKind = "sum"
	AggMean  AggKind = "mean"
	AggRatio AggKind = "ratio" // recomputed from summed numerator/denominator
)

// ChangeKind selects how the inter-window variation is computed.
type ChangeKind string

const (
	ChangePercentage ChangeKind = "percentage"
	ChangeDifference ChangeKind = "difference"
)

// Default suppression thresholds shared by the percentage metrics.
const (
	DefaultMinBaseline     = 1.0
	DefaultMaxAbsVariation = 1000.0
)

// MetricSpec describes one tracked metric: where it comes from, how it is
// aggregated per window and how the variation between windows is computed
// and sanitized.
type MetricSpec struct {
	Key    string  `json:"key" yaml:"key"`
	Source string  `json:"source" yaml:"source"`
	Column string  `json:"column" yaml:"column"`
	Agg    AggKind `json:"agg" yaml:"agg"`

	// RatioNum / RatioDen are the source columns summed to rebuild a
	// ratio metric from window totals. Only used when Agg == AggRatio.
	RatioNum string `json:"ratioNum,omitempty" yaml:"ratio_num,omitempty"`
	RatioDen string `json:"ratioDen,omitempty" yaml:"ratio_den,omitempty"`

	Change ChangeKind `json:"change" yaml:"change"`

	// MinBaseline guards against unreliable comparisons. For percentage
	// metrics it is the minimum |prior| accepted as a divisor; for
	// difference metrics it is the minimum activity level
	// max(|recent|, |prior|) below which the delta is suppressed.
	MinBaseline float64 `json:"minBaseline" yaml:"min_baseline"`

	// MaxAbsVariation is the runaway cutoff for percentage metrics: a
	// computed variation beyond this magnitude is treated as a data
	// anomaly and blanked.
	MaxAbsVariation float64 `json:"maxAbsVariation,omitempty" yaml:"max_abs_variation,omitempty"`

	// Clamp blanks a difference whose magnitude strictly exceeds it.
	// A difference exactly at the bound is kept. Zero disables the clamp.
	Clamp float64 `json:"clamp,omitempty" yaml:"clamp,omitempty"`

	// Multiplier scales a difference before clamping, e.g. 100 to turn a
	// CTR fraction delta into percentage points.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`

	// Label is the output table column header for this metric.
	Label string `json:"label" yaml:"label"`
}

// Catalog returns the tracked metrics in output column order.
//
// Position keeps the search-console sign convention: average position is a
// rank, so a NEGATIVE difference (recent better than prior) is an
// improvement, unlike every other metric where positive means improvement.
func Catalog() []MetricSpec {
	return []MetricSpec{
		{
			Key:         "ctr",
			Source:      SourceGSC,
			Column:      "ctr",
			Agg:         AggRatio,
			RatioNum:    "clicks",
			RatioDen:    "impressions",
			Change:      ChangeDifference,
			MinBaseline: 0.0025,
			Clamp:       50.0,
			Multiplier:  100.0,
			Label:       "CTR Δ (p.p.)",
		},
		{
			Key:             "impressions",
			Source:          SourceGSC,
			Column:          "impressions",
			Agg:             AggSum,
			Change:          ChangePercentage,
			MinBaseline:     10.0,
			MaxAbsVariation: DefaultMaxAbsVariation,
			Label:           "Impresiones Variacion (%)",
		},
		{
			Key:             "clicks",
			Source:          SourceGSC,
			Column:          "clicks",
			Agg:             AggSum,
			Change:          ChangePercentage,
			MinBaseline:     5.0,
			MaxAbsVariation: DefaultMaxAbsVariation,
			Label:           "Clics Variacion (%)",
		},
		{
			Key:         "position",
			Source:      SourceGSC,
			Column:      "position",
			Agg:         AggMean,
			Change:      ChangeDifference,
			MinBaseline: 0.25,
			Clamp:       20.0,
			Multiplier:  1.0,
			Label:       "Posicion Δ",
		},
		{
			Key:             "sessions",
			Source:          SourceGA4,
			Column:          "sessions",
			Agg:             AggSum,
			Change:          ChangePercentage,
			MinBaseline:     5.0,
			MaxAbsVariation: DefaultMaxAbsVariation,
			Label:           "Sesiones Variacion (%)",
		},
		{
			Key:         "duration",
			Source:      SourceGA4,
			Column:      "avg_session_duration",
			Agg:         AggMean,
			Change:      ChangeDifference,
			MinBaseline: 1.0,
			Clamp:       3600.0,
			Multiplier:  1.0,
			Label:       "Duracion Δ",
		},
		{
			Key:         "bounce_rate",
			Source:      SourceGA4,
			Column:      "bounce_rate",
			Agg:         AggMean,
			Change:      ChangeDifference,
			MinBaseline: 0.01,
			Clamp:       50.0,
			Multiplier:  1.0,
			Label:       "Rebote Δ (p.p.)",
		},
	}
}

// SourceColumns returns the metric columns expected in a source table,
// including ratio components.
func SourceColumns(metrics []MetricSpec, source string) []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, m := range metrics {
		if m.Source != source {
			continue
		}
		if m.Agg == AggRatio {
			add(m.RatioNum)
			add(m.RatioDen)
			continue
		}
		add(m.Column)
	}
	return cols
}
