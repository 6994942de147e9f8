// Package schedule decides whether the pipeline is due to run on an
// externally-anchored cadence. The invoking workflow (e.g. a GitHub Actions
// cron) reads the decision from its output file; the guard itself never
// starts a run.
package schedule

import (
	"fmt"
	"io"
	"time"
)

// Decision is the outcome of the cadence check.
type Decision struct {
	ShouldRun   bool
	DaysElapsed int // -1 when now precedes the anchor
	Anchor      time.Time
	Now         time.Time
}

// ParseAnchor parses the anchor timestamp (RFC 3339; a bare date-time is
// taken as UTC) and normalizes it to UTC.
func ParseAnchor(raw string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid anchor timestamp: %q", raw)
}

// Evaluate reports whether now lands on the cadence: a whole multiple of
// cadenceDays since the anchor. Before the anchor the answer is always no.
func Evaluate(anchor, now time.Time, cadenceDays int) Decision {
	d := Decision{Anchor: anchor.UTC(), Now: now.UTC(), DaysElapsed: -1}
	if d.Now.Before(d.Anchor) {
		return d
	}
	d.DaysElapsed = int(d.Now.Sub(d.Anchor).Hours() / 24)
	if cadenceDays > 0 {
		d.ShouldRun = d.DaysElapsed%cadenceDays == 0
	}
	return d
}

// WriteOutputs appends the decision in the key=value format GitHub Actions
// step outputs use.
func (d Decision) WriteOutputs(w io.Writer) error {
	_, err := fmt.Fprintf(w, "should_run=%t\ndays_elapsed=%d\nanchor_utc=%s\nnow_utc=%s\n",
		d.ShouldRun, d.DaysElapsed,
		d.Anchor.Format(time.RFC3339), d.Now.Format(time.RFC3339))
	return err
}
