package schedule

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2025-10-01T06:00:00Z", time.Date(2025, 10, 1, 6, 0, 0, 0, time.UTC), true},
		{"2025-10-01T06:00:00-05:00", time.Date(2025, 10, 1, 11, 0, 0, 0, time.UTC), true},
		{"2025-10-01T06:00:00", time.Date(2025, 10, 1, 6, 0, 0, 0, time.UTC), true},
		{"2025-10-01", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), true},
		{"01/10/2025", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, err := ParseAnchor(tt.raw)
		if tt.ok != (err == nil) {
			t.Errorf("ParseAnchor(%q) error = %v, want ok=%t", tt.raw, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(tt.want) {
			t.Errorf("ParseAnchor(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	anchor := time.Date(2025, 10, 1, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		wantRun     bool
		wantElapsed int
	}{
		{"anchor day", anchor, true, 0},
		{"one cadence later", anchor.AddDate(0, 0, 28), true, 28},
		{"two cadences later", anchor.AddDate(0, 0, 56), true, 56},
		{"off cadence", anchor.AddDate(0, 0, 27), false, 27},
		{"day after cadence", anchor.AddDate(0, 0, 29), false, 29},
		{"later the same cadence day", anchor.AddDate(0, 0, 28).Add(5 * time.Hour), true, 28},
		{"before the anchor", anchor.AddDate(0, 0, -1), false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(anchor, tt.now, 28)
			if d.ShouldRun != tt.wantRun {
				t.Errorf("ShouldRun = %t, want %t", d.ShouldRun, tt.wantRun)
			}
			if d.DaysElapsed != tt.wantElapsed {
				t.Errorf("DaysElapsed = %d, want %d", d.DaysElapsed, tt.wantElapsed)
			}
		})
	}
}

func TestEvaluate_ZeroCadenceNeverRuns(t *testing.T) {
	anchor := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	d := Evaluate(anchor, anchor.AddDate(0, 0, 10), 0)
	if d.ShouldRun {
		t.Error("a zero cadence must never trigger a run")
	}
}

func TestDecision_WriteOutputs(t *testing.T) {
	anchor := time.Date(2025, 10, 1, 6, 0, 0, 0, time.UTC)
	d := Evaluate(anchor, anchor.AddDate(0, 0, 28), 28)

	var buf bytes.Buffer
	if err := d.WriteOutputs(&buf); err != nil {
		t.Fatalf("WriteOutputs: %v", err)
	}

	got := buf.String()
	want := strings.Join([]string{
		"should_run=true",
		"days_elapsed=28",
		"anchor_utc=2025-10-01T06:00:00Z",
		"now_utc=2025-10-29T06:00:00Z",
	}, "\n") + "\n"
	if got != want {
		t.Errorf("outputs:\n got %q\nwant %q", got, want)
	}
}
