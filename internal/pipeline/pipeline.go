package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dileroc6/analisis-variaciones-felinos/internal/config"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/model"
	"github.com/dileroc6/analisis-variaciones-felinos/internal/store"
)

// Options tunes one pipeline run.
type Options struct {
	RunID   string
	DryRun  bool // compute and print the report without touching the destination
	Verbose bool
	Out     io.Writer // dry-run CSV destination, defaults to stdout

	// ReferenceDate overrides the end of the recent window. Zero means
	// "most recent date present in the data".
	ReferenceDate time.Time
}

// Run executes the whole batch: read both source tables, normalize,
// aggregate the two windows, compute per-URL variations and replace the
// destination table. The run is linear and in-memory; on any fatal error it
// returns before the single destination write.
func Run(cfg config.Config, st store.Tabular, opts Options) (model.RunSummary, error) {
	start := time.Now()
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	summary := model.RunSummary{
		RunID:       opts.RunID,
		DryRun:      opts.DryRun,
		SourceRows:  make(map[string]int),
		SkippedRows: make(map[string]int),
	}
	metrics := cfg.MetricSpecs()

	if opts.Verbose {
		fmt.Printf("🚀 Starting variation run against store %s (%s)\n", cfg.Store.Path, cfg.Store.Backend)
	}

	gscNorm, err := readAndNormalize(st, cfg.Tables.GSC, model.SourceGSC, metrics, &summary, opts.Verbose)
	if err != nil {
		return summary, err
	}
	ga4Norm, err := readAndNormalize(st, cfg.Tables.GA4, model.SourceGA4, metrics, &summary, opts.Verbose)
	if err != nil {
		return summary, err
	}

	refDate := opts.ReferenceDate
	if refDate.IsZero() {
		refDate, err = ReferenceDate(gscNorm.Records, ga4Norm.Records)
		if err != nil {
			return summary, err
		}
	}
	summary.ReferenceDate = refDate

	periods := ComputePeriods(refDate, cfg.WindowDays)
	summary.Periods = periods
	summary.PeriodLabel = PeriodLabel(periods)
	if opts.Verbose {
		fmt.Printf("📅 Reference date %s, window of %d days\n", refDate.Format(dateLayout), cfg.WindowDays)
		fmt.Printf("📅 Comparing %s\n", summary.PeriodLabel)
	}

	recent := AggregateWindow(gscNorm.Records, metrics, model.SourceGSC, periods.Recent)
	recent = MergeAggregates(recent, AggregateWindow(ga4Norm.Records, metrics, model.SourceGA4, periods.Recent))
	prior := AggregateWindow(gscNorm.Records, metrics, model.SourceGSC, periods.Prior)
	prior = MergeAggregates(prior, AggregateWindow(ga4Norm.Records, metrics, model.SourceGA4, periods.Prior))

	variations := ComputeVariations(metrics, recent, prior)
	report, blanks := AssembleReport(variations, metrics, summary.PeriodLabel)
	report.Name = cfg.Tables.Output

	summary.URLCount = len(report.Rows)
	summary.BlankCounts = blanks
	if opts.Verbose {
		fmt.Printf("📊 %d URLs analyzed\n", summary.URLCount)
		for _, spec := range metrics {
			if n := blanks[spec.Label]; n > 0 {
				fmt.Printf("📊 %s: %d URLs without a computable variation\n", spec.Label, n)
			}
		}
	}

	if opts.DryRun {
		if err := writeCSV(out, report); err != nil {
			return summary, fmt.Errorf("failed to print dry-run report: %w", err)
		}
	} else {
		if opts.Verbose {
			fmt.Printf("💾 Replacing destination table %s (%d rows)\n", report.Name, len(report.Rows))
		}
		if err := st.ReplaceTable(report); err != nil {
			return summary, fmt.Errorf("failed to replace destination table %s: %w", report.Name, err)
		}
		summary.Wrote = true
	}

	summary.Duration = time.Since(start)
	if opts.Verbose {
		fmt.Printf("🏁 Run completed in %v\n", summary.Duration)
	}
	return summary, nil
}

// readAndNormalize pulls one source table and runs it through the
// normalizer, folding counts into the run summary.
func readAndNormalize(st store.Tabular, table, source string, metrics []model.MetricSpec, summary *model.RunSummary, verbose bool) (NormalizeResult, error) {
	raw, err := st.ReadTable(table)
	if err != nil {
		return NormalizeResult{}, fmt.Errorf("failed to read source table %s: %w", table, err)
	}
	summary.SourceRows[source] = len(raw.Rows)
	if verbose {
		fmt.Printf("📄 %s: %d rows, columns: %s\n", table, len(raw.Rows), strings.Join(raw.Columns, ", "))
	}

	norm, err := NormalizeTable(raw, model.SourceColumns(metrics, source))
	if err != nil {
		return NormalizeResult{}, err
	}
	summary.SkippedRows[source] = norm.Skipped
	if verbose && norm.Skipped > 0 {
		fmt.Printf("⚠️ %s: %d malformed rows skipped\n", table, norm.Skipped)
	}
	return norm, nil
}

func writeCSV(w io.Writer, t store.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
